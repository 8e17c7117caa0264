package api

import (
	"context"
	"strings"
	"sync"
	"time"
)

type UserService interface {
	SignUp(ctx context.Context, email string, password string, fullName string) (UserProfile, error)
	GetProfile(ctx context.Context, email string) (UserProfile, error)
	UpdateProfile(ctx context.Context, email string, displayName string, photoURL string) (UserProfile, error)
	WatchProfile(ctx context.Context, email string) (*ProfileFeed, error)
	DeleteAccount(ctx context.Context, email string) error
}

type UserRepository interface {
	GetProfile(ctx context.Context, email string) (UserProfile, error)
	SetProfile(ctx context.Context, profile UserProfile) error
	DeleteProfile(ctx context.Context, email string) error
	WatchProfile(ctx context.Context, email string) (*ProfileFeed, error)
}

// Authenticator wraps the identity-provider account operations.
type Authenticator interface {
	CreateUser(ctx context.Context, email string, password string, displayName string) (string, error)
	DeleteUser(ctx context.Context, email string) error
}

type userService struct {
	storage   UserRepository
	pets      PetRepository
	favorites FavoriteRepository
	chats     ChatRepository
	auth      Authenticator
}

func NewUserService(storage UserRepository, pets PetRepository, favorites FavoriteRepository, chats ChatRepository, auth Authenticator) UserService {
	return &userService{
		storage:   storage,
		pets:      pets,
		favorites: favorites,
		chats:     chats,
		auth:      auth,
	}
}

// SignUp creates the auth account and then the profile document keyed by the
// lowercased email, with the default user role.
func (u *userService) SignUp(ctx context.Context, email string, password string, fullName string) (UserProfile, error) {
	if email == "" || password == "" {
		return UserProfile{}, ErrInvalidInput
	}
	if !strings.Contains(email, "@") {
		return UserProfile{}, ErrInvalidEmail
	}
	if len(password) < 6 {
		return UserProfile{}, ErrWeakPassword
	}
	email = strings.ToLower(email)

	if _, err := u.auth.CreateUser(ctx, email, password, fullName); err != nil {
		return UserProfile{}, err
	}

	now := time.Now()
	profile := UserProfile{
		Email:       email,
		DisplayName: fullName,
		Role:        RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.storage.SetProfile(ctx, profile); err != nil {
		return UserProfile{}, err
	}

	return profile, nil
}

func (u *userService) GetProfile(ctx context.Context, email string) (UserProfile, error) {
	profile, err := u.storage.GetProfile(ctx, strings.ToLower(email))

	if err != nil {
		return profile, err
	}

	return profile, nil
}

func (u *userService) UpdateProfile(ctx context.Context, email string, displayName string, photoURL string) (UserProfile, error) {
	profile, err := u.storage.GetProfile(ctx, strings.ToLower(email))
	if err != nil {
		return UserProfile{}, err
	}

	if displayName != "" {
		profile.DisplayName = displayName
	}
	if photoURL != "" {
		profile.PhotoURL = photoURL
	}
	profile.UpdatedAt = time.Now()

	if err := u.storage.SetProfile(ctx, profile); err != nil {
		return UserProfile{}, err
	}

	return profile, nil
}

func (u *userService) WatchProfile(ctx context.Context, email string) (*ProfileFeed, error) {
	return u.storage.WatchProfile(ctx, strings.ToLower(email))
}

// DeleteAccount removes everything keyed to the user: authored pets, the
// favorites record, every chat thread the user participates in, the profile
// document and finally the auth record. The deletes run concurrently and are
// awaited together; there is no rollback, a partial failure leaves the
// account half deleted.
func (u *userService) DeleteAccount(ctx context.Context, email string) error {
	email = strings.ToLower(email)

	pets, err := u.pets.GetPetsByOwner(ctx, email)
	if err != nil {
		return err
	}
	threads, err := u.chats.GetThreads(ctx, email)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(pets)+len(threads)+2)

	for _, pet := range pets {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			errs <- u.pets.DeletePet(ctx, id)
		}(pet.Id)
	}

	for _, thread := range threads {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			errs <- u.chats.DeleteThread(ctx, id)
		}(thread.Id)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- u.favorites.DeleteFavorites(ctx, email)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- u.storage.DeleteProfile(ctx, email)
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && err != ErrNotFound {
			return err
		}
	}

	return u.auth.DeleteUser(ctx, email)
}
