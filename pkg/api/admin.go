package api

import (
	"context"
	"strings"
	"time"
)

type AdminService interface {
	GetStats(ctx context.Context) (Stats, error)
	GetAllPets(ctx context.Context) ([]Pet, error)
	WatchPets(ctx context.Context) (*PetFeed, error)
	GetAllUsers(ctx context.Context) ([]UserProfile, error)
	WatchUsers(ctx context.Context) (*UserFeed, error)
	WatchCategories(ctx context.Context) (*CategoryFeed, error)
	AddCategory(ctx context.Context, name string, imageUrl string) (Category, error)
	DeleteCategory(ctx context.Context, name string) error
	AddSlider(ctx context.Context, name string, imageUrl string) (Slider, error)
	DeleteSlider(ctx context.Context, name string) error
	DeletePet(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, email string) error
}

type AdminRepository interface {
	CountPets(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	GetAllPets(ctx context.Context) ([]Pet, error)
	WatchPets(ctx context.Context) (*PetFeed, error)
	GetAllUsers(ctx context.Context) ([]UserProfile, error)
	WatchUsers(ctx context.Context) (*UserFeed, error)
	WatchCategories(ctx context.Context) (*CategoryFeed, error)
	SetCategory(ctx context.Context, category Category) error
	DeleteCategory(ctx context.Context, name string) error
	SetSlider(ctx context.Context, slider Slider) error
	DeleteSlider(ctx context.Context, name string) error
}

type adminService struct {
	storage AdminRepository
	pets    PetRepository
	users   UserRepository
}

func NewAdminService(storage AdminRepository, pets PetRepository, users UserRepository) AdminService {
	return &adminService{storage: storage, pets: pets, users: users}
}

func (a *adminService) GetStats(ctx context.Context) (Stats, error) {
	totalPets, err := a.storage.CountPets(ctx)
	if err != nil {
		return Stats{}, err
	}

	totalUsers, err := a.storage.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{TotalPets: totalPets, TotalUsers: totalUsers}, nil
}

func (a *adminService) GetAllPets(ctx context.Context) ([]Pet, error) {
	pets, err := a.storage.GetAllPets(ctx)

	if err != nil {
		return nil, err
	}

	return pets, nil
}

func (a *adminService) WatchPets(ctx context.Context) (*PetFeed, error) {
	return a.storage.WatchPets(ctx)
}

func (a *adminService) GetAllUsers(ctx context.Context) ([]UserProfile, error) {
	users, err := a.storage.GetAllUsers(ctx)

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (a *adminService) WatchUsers(ctx context.Context) (*UserFeed, error) {
	return a.storage.WatchUsers(ctx)
}

func (a *adminService) WatchCategories(ctx context.Context) (*CategoryFeed, error) {
	return a.storage.WatchCategories(ctx)
}

// AddCategory stores the category under its name, which doubles as the
// document key on the home screen.
func (a *adminService) AddCategory(ctx context.Context, name string, imageUrl string) (Category, error) {
	if name == "" {
		return Category{}, ErrInvalidInput
	}

	category := Category{
		Name:      name,
		ImageUrl:  imageUrl,
		CreatedAt: time.Now(),
	}
	if err := a.storage.SetCategory(ctx, category); err != nil {
		return Category{}, err
	}

	return category, nil
}

func (a *adminService) DeleteCategory(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidInput
	}
	return a.storage.DeleteCategory(ctx, name)
}

// AddSlider stores a home-screen banner under its name, like categories.
func (a *adminService) AddSlider(ctx context.Context, name string, imageUrl string) (Slider, error) {
	if name == "" || imageUrl == "" {
		return Slider{}, ErrInvalidInput
	}

	slider := Slider{Name: name, ImageUrl: imageUrl}
	if err := a.storage.SetSlider(ctx, slider); err != nil {
		return Slider{}, err
	}

	return slider, nil
}

func (a *adminService) DeleteSlider(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidInput
	}
	return a.storage.DeleteSlider(ctx, name)
}

func (a *adminService) DeletePet(ctx context.Context, id int64) error {
	return a.pets.DeletePet(ctx, id)
}

// DeleteUser removes only the profile document. Clients watching their own
// profile treat its disappearance as session revocation and sign out.
// Profiles are keyed by lowercased email, so the given email is normalized.
func (a *adminService) DeleteUser(ctx context.Context, email string) error {
	return a.users.DeleteProfile(ctx, strings.ToLower(email))
}
