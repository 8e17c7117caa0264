package api

import "context"

type FavoriteService interface {
	GetFavorites(ctx context.Context, email string) ([]int64, error)
	AddFavorite(ctx context.Context, email string, petId int64) error
	RemoveFavorite(ctx context.Context, email string, petId int64) error
}

type FavoriteRepository interface {
	GetFavorites(ctx context.Context, email string) (FavoriteList, error)
	SetFavorites(ctx context.Context, email string, favorites []int64) error
	DeleteFavorites(ctx context.Context, email string) error
}

type favoriteService struct {
	storage FavoriteRepository
}

func NewFavoriteService(storage FavoriteRepository) FavoriteService {
	return &favoriteService{storage: storage}
}

// GetFavorites lazily creates an empty record the first time a user is seen.
func (f *favoriteService) GetFavorites(ctx context.Context, email string) ([]int64, error) {
	list, err := f.storage.GetFavorites(ctx, email)
	if err == ErrNotFound {
		if err := f.storage.SetFavorites(ctx, email, []int64{}); err != nil {
			return nil, err
		}
		return []int64{}, nil
	}
	if err != nil {
		return nil, err
	}

	return list.Favorites, nil
}

// AddFavorite reads the whole list, appends and writes it back. Membership is
// a set: adding an id that is already present leaves the list unchanged.
func (f *favoriteService) AddFavorite(ctx context.Context, email string, petId int64) error {
	favorites, err := f.GetFavorites(ctx, email)
	if err != nil {
		return err
	}

	for _, id := range favorites {
		if id == petId {
			return nil
		}
	}

	return f.storage.SetFavorites(ctx, email, append(favorites, petId))
}

// RemoveFavorite is a no-op when the id is not a member.
func (f *favoriteService) RemoveFavorite(ctx context.Context, email string, petId int64) error {
	favorites, err := f.GetFavorites(ctx, email)
	if err != nil {
		return err
	}

	updated := make([]int64, 0, len(favorites))
	for _, id := range favorites {
		if id != petId {
			updated = append(updated, id)
		}
	}
	if len(updated) == len(favorites) {
		return nil
	}

	return f.storage.SetFavorites(ctx, email, updated)
}
