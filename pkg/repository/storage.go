package repository

import (
	"context"
	"log"
	"strconv"

	"adoptionService/pkg/api"
	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore collection names, shared with the mobile clients.
const (
	petsCollection       = "Pets"
	categoriesCollection = "Category"
	usersCollection      = "Users"
	favoritesCollection  = "UserFavPet"
	chatCollection       = "Chat"
	messagesCollection   = "messages"
	slidersCollection    = "Sliders"
)

type Storage interface {
	api.PetRepository
	api.FavoriteRepository
	api.ChatRepository
	api.UserRepository
	api.AdminRepository
}

type storage struct {
	client *firestore.Client
}

func NewStorage(client *firestore.Client) Storage {
	return &storage{client: client}
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *storage) petDoc(id int64) *firestore.DocumentRef {
	return s.client.Collection(petsCollection).Doc(strconv.FormatInt(id, 10))
}

func (s *storage) GetPet(ctx context.Context, id int64) (api.Pet, error) {
	var pet api.Pet

	snap, err := s.petDoc(id).Get(ctx)
	if notFound(err) {
		return pet, api.ErrNotFound
	}
	if err != nil {
		return pet, err
	}

	if err := snap.DataTo(&pet); err != nil {
		log.Printf("Converting pet snap to struct: %v", err)
		return pet, err
	}

	return pet, nil
}

func (s *storage) SetPet(ctx context.Context, pet api.Pet) error {
	_, err := s.petDoc(pet.Id).Set(ctx, pet)
	return err
}

func (s *storage) SetAdopted(ctx context.Context, id int64, adopted bool) error {
	_, err := s.petDoc(id).Update(ctx, []firestore.Update{
		{
			Path:  "adopted",
			Value: adopted,
		},
	})
	if notFound(err) {
		return api.ErrNotFound
	}
	return err
}

func (s *storage) DeletePet(ctx context.Context, id int64) error {
	_, err := s.petDoc(id).Delete(ctx)
	return err
}

func (s *storage) GetPetsByCategory(ctx context.Context, category string) ([]api.Pet, error) {
	query := s.client.Collection(petsCollection).Where("category", "==", category)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodePets(snaps), nil
}

func (s *storage) WatchPetsByCategory(ctx context.Context, category string) (*api.PetFeed, error) {
	query := s.client.Collection(petsCollection).Where("category", "==", category)
	return s.watchPets(ctx, query), nil
}

func (s *storage) GetPetsByOwner(ctx context.Context, email string) ([]api.Pet, error) {
	query := s.client.Collection(petsCollection).Where("user.email", "==", email)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodePets(snaps), nil
}

// GetPetsByIds issues one "in" query per chunk of ten ids, the Firestore
// limit. Ids without a document are dropped from the result.
func (s *storage) GetPetsByIds(ctx context.Context, ids []int64) ([]api.Pet, error) {
	pets := make([]api.Pet, 0, len(ids))

	for start := 0; start < len(ids); start += 10 {
		end := start + 10
		if end > len(ids) {
			end = len(ids)
		}
		chunk := make([]interface{}, 0, end-start)
		for _, id := range ids[start:end] {
			chunk = append(chunk, id)
		}

		query := s.client.Collection(petsCollection).Where("id", "in", chunk)
		snaps, err := query.Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		pets = append(pets, decodePets(snaps)...)
	}

	return pets, nil
}

func (s *storage) GetAllPets(ctx context.Context) ([]api.Pet, error) {
	query := s.client.Collection(petsCollection).OrderBy("category", firestore.Asc)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodePets(snaps), nil
}

func (s *storage) WatchPets(ctx context.Context) (*api.PetFeed, error) {
	query := s.client.Collection(petsCollection).OrderBy("category", firestore.Asc)
	return s.watchPets(ctx, query), nil
}

func (s *storage) CountPets(ctx context.Context) (int, error) {
	snaps, err := s.client.Collection(petsCollection).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return len(snaps), nil
}

func decodePets(snaps []*firestore.DocumentSnapshot) []api.Pet {
	pets := make([]api.Pet, 0, len(snaps))
	for _, snap := range snaps {
		var pet api.Pet
		if err := snap.DataTo(&pet); err != nil {
			log.Printf("Converting pet snap to struct: %v", err)
			continue
		}
		pets = append(pets, pet)
	}
	return pets
}

func (s *storage) GetCategories(ctx context.Context) ([]api.Category, error) {
	query := s.client.Collection(categoriesCollection).OrderBy("createdAt", firestore.Asc)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeCategories(snaps), nil
}

func (s *storage) WatchCategories(ctx context.Context) (*api.CategoryFeed, error) {
	query := s.client.Collection(categoriesCollection).OrderBy("createdAt", firestore.Asc)
	return s.watchCategories(ctx, query), nil
}

func (s *storage) SetCategory(ctx context.Context, category api.Category) error {
	_, err := s.client.Collection(categoriesCollection).Doc(category.Name).Set(ctx, category)
	return err
}

func (s *storage) DeleteCategory(ctx context.Context, name string) error {
	_, err := s.client.Collection(categoriesCollection).Doc(name).Delete(ctx)
	return err
}

func decodeCategories(snaps []*firestore.DocumentSnapshot) []api.Category {
	categories := make([]api.Category, 0, len(snaps))
	for _, snap := range snaps {
		var category api.Category
		if err := snap.DataTo(&category); err != nil {
			log.Printf("Converting category snap to struct: %v", err)
			continue
		}
		categories = append(categories, category)
	}
	return categories
}

func (s *storage) GetSliders(ctx context.Context) ([]api.Slider, error) {
	snaps, err := s.client.Collection(slidersCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	sliders := make([]api.Slider, 0, len(snaps))
	for _, snap := range snaps {
		var slider api.Slider
		if err := snap.DataTo(&slider); err != nil {
			log.Printf("Converting slider snap to struct: %v", err)
			continue
		}
		sliders = append(sliders, slider)
	}
	return sliders, nil
}

func (s *storage) SetSlider(ctx context.Context, slider api.Slider) error {
	_, err := s.client.Collection(slidersCollection).Doc(slider.Name).Set(ctx, slider)
	return err
}

func (s *storage) DeleteSlider(ctx context.Context, name string) error {
	_, err := s.client.Collection(slidersCollection).Doc(name).Delete(ctx)
	return err
}

func (s *storage) GetFavorites(ctx context.Context, email string) (api.FavoriteList, error) {
	var list api.FavoriteList

	snap, err := s.client.Collection(favoritesCollection).Doc(email).Get(ctx)
	if notFound(err) {
		return list, api.ErrNotFound
	}
	if err != nil {
		return list, err
	}

	if err := snap.DataTo(&list); err != nil {
		log.Printf("Converting favorites snap to struct: %v", err)
		return list, err
	}

	return list, nil
}

func (s *storage) SetFavorites(ctx context.Context, email string, favorites []int64) error {
	_, err := s.client.Collection(favoritesCollection).Doc(email).Set(ctx, api.FavoriteList{
		Email:     email,
		Favorites: favorites,
	})
	return err
}

func (s *storage) DeleteFavorites(ctx context.Context, email string) error {
	_, err := s.client.Collection(favoritesCollection).Doc(email).Delete(ctx)
	return err
}
