package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	jsonPatch "github.com/evanphx/json-patch/v5"
)

type PetService interface {
	GetPetDetail(ctx context.Context, id int64) (Pet, error)
	CreatePet(ctx context.Context, owner UserSummary, newPet NewPet) (Pet, error)
	UpdatePet(ctx context.Context, id int64, patchJson []byte) (Pet, error)
	ToggleAdopted(ctx context.Context, id int64) (Pet, error)
	DeletePet(ctx context.Context, id int64) error
	GetPetsByCategory(ctx context.Context, category string) ([]Pet, error)
	GetPetsByOwner(ctx context.Context, email string) ([]Pet, error)
	GetPetsByIds(ctx context.Context, ids []int64) ([]Pet, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetSliders(ctx context.Context) ([]Slider, error)
	Watcher() *CatalogWatcher
}

type PetRepository interface {
	GetPet(ctx context.Context, id int64) (Pet, error)
	SetPet(ctx context.Context, pet Pet) error
	SetAdopted(ctx context.Context, id int64, adopted bool) error
	DeletePet(ctx context.Context, id int64) error
	GetPetsByCategory(ctx context.Context, category string) ([]Pet, error)
	WatchPetsByCategory(ctx context.Context, category string) (*PetFeed, error)
	GetPetsByOwner(ctx context.Context, email string) ([]Pet, error)
	GetPetsByIds(ctx context.Context, ids []int64) ([]Pet, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetSliders(ctx context.Context) ([]Slider, error)
}

type petService struct {
	storage PetRepository
}

func NewPetService(storage PetRepository) PetService {
	return &petService{storage: storage}
}

func (p *petService) GetPetDetail(ctx context.Context, id int64) (Pet, error) {
	pet, err := p.storage.GetPet(ctx, id)

	if err != nil {
		return pet, err
	}

	return pet, nil
}

func (p *petService) CreatePet(ctx context.Context, owner UserSummary, newPet NewPet) (Pet, error) {
	if newPet.Name == "" || newPet.Category == "" {
		return Pet{}, ErrInvalidInput
	}

	pet := Pet{
		Id:       time.Now().UnixMilli(),
		Name:     newPet.Name,
		Category: newPet.Category,
		Breed:    newPet.Breed,
		Age:      newPet.Age,
		Sex:      newPet.Sex,
		Weight:   newPet.Weight,
		Address:  newPet.Address,
		About:    newPet.About,
		ImageUrl: newPet.ImageUrl,
		Adopted:  false,
		Owner:    owner,
	}

	if err := p.storage.SetPet(ctx, pet); err != nil {
		return Pet{}, err
	}

	return pet, nil
}

// UpdatePet applies an RFC 6902 json patch to the stored pet and writes the
// whole document back. Read-modify-write, last write wins.
func (p *petService) UpdatePet(ctx context.Context, id int64, patchJson []byte) (Pet, error) {
	patch, err := jsonPatch.DecodePatch(patchJson)
	if err != nil {
		return Pet{}, ErrInvalidInput
	}

	pet, err := p.storage.GetPet(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	petBinary, err := json.Marshal(pet)
	if err != nil {
		return Pet{}, err
	}

	petBinary, err = patch.Apply(petBinary)
	if err != nil {
		return Pet{}, ErrInvalidInput
	}

	var updated Pet
	if err := json.Unmarshal(petBinary, &updated); err != nil {
		return Pet{}, ErrInvalidInput
	}

	// The id is the document key and cannot be patched away.
	updated.Id = pet.Id

	if err := p.storage.SetPet(ctx, updated); err != nil {
		return Pet{}, err
	}

	return updated, nil
}

func (p *petService) ToggleAdopted(ctx context.Context, id int64) (Pet, error) {
	pet, err := p.storage.GetPet(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	pet.Adopted = !pet.Adopted
	if err := p.storage.SetAdopted(ctx, id, pet.Adopted); err != nil {
		return Pet{}, err
	}

	return pet, nil
}

func (p *petService) DeletePet(ctx context.Context, id int64) error {
	return p.storage.DeletePet(ctx, id)
}

func (p *petService) GetPetsByCategory(ctx context.Context, category string) ([]Pet, error) {
	pets, err := p.storage.GetPetsByCategory(ctx, category)

	if err != nil {
		return nil, err
	}

	return pets, nil
}

func (p *petService) GetPetsByOwner(ctx context.Context, email string) ([]Pet, error) {
	pets, err := p.storage.GetPetsByOwner(ctx, email)

	if err != nil {
		return nil, err
	}

	return pets, nil
}

// GetPetsByIds resolves a favorites list to pets. Ids that no longer exist are
// simply absent from the result.
func (p *petService) GetPetsByIds(ctx context.Context, ids []int64) ([]Pet, error) {
	if len(ids) == 0 {
		return []Pet{}, nil
	}

	pets, err := p.storage.GetPetsByIds(ctx, ids)

	if err != nil {
		return nil, err
	}

	return pets, nil
}

func (p *petService) GetCategories(ctx context.Context) ([]Category, error) {
	categories, err := p.storage.GetCategories(ctx)

	if err != nil {
		return nil, err
	}

	return categories, nil
}

// GetSliders returns the home-screen banner images.
func (p *petService) GetSliders(ctx context.Context) ([]Slider, error) {
	sliders, err := p.storage.GetSliders(ctx)

	if err != nil {
		return nil, err
	}

	return sliders, nil
}

func (p *petService) Watcher() *CatalogWatcher {
	return NewCatalogWatcher(p.storage)
}

// CatalogWatcher owns at most one live category subscription. Switching to a
// new category detaches the previous feed before the next one is opened.
type CatalogWatcher struct {
	storage PetRepository

	mu      sync.Mutex
	current *PetFeed
}

func NewCatalogWatcher(storage PetRepository) *CatalogWatcher {
	return &CatalogWatcher{storage: storage}
}

func (w *CatalogWatcher) Switch(ctx context.Context, category string) (*PetFeed, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		w.current.Close()
		w.current = nil
	}

	feed, err := w.storage.WatchPetsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	w.current = feed
	return feed, nil
}

func (w *CatalogWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil {
		w.current.Close()
		w.current = nil
	}
}
