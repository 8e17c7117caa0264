package api_test

import (
	"context"
	"strconv"
	"sync"

	"adoptionService/pkg/api"
)

// fakeStorage is an in-memory stand-in for the Firestore repository. It
// implements every repository interface the services depend on.
type fakeStorage struct {
	mu sync.Mutex

	pets       map[int64]api.Pet
	categories map[string]api.Category
	sliders    map[string]api.Slider
	favorites  map[string][]int64
	hasFavDoc  map[string]bool
	threads    map[string]api.ChatThread
	messages   map[string][]api.ChatMessage
	profiles   map[string]api.UserProfile

	profileWatchers map[string][]chan api.ProfileEvent
	petFeeds        []*petFeedRecord
	nextMessageId   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		pets:            make(map[int64]api.Pet),
		categories:      make(map[string]api.Category),
		sliders:         make(map[string]api.Slider),
		favorites:       make(map[string][]int64),
		hasFavDoc:       make(map[string]bool),
		threads:         make(map[string]api.ChatThread),
		messages:        make(map[string][]api.ChatMessage),
		profiles:        make(map[string]api.UserProfile),
		profileWatchers: make(map[string][]chan api.ProfileEvent),
	}
}

// --- PetRepository ---

func (f *fakeStorage) GetPet(_ context.Context, id int64) (api.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pet, ok := f.pets[id]
	if !ok {
		return api.Pet{}, api.ErrNotFound
	}
	return pet, nil
}

func (f *fakeStorage) SetPet(_ context.Context, pet api.Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pets[pet.Id] = pet
	return nil
}

func (f *fakeStorage) SetAdopted(_ context.Context, id int64, adopted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pet, ok := f.pets[id]
	if !ok {
		return api.ErrNotFound
	}
	pet.Adopted = adopted
	f.pets[id] = pet
	return nil
}

func (f *fakeStorage) DeletePet(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pets, id)
	return nil
}

func (f *fakeStorage) GetPetsByCategory(_ context.Context, category string) ([]api.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.petsByCategoryLocked(category), nil
}

func (f *fakeStorage) petsByCategoryLocked(category string) []api.Pet {
	pets := []api.Pet{}
	for _, pet := range f.pets {
		if pet.Category == category {
			pets = append(pets, pet)
		}
	}
	return pets
}

// petFeedRecord tracks whether a fake category feed has been detached.
type petFeedRecord struct {
	category string
	closed   bool
}

func (f *fakeStorage) WatchPetsByCategory(_ context.Context, category string) (*api.PetFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan []api.Pet, 1)
	ch <- f.petsByCategoryLocked(category)

	record := &petFeedRecord{category: category}
	f.petFeeds = append(f.petFeeds, record)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			record.closed = true
			f.mu.Unlock()
			close(ch)
		})
	}
	return api.NewPetFeed(ch, cancel), nil
}

func (f *fakeStorage) GetPetsByOwner(_ context.Context, email string) ([]api.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pets := []api.Pet{}
	for _, pet := range f.pets {
		if pet.Owner.Email == email {
			pets = append(pets, pet)
		}
	}
	return pets, nil
}

func (f *fakeStorage) GetPetsByIds(_ context.Context, ids []int64) ([]api.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pets := []api.Pet{}
	for _, id := range ids {
		if pet, ok := f.pets[id]; ok {
			pets = append(pets, pet)
		}
	}
	return pets, nil
}

func (f *fakeStorage) GetCategories(_ context.Context) ([]api.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	categories := []api.Category{}
	for _, c := range f.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (f *fakeStorage) GetSliders(_ context.Context) ([]api.Slider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sliders := []api.Slider{}
	for _, slider := range f.sliders {
		sliders = append(sliders, slider)
	}
	return sliders, nil
}

func (f *fakeStorage) SetSlider(_ context.Context, slider api.Slider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sliders[slider.Name] = slider
	return nil
}

func (f *fakeStorage) DeleteSlider(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sliders, name)
	return nil
}

// --- FavoriteRepository ---

func (f *fakeStorage) GetFavorites(_ context.Context, email string) (api.FavoriteList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasFavDoc[email] {
		return api.FavoriteList{}, api.ErrNotFound
	}
	return api.FavoriteList{Email: email, Favorites: append([]int64{}, f.favorites[email]...)}, nil
}

func (f *fakeStorage) SetFavorites(_ context.Context, email string, favorites []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasFavDoc[email] = true
	f.favorites[email] = append([]int64{}, favorites...)
	return nil
}

func (f *fakeStorage) DeleteFavorites(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.favorites, email)
	delete(f.hasFavDoc, email)
	return nil
}

// --- ChatRepository ---

func (f *fakeStorage) FindThreadByIds(_ context.Context, ids []string) (api.ChatThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if thread, ok := f.threads[id]; ok {
			return thread, nil
		}
	}
	return api.ChatThread{}, api.ErrNotFound
}

func (f *fakeStorage) CreateThread(_ context.Context, thread api.ChatThread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads[thread.Id] = thread
	return nil
}

func (f *fakeStorage) GetThread(_ context.Context, threadId string) (api.ChatThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	thread, ok := f.threads[threadId]
	if !ok {
		return api.ChatThread{}, api.ErrNotFound
	}
	return thread, nil
}

func (f *fakeStorage) GetThreads(_ context.Context, email string) ([]api.ChatThread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	threads := []api.ChatThread{}
	for _, thread := range f.threads {
		for _, participant := range thread.UserIds {
			if participant == email {
				threads = append(threads, thread)
				break
			}
		}
	}
	return threads, nil
}

func (f *fakeStorage) WatchThreads(ctx context.Context, email string) (*api.ThreadFeed, error) {
	threads, _ := f.GetThreads(ctx, email)
	ch := make(chan []api.ChatThread, 1)
	ch <- threads
	var once sync.Once
	return api.NewThreadFeed(ch, func() { once.Do(func() { close(ch) }) }), nil
}

func (f *fakeStorage) AddMessage(_ context.Context, threadId string, message api.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMessageId++
	message.Id = "msg-" + strconv.Itoa(f.nextMessageId)
	f.messages[threadId] = append(f.messages[threadId], message)
	return message.Id, nil
}

func (f *fakeStorage) GetMessages(_ context.Context, threadId string) ([]api.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.ChatMessage{}, f.messages[threadId]...), nil
}

func (f *fakeStorage) WatchMessages(ctx context.Context, threadId string) (*api.MessageFeed, error) {
	messages, _ := f.GetMessages(ctx, threadId)
	ch := make(chan []api.ChatMessage, 1)
	ch <- messages
	var once sync.Once
	return api.NewMessageFeed(ch, func() { once.Do(func() { close(ch) }) }), nil
}

func (f *fakeStorage) SetLastMessage(_ context.Context, threadId string, lastMessage string, lastMessageTime string, unreadBy []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	thread, ok := f.threads[threadId]
	if !ok {
		return api.ErrNotFound
	}
	thread.LastMessage = lastMessage
	thread.LastMessageTime = lastMessageTime
	thread.UnreadBy = unreadBy
	f.threads[threadId] = thread
	return nil
}

func (f *fakeStorage) SetUnreadBy(_ context.Context, threadId string, unreadBy []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	thread, ok := f.threads[threadId]
	if !ok {
		return api.ErrNotFound
	}
	thread.UnreadBy = unreadBy
	f.threads[threadId] = thread
	return nil
}

func (f *fakeStorage) DeleteThread(_ context.Context, threadId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.threads, threadId)
	delete(f.messages, threadId)
	return nil
}

// --- UserRepository ---

func (f *fakeStorage) GetProfile(_ context.Context, email string) (api.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[email]
	if !ok {
		return api.UserProfile{}, api.ErrNotFound
	}
	return profile, nil
}

func (f *fakeStorage) SetProfile(_ context.Context, profile api.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.Email] = profile
	return nil
}

func (f *fakeStorage) DeleteProfile(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, email)
	for _, ch := range f.profileWatchers[email] {
		ch <- api.ProfileEvent{Revoked: true}
	}
	return nil
}

func (f *fakeStorage) WatchProfile(_ context.Context, email string) (*api.ProfileFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan api.ProfileEvent, 4)
	if profile, ok := f.profiles[email]; ok {
		p := profile
		ch <- api.ProfileEvent{Profile: &p}
	}
	f.profileWatchers[email] = append(f.profileWatchers[email], ch)
	return api.NewProfileFeed(ch, func() {}), nil
}

// --- AdminRepository ---

func (f *fakeStorage) CountPets(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pets), nil
}

func (f *fakeStorage) CountUsers(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles), nil
}

func (f *fakeStorage) GetAllPets(_ context.Context) ([]api.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pets := []api.Pet{}
	for _, pet := range f.pets {
		pets = append(pets, pet)
	}
	return pets, nil
}

func (f *fakeStorage) WatchPets(ctx context.Context) (*api.PetFeed, error) {
	pets, _ := f.GetAllPets(ctx)
	ch := make(chan []api.Pet, 1)
	ch <- pets
	var once sync.Once
	return api.NewPetFeed(ch, func() { once.Do(func() { close(ch) }) }), nil
}

func (f *fakeStorage) GetAllUsers(_ context.Context) ([]api.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []api.UserProfile{}
	for _, profile := range f.profiles {
		users = append(users, profile)
	}
	return users, nil
}

func (f *fakeStorage) WatchUsers(ctx context.Context) (*api.UserFeed, error) {
	users, _ := f.GetAllUsers(ctx)
	ch := make(chan []api.UserProfile, 1)
	ch <- users
	var once sync.Once
	return api.NewUserFeed(ch, func() { once.Do(func() { close(ch) }) }), nil
}

func (f *fakeStorage) WatchCategories(ctx context.Context) (*api.CategoryFeed, error) {
	categories, _ := f.GetCategories(ctx)
	ch := make(chan []api.Category, 1)
	ch <- categories
	var once sync.Once
	return api.NewCategoryFeed(ch, func() { once.Do(func() { close(ch) }) }), nil
}

func (f *fakeStorage) SetCategory(_ context.Context, category api.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories[category.Name] = category
	return nil
}

func (f *fakeStorage) DeleteCategory(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.categories, name)
	return nil
}

// fakeAuth is an in-memory identity provider.
type fakeAuth struct {
	mu       sync.Mutex
	accounts map[string]bool
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{accounts: make(map[string]bool)}
}

func (a *fakeAuth) CreateUser(_ context.Context, email string, _ string, _ string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.accounts[email] {
		return "", api.ErrEmailInUse
	}
	a.accounts[email] = true
	return "uid-" + email, nil
}

func (a *fakeAuth) DeleteUser(_ context.Context, email string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.accounts[email] {
		return api.ErrNotFound
	}
	delete(a.accounts, email)
	return nil
}
