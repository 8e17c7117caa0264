package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptionService/pkg/api"
)

func newAdminService(storage *fakeStorage) api.AdminService {
	return api.NewAdminService(storage, storage, storage)
}

func TestGetStats(t *testing.T) {
	storage := newFakeStorage()
	admin := newAdminService(storage)
	ctx := context.Background()

	require.NoError(t, storage.SetPet(ctx, api.Pet{Id: 1, Name: "Rex", Category: "Dogs", Owner: alice}))
	require.NoError(t, storage.SetPet(ctx, api.Pet{Id: 2, Name: "Tom", Category: "Cats", Owner: bob}))
	require.NoError(t, storage.SetProfile(ctx, api.UserProfile{Email: alice.Email, Role: api.RoleUser}))

	stats, err := admin.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPets)
	assert.Equal(t, 1, stats.TotalUsers)
}

func TestAddCategory(t *testing.T) {
	storage := newFakeStorage()
	admin := newAdminService(storage)
	ctx := context.Background()

	category, err := admin.AddCategory(ctx, "Birds", "https://img/birds.png")
	require.NoError(t, err)
	assert.Equal(t, "Birds", category.Name)
	assert.False(t, category.CreatedAt.IsZero())

	categories, err := storage.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Birds", categories[0].Name)

	_, err = admin.AddCategory(ctx, "", "https://img/none.png")
	assert.ErrorIs(t, err, api.ErrInvalidInput)
}

func TestDeleteCategory(t *testing.T) {
	storage := newFakeStorage()
	admin := newAdminService(storage)
	ctx := context.Background()

	_, err := admin.AddCategory(ctx, "Birds", "")
	require.NoError(t, err)
	require.NoError(t, admin.DeleteCategory(ctx, "Birds"))

	categories, err := storage.GetCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)

	assert.ErrorIs(t, admin.DeleteCategory(ctx, ""), api.ErrInvalidInput)
}

func TestAddAndDeleteSlider(t *testing.T) {
	storage := newFakeStorage()
	admin := newAdminService(storage)
	pets := api.NewPetService(storage)
	ctx := context.Background()

	slider, err := admin.AddSlider(ctx, "spring-campaign", "https://img/spring.png")
	require.NoError(t, err)
	assert.Equal(t, "spring-campaign", slider.Name)

	sliders, err := pets.GetSliders(ctx)
	require.NoError(t, err)
	require.Len(t, sliders, 1)
	assert.Equal(t, "https://img/spring.png", sliders[0].ImageUrl)

	require.NoError(t, admin.DeleteSlider(ctx, "spring-campaign"))
	sliders, err = pets.GetSliders(ctx)
	require.NoError(t, err)
	assert.Empty(t, sliders)

	_, err = admin.AddSlider(ctx, "", "https://img/none.png")
	assert.ErrorIs(t, err, api.ErrInvalidInput)
	_, err = admin.AddSlider(ctx, "no-image", "")
	assert.ErrorIs(t, err, api.ErrInvalidInput)
}

func TestAdminDeleteUserNormalizesEmail(t *testing.T) {
	storage := newFakeStorage()
	admin := newAdminService(storage)
	ctx := context.Background()

	require.NoError(t, storage.SetProfile(ctx, api.UserProfile{Email: alice.Email, Role: api.RoleUser}))

	// Profiles are keyed by lowercased email; a mixed-case request must still
	// hit the document.
	require.NoError(t, admin.DeleteUser(ctx, "Alice@Example.COM"))

	_, err := storage.GetProfile(ctx, alice.Email)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestAdminDeleteUserRemovesOnlyProfile(t *testing.T) {
	storage := newFakeStorage()
	admin := newAdminService(storage)
	ctx := context.Background()

	require.NoError(t, storage.SetProfile(ctx, api.UserProfile{Email: alice.Email, Role: api.RoleUser}))
	require.NoError(t, storage.SetPet(ctx, api.Pet{Id: 1, Name: "Rex", Category: "Dogs", Owner: alice}))

	require.NoError(t, admin.DeleteUser(ctx, alice.Email))

	_, err := storage.GetProfile(ctx, alice.Email)
	assert.ErrorIs(t, err, api.ErrNotFound)

	// The user's listings are untouched; only the profile goes away.
	pets, err := storage.GetPetsByOwner(ctx, alice.Email)
	require.NoError(t, err)
	assert.Len(t, pets, 1)
}
