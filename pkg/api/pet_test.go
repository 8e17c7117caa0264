package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptionService/pkg/api"
)

func newTestPet(t *testing.T, pets api.PetService, owner api.UserSummary, name, category string) api.Pet {
	t.Helper()
	pet, err := pets.CreatePet(context.Background(), owner, api.NewPet{
		Name:     name,
		Category: category,
		Breed:    "mixed",
		Age:      "2",
		Sex:      "Male",
		Weight:   "4",
		Address:  "shelter street 1",
		About:    "friendly",
		ImageUrl: "https://img/" + name + ".png",
	})
	require.NoError(t, err)
	return pet
}

func TestCreatePet(t *testing.T) {
	storage := newFakeStorage()
	pets := api.NewPetService(storage)

	pet := newTestPet(t, pets, alice, "Rex", "Dogs")

	assert.Greater(t, pet.Id, int64(0))
	assert.False(t, pet.Adopted)
	assert.Equal(t, alice, pet.Owner)

	stored, err := pets.GetPetDetail(context.Background(), pet.Id)
	require.NoError(t, err)
	assert.Equal(t, pet, stored)
}

func TestCreatePetRequiresNameAndCategory(t *testing.T) {
	pets := api.NewPetService(newFakeStorage())

	_, err := pets.CreatePet(context.Background(), alice, api.NewPet{Category: "Dogs"})
	assert.ErrorIs(t, err, api.ErrInvalidInput)

	_, err = pets.CreatePet(context.Background(), alice, api.NewPet{Name: "Rex"})
	assert.ErrorIs(t, err, api.ErrInvalidInput)
}

func TestToggleAdoptedRoundTrip(t *testing.T) {
	storage := newFakeStorage()
	pets := api.NewPetService(storage)
	ctx := context.Background()

	pet := newTestPet(t, pets, alice, "Rex", "Dogs")

	toggled, err := pets.ToggleAdopted(ctx, pet.Id)
	require.NoError(t, err)
	assert.True(t, toggled.Adopted)

	toggled, err = pets.ToggleAdopted(ctx, pet.Id)
	require.NoError(t, err)
	assert.False(t, toggled.Adopted)

	stored, err := pets.GetPetDetail(ctx, pet.Id)
	require.NoError(t, err)
	assert.Equal(t, pet, stored)
}

func TestToggleAdoptedMissingPet(t *testing.T) {
	pets := api.NewPetService(newFakeStorage())

	_, err := pets.ToggleAdopted(context.Background(), 404)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestUpdatePetAppliesPatch(t *testing.T) {
	storage := newFakeStorage()
	pets := api.NewPetService(storage)
	ctx := context.Background()

	pet := newTestPet(t, pets, alice, "Rex", "Dogs")

	patch := []byte(`[{"op":"replace","path":"/name","value":"Max"},{"op":"replace","path":"/about","value":"shy"}]`)
	updated, err := pets.UpdatePet(ctx, pet.Id, patch)
	require.NoError(t, err)

	assert.Equal(t, "Max", updated.Name)
	assert.Equal(t, "shy", updated.About)
	assert.Equal(t, pet.Id, updated.Id)
	assert.Equal(t, pet.Breed, updated.Breed)
}

func TestUpdatePetCannotChangeId(t *testing.T) {
	storage := newFakeStorage()
	pets := api.NewPetService(storage)
	ctx := context.Background()

	pet := newTestPet(t, pets, alice, "Rex", "Dogs")

	patch := []byte(`[{"op":"replace","path":"/id","value":1}]`)
	updated, err := pets.UpdatePet(ctx, pet.Id, patch)
	require.NoError(t, err)
	assert.Equal(t, pet.Id, updated.Id)

	_, err = pets.GetPetDetail(ctx, pet.Id)
	assert.NoError(t, err)
}

func TestUpdatePetRejectsMalformedPatch(t *testing.T) {
	storage := newFakeStorage()
	pets := api.NewPetService(storage)

	pet := newTestPet(t, pets, alice, "Rex", "Dogs")

	_, err := pets.UpdatePet(context.Background(), pet.Id, []byte(`{"not":"a patch"}`))
	assert.ErrorIs(t, err, api.ErrInvalidInput)
}

func TestGetPetsByIdsSkipsMissing(t *testing.T) {
	storage := newFakeStorage()
	pets := api.NewPetService(storage)
	ctx := context.Background()

	pet := newTestPet(t, pets, alice, "Rex", "Dogs")

	found, err := pets.GetPetsByIds(ctx, []int64{pet.Id, 404})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pet.Id, found[0].Id)

	none, err := pets.GetPetsByIds(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
