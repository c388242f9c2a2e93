package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence/file"
)

func TestGroups_Create_DefaultsActive(t *testing.T) {
	service := NewGroups(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreateGroupCommand{
		Name:       "Neighborhood Sales",
		PlatformID: "fb-123",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	inactive := false

	other, err := service.Create(t.Context(), CreateGroupCommand{
		Name:   "Archive",
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, other.Active)
}

func TestGroups_Update_KeepsPlatformID(t *testing.T) {
	service := NewGroups(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreateGroupCommand{
		Name:       "Neighborhood Sales",
		PlatformID: "fb-123",
	})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, CreateGroupCommand{
		Name:       "Neighborhood Sales v2",
		PlatformID: "fb-456",
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-123", updated.PlatformID)
	assert.Equal(t, "Neighborhood Sales v2", updated.Name)
}

func TestGroups_Update_SetsPlatformIDWhenEmpty(t *testing.T) {
	service := NewGroups(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreateGroupCommand{Name: "Pending"})
	require.NoError(t, err)
	require.Empty(t, created.PlatformID)

	updated, err := service.Update(t.Context(), created.ID, CreateGroupCommand{
		Name:       "Pending",
		PlatformID: "fb-789",
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-789", updated.PlatformID)
}

func TestGroups_Create_Invalid(t *testing.T) {
	service := NewGroups(file.NewPersistence(t.TempDir()))

	_, err := service.Create(t.Context(), CreateGroupCommand{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNameRequired)
}
