package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence/file"
)

func TestPublications_Create_DefaultsDraft(t *testing.T) {
	service := NewPublications(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreatePublicationCommand{
		Title: "Weekend Offers",
		LineItems: []models.LineItem{
			{ProductID: "prod-1", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PublicationStatusDraft, created.Status)
	assert.Len(t, created.LineItems, 1)
}

func TestPublications_Create_Invalid(t *testing.T) {
	service := NewPublications(file.NewPersistence(t.TempDir()))

	_, err := service.Create(t.Context(), CreatePublicationCommand{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNameRequired)

	_, err = service.Create(t.Context(), CreatePublicationCommand{
		Title:     "Weekend Offers",
		LineItems: []models.LineItem{{ProductID: "prod-1", Quantity: 0}},
	})
	assert.ErrorIs(t, err, models.ErrInvalidLineItem)

	_, err = service.Create(t.Context(), CreatePublicationCommand{
		Title:  "Weekend Offers",
		Status: models.PublicationStatus("archived"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidPublicationStatus)
}

func TestPublications_Update(t *testing.T) {
	service := NewPublications(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreatePublicationCommand{Title: "Weekend Offers"})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, CreatePublicationCommand{
		Title:  "Weekend Offers",
		Status: models.PublicationStatusActive,
		LineItems: []models.LineItem{
			{ProductID: "prod-2", Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PublicationStatusActive, updated.Status)
	assert.Len(t, updated.LineItems, 1)
}
