package services

import (
	"context"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
)

// Publications manages content bundles.
type Publications struct {
	persistence persistence.Persistence
}

// NewPublications creates a new publication service.
func NewPublications(persistence persistence.Persistence) *Publications {
	return &Publications{persistence: persistence}
}

// CreatePublicationCommand carries the fields for a new publication.
type CreatePublicationCommand struct {
	Title       string                   `json:"title"       validate:"required"`
	Description string                   `json:"description"`
	ImageURL    string                   `json:"image_url"`
	LineItems   []models.LineItem        `json:"line_items"  validate:"dive"`
	Status      models.PublicationStatus `json:"status"`
}

// Create validates and stores a new publication. An empty status defaults to
// draft.
func (s *Publications) Create(ctx context.Context, cmd CreatePublicationCommand) (*models.Publication, error) {
	status := cmd.Status
	if status == "" {
		status = models.PublicationStatusDraft
	}

	publication := &models.Publication{
		Title:       cmd.Title,
		Description: cmd.Description,
		ImageURL:    cmd.ImageURL,
		LineItems:   cmd.LineItems,
		Status:      status,
	}

	if err := publication.Validate(); err != nil {
		return nil, &ServiceError{Op: "CreatePublication", Err: err}
	}

	if err := s.persistence.Publications().Create(ctx, publication); err != nil {
		return nil, err
	}

	return publication, nil
}

// List returns all publications.
func (s *Publications) List(ctx context.Context) ([]*models.Publication, error) {
	return s.persistence.Publications().GetAll(ctx)
}

// Fetch returns one publication by ID.
func (s *Publications) Fetch(ctx context.Context, id string) (*models.Publication, error) {
	return s.persistence.Publications().GetByID(ctx, id)
}

// Update replaces the mutable fields of an existing publication and
// re-validates. Line items may reference products that no longer exist; the
// dangling references are stored as-is.
func (s *Publications) Update(ctx context.Context, id string, cmd CreatePublicationCommand) (*models.Publication, error) {
	publication, err := s.persistence.Publications().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publication.Title = cmd.Title
	publication.Description = cmd.Description
	publication.ImageURL = cmd.ImageURL
	publication.LineItems = cmd.LineItems

	if cmd.Status != "" {
		publication.Status = cmd.Status
	}

	if err := publication.Validate(); err != nil {
		return nil, &ServiceError{Op: "UpdatePublication", Err: err}
	}

	if err := s.persistence.Publications().Update(ctx, publication); err != nil {
		return nil, err
	}

	return publication, nil
}

// Delete removes a publication. Schedules keep any references to it.
func (s *Publications) Delete(ctx context.Context, id string) error {
	return s.persistence.Publications().Delete(ctx, id)
}
