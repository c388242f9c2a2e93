package file

import (
	"context"
	"fmt"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

const publicationCollection = "publications"

// PublicationRepository handles publication file operations.
type PublicationRepository struct {
	root string
}

// NewPublicationRepository creates a new publication repository.
func NewPublicationRepository(root string) *PublicationRepository {
	return &PublicationRepository{root: root}
}

// Create stores a new publication with a generated ID and creation timestamp.
func (pr *PublicationRepository) Create(_ context.Context, publication *models.Publication) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate publication ID: %w", err)
	}

	now := time.Now().UTC()
	publication.ID = id.String()
	publication.CreatedAt = now
	publication.UpdatedAt = now

	return writeDocument(pr.root, publicationCollection, publication.ID, publication)
}

// GetAll returns every publication in the collection.
func (pr *PublicationRepository) GetAll(ctx context.Context) ([]*models.Publication, error) {
	ids, err := documentIDs(pr.root, publicationCollection)
	if err != nil {
		return nil, err
	}

	publications := make([]*models.Publication, 0, len(ids))

	for _, id := range ids {
		publication, err := pr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		publications = append(publications, publication)
	}

	return publications, nil
}

// GetByID retrieves a publication by its ID.
func (pr *PublicationRepository) GetByID(_ context.Context, id string) (*models.Publication, error) {
	var publication models.Publication

	found, err := readDocument(pr.root, publicationCollection, id, &publication)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "publication", id, persistence.ErrPublicationNotFound)
	}

	return &publication, nil
}

// Update replaces an existing publication.
func (pr *PublicationRepository) Update(_ context.Context, publication *models.Publication) error {
	if !documentExists(pr.root, publicationCollection, publication.ID) {
		return persistence.NewEntityError("Update", "publication", publication.ID, persistence.ErrPublicationNotFound)
	}

	publication.UpdatedAt = time.Now().UTC()

	return writeDocument(pr.root, publicationCollection, publication.ID, publication)
}

// Delete removes a publication; schedules referencing it are left untouched.
func (pr *PublicationRepository) Delete(_ context.Context, id string) error {
	found, err := deleteDocument(pr.root, publicationCollection, id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewEntityError("Delete", "publication", id, persistence.ErrPublicationNotFound)
	}

	return nil
}
