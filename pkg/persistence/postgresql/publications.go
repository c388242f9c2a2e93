package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

// PublicationRepository handles publication database operations.
type PublicationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPublicationRepository creates a new publication repository.
func NewPublicationRepository(db *sql.DB, logger *slog.Logger) *PublicationRepository {
	return &PublicationRepository{db: db, logger: logger}
}

// Create inserts a new publication with a generated ID.
func (r *PublicationRepository) Create(ctx context.Context, publication *models.Publication) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate publication ID: %w", err)
	}

	now := time.Now().UTC()
	publication.ID = id.String()
	publication.CreatedAt = now
	publication.UpdatedAt = now

	lineItemsJSON, err := json.Marshal(publication.LineItems)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}

	query := `
		INSERT INTO publications (id, title, description, image_url, line_items, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		publication.ID, publication.Title, publication.Description,
		publication.ImageURL, lineItemsJSON, publication.Status,
		publication.CreatedAt, publication.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert publication: %w", err)
	}

	return nil
}

// GetAll returns all publications.
func (r *PublicationRepository) GetAll(ctx context.Context) ([]*models.Publication, error) {
	query := `
		SELECT
			id
		  , title
		  , description
		  , image_url
		  , line_items
		  , status
		  , created_at
		  , updated_at
		FROM publications
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query publications: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	publications := make([]*models.Publication, 0)

	for rows.Next() {
		publication, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}

		publications = append(publications, publication)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating publications: %w", err)
	}

	return publications, nil
}

// GetByID returns a publication by its ID.
func (r *PublicationRepository) GetByID(ctx context.Context, id string) (*models.Publication, error) {
	query := `
		SELECT
			id
		  , title
		  , description
		  , image_url
		  , line_items
		  , status
		  , created_at
		  , updated_at
		FROM publications
		WHERE id = $1
	`

	publication, err := scanPublication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "publication", id, persistence.ErrPublicationNotFound)
		}

		return nil, fmt.Errorf("failed to scan publication: %w", err)
	}

	return publication, nil
}

// Update replaces the mutable fields of an existing publication.
func (r *PublicationRepository) Update(ctx context.Context, publication *models.Publication) error {
	publication.UpdatedAt = time.Now().UTC()

	lineItemsJSON, err := json.Marshal(publication.LineItems)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}

	query := `
		UPDATE publications
		SET title = $2, description = $3, image_url = $4, line_items = $5, status = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		publication.ID, publication.Title, publication.Description,
		publication.ImageURL, lineItemsJSON, publication.Status,
		publication.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update publication: %w", err)
	}

	return requireRowAffected(result, "Update", "publication", publication.ID, persistence.ErrPublicationNotFound)
}

// Delete removes a publication without cascading to schedules.
func (r *PublicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM publications WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}

	return requireRowAffected(result, "Delete", "publication", id, persistence.ErrPublicationNotFound)
}

func scanPublication(row rowScanner) (*models.Publication, error) {
	var (
		publication   models.Publication
		lineItemsJSON []byte
	)

	err := row.Scan(
		&publication.ID, &publication.Title, &publication.Description,
		&publication.ImageURL, &lineItemsJSON, &publication.Status,
		&publication.CreatedAt, &publication.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(lineItemsJSON, &publication.LineItems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal line items: %w", err)
	}

	return &publication, nil
}
