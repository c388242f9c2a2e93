package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

// GroupRepository handles group database operations.
type GroupRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sql.DB, logger *slog.Logger) *GroupRepository {
	return &GroupRepository{db: db, logger: logger}
}

// Create inserts a new group with a generated ID.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate group ID: %w", err)
	}

	group.ID = id.String()
	group.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO groups (id, name, platform_id, url, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.PlatformID, group.URL,
		group.Description, group.Active, group.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return nil
}

// GetAll returns all groups.
func (r *GroupRepository) GetAll(ctx context.Context) ([]*models.Group, error) {
	query := `
		SELECT
			id
		  , name
		  , platform_id
		  , url
		  , description
		  , active
		  , created_at
		FROM groups
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	groups := make([]*models.Group, 0)

	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}

		groups = append(groups, group)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// GetByID returns a group by its ID.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT
			id
		  , name
		  , platform_id
		  , url
		  , description
		  , active
		  , created_at
		FROM groups
		WHERE id = $1
	`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "group", id, persistence.ErrGroupNotFound)
		}

		return nil, fmt.Errorf("failed to scan group: %w", err)
	}

	return group, nil
}

// Update replaces the mutable fields of an existing group.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	query := `
		UPDATE groups
		SET name = $2, platform_id = $3, url = $4, description = $5, active = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.PlatformID, group.URL,
		group.Description, group.Active)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	return requireRowAffected(result, "Update", "group", group.ID, persistence.ErrGroupNotFound)
}

// Delete removes a group without cascading to schedules.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return requireRowAffected(result, "Delete", "group", id, persistence.ErrGroupNotFound)
}

func scanGroup(row rowScanner) (*models.Group, error) {
	var group models.Group

	err := row.Scan(
		&group.ID, &group.Name, &group.PlatformID, &group.URL,
		&group.Description, &group.Active, &group.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &group, nil
}
