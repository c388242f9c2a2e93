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

// HistoryRepository is the append-only firing log backed by the
// firing_history table. The unique index on (schedule_id, fired_at, group_id)
// makes RecordFiring safe under concurrent publisher instances: the insert
// uses ON CONFLICT DO NOTHING and a zero-row result means another instance
// already recorded the firing.
type HistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB, logger *slog.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// RecordFiring appends one firing record, or fails with ErrDuplicateFiring.
func (r *HistoryRepository) RecordFiring(ctx context.Context, record *models.FiringRecord) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate firing record ID: %w", err)
	}

	record.ID = id.String()
	record.CreatedAt = time.Now().UTC()

	if record.AttemptedAt.IsZero() {
		record.AttemptedAt = record.CreatedAt
	}

	query := `
		INSERT INTO firing_history (id, schedule_id, publication_id, group_id, fired_at,
			attempted_at, outcome, platform_post_id, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (schedule_id, fired_at, group_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID, record.ScheduleID, record.PublicationID, record.GroupID,
		record.FiredAt, record.AttemptedAt, record.Outcome,
		record.PlatformPost, record.ErrorMessage, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert firing record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewEntityError("RecordFiring", "firing", record.ScheduleID, persistence.ErrDuplicateFiring)
	}

	return nil
}

const firingColumns = `
			id
		  , schedule_id
		  , publication_id
		  , group_id
		  , fired_at
		  , attempted_at
		  , outcome
		  , platform_post_id
		  , error_message
		  , created_at
`

// ListBySchedule returns all firing records for a schedule, oldest first.
func (r *HistoryRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]*models.FiringRecord, error) {
	query := `SELECT ` + firingColumns + `
		FROM firing_history
		WHERE schedule_id = $1
		ORDER BY fired_at ASC, group_id ASC`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query firing history: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.FiringRecord, 0)

	for rows.Next() {
		record, err := scanFiringRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan firing record: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating firing history: %w", err)
	}

	return records, nil
}

// LastFiring returns the most recent firing record for a schedule.
func (r *HistoryRepository) LastFiring(ctx context.Context, scheduleID string) (*models.FiringRecord, error) {
	query := `SELECT ` + firingColumns + `
		FROM firing_history
		WHERE schedule_id = $1
		ORDER BY fired_at DESC
		LIMIT 1`

	record, err := scanFiringRecord(r.db.QueryRowContext(ctx, query, scheduleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("LastFiring", "firing", scheduleID, persistence.ErrFiringNotFound)
		}

		return nil, fmt.Errorf("failed to scan firing record: %w", err)
	}

	return record, nil
}

func scanFiringRecord(row rowScanner) (*models.FiringRecord, error) {
	var record models.FiringRecord

	err := row.Scan(
		&record.ID, &record.ScheduleID, &record.PublicationID, &record.GroupID,
		&record.FiredAt, &record.AttemptedAt, &record.Outcome,
		&record.PlatformPost, &record.ErrorMessage, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &record, nil
}
