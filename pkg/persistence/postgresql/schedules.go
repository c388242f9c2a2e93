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

// ScheduleRepository handles schedule database operations.
type ScheduleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sql.DB, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{db: db, logger: logger}
}

const scheduleColumns = `
			id
		  , publication_id
		  , group_ids
		  , recurrence
		  , interval_days
		  , time_slots
		  , posts_per_firing
		  , start_date
		  , end_date
		  , status
		  , next_due_at
		  , created_at
		  , updated_at
`

// Create inserts a new schedule with a generated ID.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate schedule ID: %w", err)
	}

	now := time.Now().UTC()
	schedule.ID = id.String()

	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}

	schedule.UpdatedAt = now

	groupIDsJSON, timeSlotsJSON, err := marshalScheduleFields(schedule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO schedules (id, publication_id, group_ids, recurrence, interval_days, time_slots,
			posts_per_firing, start_date, end_date, status, next_due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(ctx, query,
		schedule.ID, schedule.PublicationID, groupIDsJSON, schedule.Recurrence,
		schedule.IntervalDays, timeSlotsJSON, schedule.PostsPerFiring,
		schedule.StartDate, schedule.EndDate, schedule.Status,
		schedule.NextDueAt, schedule.CreatedAt, schedule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	return nil
}

// GetAll returns all schedules.
func (r *ScheduleRepository) GetAll(ctx context.Context) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY created_at DESC`

	return r.querySchedules(ctx, query)
}

// GetByID returns a schedule by its ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEntityError("GetByID", "schedule", id, persistence.ErrScheduleNotFound)
		}

		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}

	return schedule, nil
}

// Update replaces the mutable fields of an existing schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()

	groupIDsJSON, timeSlotsJSON, err := marshalScheduleFields(schedule)
	if err != nil {
		return err
	}

	query := `
		UPDATE schedules
		SET publication_id = $2, group_ids = $3, recurrence = $4, interval_days = $5,
			time_slots = $6, posts_per_firing = $7, start_date = $8, end_date = $9,
			status = $10, next_due_at = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		schedule.ID, schedule.PublicationID, groupIDsJSON, schedule.Recurrence,
		schedule.IntervalDays, timeSlotsJSON, schedule.PostsPerFiring,
		schedule.StartDate, schedule.EndDate, schedule.Status,
		schedule.NextDueAt, schedule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	return requireRowAffected(result, "Update", "schedule", schedule.ID, persistence.ErrScheduleNotFound)
}

// Delete removes a schedule. Its firing history is retained.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	return requireRowAffected(result, "Delete", "schedule", id, persistence.ErrScheduleNotFound)
}

// ListDue returns active schedules due at or before the given instant. The
// partial index on (next_due_at) keeps this cheap regardless of how many
// paused or completed schedules accumulate.
func (r *ScheduleRepository) ListDue(ctx context.Context, before time.Time) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE status = 'active' AND next_due_at IS NOT NULL AND next_due_at <= $1
		ORDER BY next_due_at ASC`

	return r.querySchedules(ctx, query, before)
}

func (r *ScheduleRepository) querySchedules(ctx context.Context, query string, args ...any) ([]*models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	schedules := make([]*models.Schedule, 0)

	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}

		schedules = append(schedules, schedule)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

func marshalScheduleFields(schedule *models.Schedule) ([]byte, []byte, error) {
	groupIDsJSON, err := json.Marshal(schedule.GroupIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal group IDs: %w", err)
	}

	timeSlotsJSON, err := json.Marshal(schedule.TimeSlots)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal time slots: %w", err)
	}

	return groupIDsJSON, timeSlotsJSON, nil
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var (
		schedule      models.Schedule
		groupIDsJSON  []byte
		timeSlotsJSON []byte
		endDate       sql.NullTime
		nextDueAt     sql.NullTime
	)

	err := row.Scan(
		&schedule.ID, &schedule.PublicationID, &groupIDsJSON, &schedule.Recurrence,
		&schedule.IntervalDays, &timeSlotsJSON, &schedule.PostsPerFiring,
		&schedule.StartDate, &endDate, &schedule.Status, &nextDueAt,
		&schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(groupIDsJSON, &schedule.GroupIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group IDs: %w", err)
	}

	if err := json.Unmarshal(timeSlotsJSON, &schedule.TimeSlots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal time slots: %w", err)
	}

	if endDate.Valid {
		end := endDate.Time.UTC()
		schedule.EndDate = &end
	}

	if nextDueAt.Valid {
		next := nextDueAt.Time.UTC()
		schedule.NextDueAt = &next
	}

	return &schedule, nil
}
