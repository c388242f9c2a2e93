package file

import (
	"context"
	"fmt"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/google/uuid"
)

const scheduleCollection = "schedules"

// ScheduleRepository handles schedule file operations.
type ScheduleRepository struct {
	root string
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(root string) *ScheduleRepository {
	return &ScheduleRepository{root: root}
}

// Create stores a new schedule with a generated ID.
func (sr *ScheduleRepository) Create(_ context.Context, schedule *models.Schedule) error {
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

	return writeDocument(sr.root, scheduleCollection, schedule.ID, schedule)
}

// GetAll returns every schedule in the collection.
func (sr *ScheduleRepository) GetAll(ctx context.Context) ([]*models.Schedule, error) {
	ids, err := documentIDs(sr.root, scheduleCollection)
	if err != nil {
		return nil, err
	}

	schedules := make([]*models.Schedule, 0, len(ids))

	for _, id := range ids {
		schedule, err := sr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	return schedules, nil
}

// GetByID retrieves a schedule by its ID.
func (sr *ScheduleRepository) GetByID(_ context.Context, id string) (*models.Schedule, error) {
	var schedule models.Schedule

	found, err := readDocument(sr.root, scheduleCollection, id, &schedule)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewEntityError("GetByID", "schedule", id, persistence.ErrScheduleNotFound)
	}

	return &schedule, nil
}

// Update replaces an existing schedule.
func (sr *ScheduleRepository) Update(_ context.Context, schedule *models.Schedule) error {
	if !documentExists(sr.root, scheduleCollection, schedule.ID) {
		return persistence.NewEntityError("Update", "schedule", schedule.ID, persistence.ErrScheduleNotFound)
	}

	schedule.UpdatedAt = time.Now().UTC()

	return writeDocument(sr.root, scheduleCollection, schedule.ID, schedule)
}

// Delete removes a schedule. Its firing history is retained.
func (sr *ScheduleRepository) Delete(_ context.Context, id string) error {
	found, err := deleteDocument(sr.root, scheduleCollection, id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewEntityError("Delete", "schedule", id, persistence.ErrScheduleNotFound)
	}

	return nil
}

// ListDue returns active schedules whose next due time is at or before the
// given instant. Ordering follows the collection listing and is not
// semantically significant.
func (sr *ScheduleRepository) ListDue(ctx context.Context, before time.Time) ([]*models.Schedule, error) {
	schedules, err := sr.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Schedule, 0)

	for _, schedule := range schedules {
		if schedule.IsDue(before) {
			due = append(due, schedule)
		}
	}

	return due, nil
}
