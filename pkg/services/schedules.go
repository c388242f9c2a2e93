package services

import (
	"context"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
)

// Schedules manages recurrence configurations and exposes the two operations
// the publisher engine consumes: ListDue and RecordFiring.
type Schedules struct {
	persistence persistence.Persistence
}

// NewSchedules creates a new schedule service.
func NewSchedules(persistence persistence.Persistence) *Schedules {
	return &Schedules{persistence: persistence}
}

// HealthCheck checks the health of the persistence layer.
func (s *Schedules) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ScheduleCommand carries the fields for creating or replacing a schedule.
type ScheduleCommand struct {
	PublicationID  string                `json:"publication_id"   validate:"required"`
	GroupIDs       []string              `json:"group_ids"        validate:"required,min=1"`
	Recurrence     models.RecurrenceType `json:"recurrence"       validate:"required"`
	IntervalDays   int                   `json:"interval_days"    validate:"min=1"`
	TimeSlots      []models.TimeSlot     `json:"time_slots"       validate:"required,min=1,dive"`
	PostsPerFiring int                   `json:"posts_per_firing" validate:"min=1"`
	StartDate      time.Time             `json:"start_date"       validate:"required"`
	EndDate        *time.Time            `json:"end_date"`
}

// Create validates and stores a new schedule. The schedule starts active with
// its first due time precomputed; validation failures reject the whole
// schedule before anything is persisted.
func (s *Schedules) Create(ctx context.Context, cmd ScheduleCommand) (*models.Schedule, error) {
	schedule, err := models.NewSchedule(
		cmd.PublicationID, cmd.GroupIDs, cmd.Recurrence, cmd.IntervalDays,
		cmd.TimeSlots, cmd.PostsPerFiring, cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, &ServiceError{Op: "CreateSchedule", Err: err}
	}

	if err := s.persistence.Schedules().Create(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

// List returns all schedules.
func (s *Schedules) List(ctx context.Context) ([]*models.Schedule, error) {
	return s.persistence.Schedules().GetAll(ctx)
}

// Fetch returns one schedule by ID.
func (s *Schedules) Fetch(ctx context.Context, id string) (*models.Schedule, error) {
	return s.persistence.Schedules().GetByID(ctx, id)
}

// Update replaces the recurrence configuration of an existing schedule,
// re-validates every field and recomputes the next due time. The lifecycle
// state is not touched by edits.
func (s *Schedules) Update(ctx context.Context, id string, cmd ScheduleCommand) (*models.Schedule, error) {
	schedule, err := s.persistence.Schedules().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule.PublicationID = cmd.PublicationID
	schedule.GroupIDs = cmd.GroupIDs
	schedule.Recurrence = cmd.Recurrence
	schedule.IntervalDays = cmd.IntervalDays
	schedule.TimeSlots = cmd.TimeSlots
	schedule.PostsPerFiring = cmd.PostsPerFiring
	schedule.StartDate = cmd.StartDate.UTC()
	schedule.EndDate = cmd.EndDate

	if err := schedule.Validate(); err != nil {
		return nil, &ServiceError{Op: "UpdateSchedule", Err: err}
	}

	schedule.RefreshNextDueAt(nextDueReference(schedule))

	if err := s.persistence.Schedules().Update(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Delete removes a schedule. Its firing history is retained.
func (s *Schedules) Delete(ctx context.Context, id string) error {
	return s.persistence.Schedules().Delete(ctx, id)
}

// Pause suspends an active schedule.
func (s *Schedules) Pause(ctx context.Context, id string) (*models.Schedule, error) {
	return s.applyTransition(ctx, id, (*models.Schedule).Pause)
}

// Resume reactivates a paused schedule and recomputes its next due time so a
// long pause does not produce a burst of stale firings.
func (s *Schedules) Resume(ctx context.Context, id string) (*models.Schedule, error) {
	return s.applyTransition(ctx, id, func(schedule *models.Schedule) error {
		if err := schedule.Resume(); err != nil {
			return err
		}

		schedule.RefreshNextDueAt(time.Now().UTC())

		return nil
	})
}

// Complete marks a schedule as finished. Only the publisher engine calls
// this, once no further firings are possible.
func (s *Schedules) Complete(ctx context.Context, id string) (*models.Schedule, error) {
	return s.applyTransition(ctx, id, (*models.Schedule).Complete)
}

func (s *Schedules) applyTransition(ctx context.Context, id string, action func(*models.Schedule) error) (*models.Schedule, error) {
	schedule, err := s.persistence.Schedules().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := action(schedule); err != nil {
		return nil, &ServiceError{Op: "TransitionSchedule", Err: err}
	}

	if err := s.persistence.Schedules().Update(ctx, schedule); err != nil {
		return nil, err
	}

	return schedule, nil
}

// ListDue returns the schedules due at or before the given instant. The
// evaluation is read-only: calling it repeatedly with the same instant and no
// intervening firing returns the same set.
func (s *Schedules) ListDue(ctx context.Context, asOf time.Time) ([]*models.Schedule, error) {
	return s.persistence.Schedules().ListDue(ctx, asOf.UTC())
}

// RecordFiringCommand captures one posting attempt for the history log.
type RecordFiringCommand struct {
	ScheduleID    string
	PublicationID string
	GroupID       string
	FiredAt       time.Time
	Outcome       models.FiringOutcome
	PlatformPost  string
	ErrorMessage  string
}

// RecordFiring appends one attempt to the history log. A concurrent attempt
// for the same (schedule, instant, group) key fails with ErrDuplicateFiring;
// callers treat that as "another instance already posted this".
func (s *Schedules) RecordFiring(ctx context.Context, cmd RecordFiringCommand) (*models.FiringRecord, error) {
	record := &models.FiringRecord{
		ScheduleID:    cmd.ScheduleID,
		PublicationID: cmd.PublicationID,
		GroupID:       cmd.GroupID,
		FiredAt:       cmd.FiredAt.UTC(),
		AttemptedAt:   time.Now().UTC(),
		Outcome:       cmd.Outcome,
		PlatformPost:  cmd.PlatformPost,
		ErrorMessage:  cmd.ErrorMessage,
	}

	if err := s.persistence.History().RecordFiring(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// History returns the firing log for one schedule, oldest first.
func (s *Schedules) History(ctx context.Context, scheduleID string) ([]*models.FiringRecord, error) {
	if _, err := s.persistence.Schedules().GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}

	return s.persistence.History().ListBySchedule(ctx, scheduleID)
}

// AdvanceAfterFiring moves a schedule past a fired instant: the next due time
// is recomputed and, when the recurrence is exhausted, the schedule is
// completed.
func (s *Schedules) AdvanceAfterFiring(ctx context.Context, schedule *models.Schedule, firedAt time.Time) error {
	if !schedule.RefreshNextDueAt(firedAt.UTC()) {
		if err := schedule.Complete(); err != nil {
			return &ServiceError{Op: "AdvanceAfterFiring", Err: err}
		}
	}

	return s.persistence.Schedules().Update(ctx, schedule)
}

// nextDueReference picks the instant from which a schedule's next due time is
// computed after an edit: schedules starting in the future begin at their
// start date, already-running schedules continue from now.
func nextDueReference(schedule *models.Schedule) time.Time {
	now := time.Now().UTC()
	if schedule.StartDate.After(now) {
		return schedule.StartDate.Add(-time.Nanosecond)
	}

	return now
}
