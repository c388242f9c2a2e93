package models

import "time"

// ScheduleStatus represents the lifecycle state of a schedule.
type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"    // Evaluated by the publisher engine
	ScheduleStatusPaused    ScheduleStatus = "paused"    // Suspended by the user, resumable
	ScheduleStatusCompleted ScheduleStatus = "completed" // Terminal, no further firings
)

// RecurrenceType defines how a schedule's firing dates advance.
type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// TimeSlot is a time-of-day at which a schedule fires on each recurrence date.
type TimeSlot struct {
	Hour   int `json:"hour"   validate:"min=0,max=23"`
	Minute int `json:"minute" validate:"min=0,max=59"`
}

// Schedule is a recurrence configuration that causes a publication to be
// posted to a set of groups repeatedly. NextDueAt is precomputed so the
// publisher engine can query due schedules without evaluating every
// recurrence rule on each tick.
type Schedule struct {
	ID             string         `json:"id"`
	PublicationID  string         `json:"publication_id"   validate:"required"`
	GroupIDs       []string       `json:"group_ids"        validate:"required,min=1"`
	Recurrence     RecurrenceType `json:"recurrence"       validate:"required"`
	IntervalDays   int            `json:"interval_days"    validate:"min=1"`
	TimeSlots      []TimeSlot     `json:"time_slots"       validate:"required,min=1,dive"`
	PostsPerFiring int            `json:"posts_per_firing" validate:"min=1"`
	StartDate      time.Time      `json:"start_date"       validate:"required"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	Status         ScheduleStatus `json:"status"`
	NextDueAt      *time.Time     `json:"next_due_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewSchedule creates an active schedule with its first due time computed.
// The candidate is validated before any field derivation; an invalid schedule
// is never returned partially constructed.
func NewSchedule(publicationID string, groupIDs []string, recurrence RecurrenceType, intervalDays int, slots []TimeSlot, postsPerFiring int, start time.Time, end *time.Time) (*Schedule, error) {
	now := time.Now().UTC()
	schedule := &Schedule{
		PublicationID:  publicationID,
		GroupIDs:       groupIDs,
		Recurrence:     recurrence,
		IntervalDays:   intervalDays,
		TimeSlots:      slots,
		PostsPerFiring: postsPerFiring,
		StartDate:      start.UTC(),
		EndDate:        end,
		Status:         ScheduleStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	schedule.RefreshNextDueAt(schedule.StartDate.Add(-time.Nanosecond))

	return schedule, nil
}

// Validate applies the schedule well-formedness rules in a fixed order and
// returns the first failure. A schedule is only ever fully valid or rejected.
func (s *Schedule) Validate() error {
	if s.PublicationID == "" {
		return ErrMissingPublication
	}

	if len(s.GroupIDs) == 0 {
		return ErrNoTargetGroups
	}

	switch s.Recurrence {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceCustom:
	default:
		return ErrInvalidRecurrenceType
	}

	if s.IntervalDays < 1 {
		return ErrIntervalOutOfRange
	}

	for _, slot := range s.TimeSlots {
		if slot.Hour < 0 || slot.Hour > 23 || slot.Minute < 0 || slot.Minute > 59 {
			return ErrSlotOutOfRange
		}
	}

	if len(s.TimeSlots) == 0 {
		return ErrNoTimeSlots
	}

	if s.PostsPerFiring < 1 {
		return ErrPostsPerFiringOutOfRange
	}

	if s.StartDate.IsZero() {
		return ErrInvalidStartDate
	}

	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return ErrEndBeforeStart
	}

	return nil
}

// Pause suspends an active schedule.
func (s *Schedule) Pause() error {
	return s.transition(ScheduleStatusPaused)
}

// Resume reactivates a paused schedule.
func (s *Schedule) Resume() error {
	return s.transition(ScheduleStatusActive)
}

// Complete marks an active schedule as finished. Completion is driven by the
// publisher engine once no further firings are possible; completed is
// terminal.
func (s *Schedule) Complete() error {
	return s.transition(ScheduleStatusCompleted)
}

var allowedTransitions = map[ScheduleStatus][]ScheduleStatus{
	ScheduleStatusActive: {ScheduleStatusPaused, ScheduleStatusCompleted},
	ScheduleStatusPaused: {ScheduleStatusActive},
}

func (s *Schedule) transition(to ScheduleStatus) error {
	for _, allowed := range allowedTransitions[s.Status] {
		if allowed == to {
			s.Status = to
			s.UpdatedAt = time.Now().UTC()

			return nil
		}
	}

	return ErrInvalidTransition
}

// IsDue reports whether the schedule should fire at the given instant.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Status == ScheduleStatusActive && s.NextDueAt != nil && !s.NextDueAt.After(now)
}

// RefreshNextDueAt recomputes NextDueAt as the earliest occurrence strictly
// after the given instant. When no occurrence remains within the end date,
// NextDueAt is cleared and false is returned so the caller can complete the
// schedule.
func (s *Schedule) RefreshNextDueAt(after time.Time) bool {
	next, ok := s.NextOccurrence(after)
	if !ok {
		s.NextDueAt = nil
		s.UpdatedAt = time.Now().UTC()

		return false
	}

	s.NextDueAt = &next
	s.UpdatedAt = time.Now().UTC()

	return true
}
