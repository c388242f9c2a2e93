package models

import "time"

// FiringOutcome is the result of one posting attempt.
type FiringOutcome string

const (
	FiringSucceeded FiringOutcome = "succeeded"
	FiringFailed    FiringOutcome = "failed"
	FiringSkipped   FiringOutcome = "skipped" // Target group inactive or reference dangling
)

// FiringRecord is one append-only history entry for a schedule firing attempt
// against a single group. The (ScheduleID, FiredAt, GroupID) tuple is the
// dedup key that gives firings at-most-once semantics: two concurrent
// evaluations of the same due instant cannot both record it.
type FiringRecord struct {
	ID            string        `json:"id"`
	ScheduleID    string        `json:"schedule_id"    validate:"required"`
	PublicationID string        `json:"publication_id"`
	GroupID       string        `json:"group_id"`
	FiredAt       time.Time     `json:"fired_at"       validate:"required"`
	AttemptedAt   time.Time     `json:"attempted_at"`
	Outcome       FiringOutcome `json:"outcome"`
	PlatformPost  string        `json:"platform_post_id,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
