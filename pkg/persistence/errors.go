// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrProductNotFound indicates a product was not found by the given identifier.
	ErrProductNotFound = errors.New("product not found")

	// ErrGroupNotFound indicates a group was not found by the given identifier.
	ErrGroupNotFound = errors.New("group not found")

	// ErrPublicationNotFound indicates a publication was not found by the given identifier.
	ErrPublicationNotFound = errors.New("publication not found")

	// ErrScheduleNotFound indicates a schedule was not found by the given identifier.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrFiringNotFound indicates no firing history exists for the given schedule.
	ErrFiringNotFound = errors.New("firing record not found")

	// ErrDuplicateFiring indicates a firing with the same schedule, instant and
	// group was already recorded. Exactly one of two concurrent attempts for
	// the same key succeeds; the other receives this error.
	ErrDuplicateFiring = errors.New("firing already recorded")
)

// EntityError wraps storage errors with the operation and entity context.
type EntityError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	Entity string // Entity kind (e.g., "product", "schedule")
	ID     string // Entity ID if applicable
	Err    error  // Underlying error
}

func (e *EntityError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for entity errors.
func (e *EntityError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewEntityError creates a new entity error with context.
func NewEntityError(op, entity, id string, err error) *EntityError {
	return &EntityError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrPublicationNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrFiringNotFound)
}

// IsDuplicateFiring checks if an error indicates a prevented double fire.
func IsDuplicateFiring(err error) bool {
	return errors.Is(err, ErrDuplicateFiring)
}
