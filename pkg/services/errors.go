// Package services provides the business layer between the HTTP handlers,
// the publisher engine and the persistence repositories.
package services

import (
	"errors"
	"fmt"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
)

// Validation errors surfaced by this layer are the model sentinel errors;
// they indicate client mistakes (HTTP 400). Conflicts (HTTP 409) are illegal
// state transitions and prevented double fires.
var validationErrors = []error{
	models.ErrMissingPublication,
	models.ErrNoTargetGroups,
	models.ErrInvalidRecurrenceType,
	models.ErrIntervalOutOfRange,
	models.ErrSlotOutOfRange,
	models.ErrNoTimeSlots,
	models.ErrPostsPerFiringOutOfRange,
	models.ErrInvalidStartDate,
	models.ErrEndBeforeStart,
	models.ErrNameRequired,
	models.ErrNegativePrice,
	models.ErrNegativeStock,
	models.ErrInvalidLineItem,
	models.ErrInvalidPublicationStatus,
}

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation failure that should
// map to HTTP 400. Validation failures are detected before any persistence
// attempt, so nothing is partially written.
func IsValidationError(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}

// IsConflictError checks if an error is a business conflict (HTTP 409).
func IsConflictError(err error) bool {
	return errors.Is(err, models.ErrInvalidTransition) ||
		persistence.IsDuplicateFiring(err)
}

// IsNotFoundError checks if an error indicates an absent entity (HTTP 404).
func IsNotFoundError(err error) bool {
	return persistence.IsNotFound(err)
}
