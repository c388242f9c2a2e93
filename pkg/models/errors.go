package models

import "errors"

// Schedule validation errors, one per rule. Validate applies the rules in
// order and returns the first failure.
var (
	// ErrMissingPublication indicates the schedule has no publication reference.
	ErrMissingPublication = errors.New("schedule requires a publication reference")

	// ErrNoTargetGroups indicates the schedule has an empty target group set.
	ErrNoTargetGroups = errors.New("schedule requires at least one target group")

	// ErrInvalidRecurrenceType indicates an unrecognized recurrence type value.
	ErrInvalidRecurrenceType = errors.New("unrecognized recurrence type")

	// ErrIntervalOutOfRange indicates a recurrence interval below one day.
	ErrIntervalOutOfRange = errors.New("recurrence interval must be at least 1 day")

	// ErrSlotOutOfRange indicates a time slot outside hour 0-23 or minute 0-59.
	ErrSlotOutOfRange = errors.New("time slot hour or minute out of range")

	// ErrNoTimeSlots indicates the schedule has no time-of-day slots.
	ErrNoTimeSlots = errors.New("schedule requires at least one time slot")

	// ErrPostsPerFiringOutOfRange indicates a posts-per-firing count below one.
	ErrPostsPerFiringOutOfRange = errors.New("posts per firing must be at least 1")

	// ErrInvalidStartDate indicates the start date is absent or not a valid date.
	ErrInvalidStartDate = errors.New("start date is not a valid calendar date")

	// ErrEndBeforeStart indicates an end date earlier than the start date.
	ErrEndBeforeStart = errors.New("end date precedes start date")
)

// Entity validation errors shared by products, groups and publications.
var (
	// ErrNameRequired indicates a required name or title field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrNegativePrice indicates a product price below zero.
	ErrNegativePrice = errors.New("price must not be negative")

	// ErrNegativeStock indicates a product stock quantity below zero.
	ErrNegativeStock = errors.New("stock must not be negative")

	// ErrInvalidLineItem indicates a publication line item with quantity below one.
	ErrInvalidLineItem = errors.New("line item quantity must be at least 1")

	// ErrInvalidPublicationStatus indicates an unrecognized publication status.
	ErrInvalidPublicationStatus = errors.New("invalid publication status")
)

// ErrInvalidTransition indicates a schedule state change that the lifecycle
// state machine does not permit.
var ErrInvalidTransition = errors.New("invalid schedule state transition")
