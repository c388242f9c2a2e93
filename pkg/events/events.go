// Package events defines event types and structures for catalog and
// publishing lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/getdivulga/divulga/pkg/models"
)

type EventType string

// Kafka topic carrying every divulga event.
const Topic = "divulga.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Schedule lifecycle events.
	ScheduleCreatedEvent   EventType = "schedule.created"
	ScheduleUpdatedEvent   EventType = "schedule.updated"
	ScheduleDeletedEvent   EventType = "schedule.deleted"
	SchedulePausedEvent    EventType = "schedule.paused"
	ScheduleResumedEvent   EventType = "schedule.resumed"
	ScheduleCompletedEvent EventType = "schedule.completed"

	// Firing events, one per target group per due instant.
	FiringSucceededEvent EventType = "firing.succeeded"
	FiringFailedEvent    EventType = "firing.failed"
	FiringSkippedEvent   EventType = "firing.skipped"

	// Catalog entity events.
	ProductCreatedEvent     EventType = "product.created"
	ProductUpdatedEvent     EventType = "product.updated"
	ProductDeletedEvent     EventType = "product.deleted"
	GroupCreatedEvent       EventType = "group.created"
	GroupUpdatedEvent       EventType = "group.updated"
	GroupDeletedEvent       EventType = "group.deleted"
	PublicationCreatedEvent EventType = "publication.created"
	PublicationUpdatedEvent EventType = "publication.updated"
	PublicationDeletedEvent EventType = "publication.deleted"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	ScheduleID  string         `json:"schedule_id"`
	PublisherID string         `json:"publisher_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type ScheduleCreated struct {
	BaseEvent

	PublicationID string                `json:"publication_id"`
	Recurrence    models.RecurrenceType `json:"recurrence"`
	NextDueAt     *time.Time            `json:"next_due_at,omitempty"`
}

func (s ScheduleCreated) GetType() EventType {
	return ScheduleCreatedEvent
}

type ScheduleUpdated struct {
	BaseEvent

	PublicationID string     `json:"publication_id"`
	NextDueAt     *time.Time `json:"next_due_at,omitempty"`
}

func (s ScheduleUpdated) GetType() EventType {
	return ScheduleUpdatedEvent
}

type ScheduleDeleted struct {
	BaseEvent
}

func (s ScheduleDeleted) GetType() EventType {
	return ScheduleDeletedEvent
}

type SchedulePaused struct {
	BaseEvent
}

func (s SchedulePaused) GetType() EventType {
	return SchedulePausedEvent
}

type ScheduleResumed struct {
	BaseEvent

	NextDueAt *time.Time `json:"next_due_at,omitempty"`
}

func (s ScheduleResumed) GetType() EventType {
	return ScheduleResumedEvent
}

// ScheduleCompleted is emitted once when a schedule's recurrence is
// exhausted and the publisher engine marks it terminal.
type ScheduleCompleted struct {
	BaseEvent

	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
}

func (s ScheduleCompleted) GetType() EventType {
	return ScheduleCompletedEvent
}

type FiringSucceeded struct {
	BaseEvent

	PublicationID  string    `json:"publication_id"`
	GroupID        string    `json:"group_id"`
	FiredAt        time.Time `json:"fired_at"`
	PlatformPostID string    `json:"platform_post_id,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
}

func (f FiringSucceeded) GetType() EventType {
	return FiringSucceededEvent
}

type FiringFailed struct {
	BaseEvent

	PublicationID string    `json:"publication_id"`
	GroupID       string    `json:"group_id"`
	FiredAt       time.Time `json:"fired_at"`
	Error         string    `json:"error"`
	DurationMs    int64     `json:"duration_ms"`
}

func (f FiringFailed) GetType() EventType {
	return FiringFailedEvent
}

// FiringSkipped is emitted when a due firing targets an inactive group or a
// dangling publication reference. No posting attempt was made.
type FiringSkipped struct {
	BaseEvent

	PublicationID string    `json:"publication_id"`
	GroupID       string    `json:"group_id,omitempty"`
	FiredAt       time.Time `json:"fired_at"`
	Reason        string    `json:"reason"`
}

func (f FiringSkipped) GetType() EventType {
	return FiringSkippedEvent
}

// EntityChanged covers every catalog entity lifecycle event. The concrete
// event type lives in BaseEvent.Type; the schedule ID field stays empty.
type EntityChanged struct {
	BaseEvent

	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
}

func (e EntityChanged) GetType() EventType {
	return e.Type
}

// NewEntityChanged builds a catalog entity event of the given type.
func NewEntityChanged(eventType EventType, entity, entityID string) EntityChanged {
	base := NewBaseEvent(eventType, "")

	return EntityChanged{
		BaseEvent: base,
		Entity:    entity,
		EntityID:  entityID,
	}
}

func NewBaseEvent(eventType EventType, scheduleID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		ScheduleID: scheduleID,
		Metadata:   make(map[string]any),
	}
}
