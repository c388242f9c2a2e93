// Package publisher implements the execution engine that evaluates due
// schedules and posts publications to their target groups.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/getdivulga/divulga/pkg/eventbus"
	"github.com/getdivulga/divulga/pkg/events"
	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/otelhelper"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/services"
)

const DefaultPollCron = "* * * * *"

const defaultLockTTL = 2 * time.Minute

// Config carries the engine wiring. Locker, EventBus and Tracer are
// optional; a nil value disables the corresponding concern.
type Config struct {
	ID          string
	Logger      *slog.Logger
	Persistence persistence.Persistence
	Connector   platform.Connector
	EventBus    eventbus.EventPublisher
	Tracer      trace.Tracer
	Locker      *Locker
	PollCron    string
	LockTTL     time.Duration
}

// Engine is the centralized poller: one loop evaluates every due schedule
// regardless of its individual recurrence settings.
type Engine struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	schedules   *services.Schedules
	connector   platform.Connector
	eventBus    eventbus.EventPublisher
	tracer      trace.Tracer
	locker      *Locker
	cadence     cron.Schedule
	lockTTL     time.Duration
}

func NewEngine(cfg Config) (*Engine, error) {
	pollCron := cfg.PollCron
	if pollCron == "" {
		pollCron = DefaultPollCron
	}

	cadence, err := cron.ParseStandard(pollCron)
	if err != nil {
		return nil, fmt.Errorf("invalid poll cron expression %q: %w", pollCron, err)
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("publisher")
	}

	return &Engine{
		id:          cfg.ID,
		logger:      cfg.Logger.With("publisher_id", cfg.ID),
		persistence: cfg.Persistence,
		schedules:   services.NewSchedules(cfg.Persistence),
		connector:   cfg.Connector,
		eventBus:    cfg.EventBus,
		tracer:      tracer,
		locker:      cfg.Locker,
		cadence:     cadence,
		lockTTL:     lockTTL,
	}, nil
}

// Run polls until the context is cancelled. Ticks follow the configured cron
// cadence, minute resolution by default.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Starting publisher engine", "cadence", fmt.Sprintf("%T", e.cadence))

	for {
		next := e.cadence.Next(time.Now())

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Info("Publisher engine stopped")

			return ctx.Err()
		case <-timer.C:
			e.ProcessDue(ctx, time.Now().UTC())
		}
	}
}

// ProcessDue evaluates every schedule due at or before now and fires each
// one. Failures are logged per schedule; one broken schedule never blocks
// the rest.
func (e *Engine) ProcessDue(ctx context.Context, now time.Time) {
	dueSchedules, err := e.schedules.ListDue(ctx, now)
	if err != nil {
		e.logger.Error("Failed to list due schedules", "error", err)

		return
	}

	if len(dueSchedules) > 0 {
		e.logger.Info("Processing due schedules", "count", len(dueSchedules))
	}

	for _, schedule := range dueSchedules {
		e.fireSchedule(ctx, schedule)
	}
}

// fireSchedule posts one due instant of a schedule to all its groups and
// advances the schedule past that instant.
func (e *Engine) fireSchedule(ctx context.Context, schedule *models.Schedule) {
	if schedule.NextDueAt == nil {
		return
	}

	firedAt := *schedule.NextDueAt
	logger := e.logger.With("schedule_id", schedule.ID, "fired_at", firedAt)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "publisher.fire",
		attribute.String(otelhelper.ScheduleIDKey, schedule.ID),
		attribute.String(otelhelper.PublicationIDKey, schedule.PublicationID),
		attribute.String(otelhelper.FiredAtKey, firedAt.Format(time.RFC3339)),
	)
	defer span.End()

	lockKey := fmt.Sprintf("divulga:firing:%s:%d", schedule.ID, firedAt.Unix())

	token, acquired, err := e.locker.TryLock(ctx, lockKey, e.lockTTL)
	if err != nil {
		logger.Error("Failed to acquire firing lock", "error", err)
		otelhelper.SetError(span, err)

		return
	}

	if !acquired {
		logger.Info("Firing locked by another instance, skipping")

		return
	}

	defer func() {
		if err := e.locker.Release(ctx, lockKey, token); err != nil {
			logger.Warn("Failed to release firing lock", "error", err)
		}
	}()

	publication, err := e.persistence.Publications().GetByID(ctx, schedule.PublicationID)
	if err != nil {
		if !persistence.IsNotFound(err) {
			logger.Error("Failed to load publication", "error", err)
			otelhelper.SetError(span, err)

			return
		}

		// Dangling publication reference: the firing is consumed as
		// skipped so the schedule still advances.
		logger.Warn("Publication missing, skipping firing", "publication_id", schedule.PublicationID)
		e.recordSkipped(ctx, schedule, firedAt, "", "publication not found")
		e.advance(ctx, schedule, firedAt, logger)

		return
	}

	content := ComposeContent(ctx, e.persistence.Products(), publication)

	for _, groupID := range schedule.GroupIDs {
		e.fireGroup(ctx, schedule, publication, groupID, firedAt, content, logger)
	}

	e.advance(ctx, schedule, firedAt, logger)
}

// fireGroup posts one group's share of a firing and records the attempt.
func (e *Engine) fireGroup(
	ctx context.Context,
	schedule *models.Schedule,
	publication *models.Publication,
	groupID string,
	firedAt time.Time,
	content platform.PostContent,
	logger *slog.Logger,
) {
	logger = logger.With("group_id", groupID)

	group, err := e.persistence.Groups().GetByID(ctx, groupID)
	if err != nil {
		if !persistence.IsNotFound(err) {
			logger.Error("Failed to load group", "error", err)

			return
		}

		logger.Warn("Group missing, skipping")
		e.recordSkipped(ctx, schedule, firedAt, groupID, "group not found")

		return
	}

	if !group.Active {
		logger.Info("Group inactive, skipping")
		e.recordSkipped(ctx, schedule, firedAt, groupID, "group inactive")

		return
	}

	platformGroupID := group.PlatformID
	if platformGroupID == "" {
		platformGroupID = group.ID
	}

	started := time.Now()

	var (
		postErr error
		postID  string
	)

	for range schedule.PostsPerFiring {
		result, err := e.connector.Post(ctx, platformGroupID, content)
		if err != nil {
			postErr = err

			break
		}

		postID = result.PostID
	}

	duration := time.Since(started).Milliseconds()

	if postErr != nil {
		logger.Error("Failed to post to group", "error", postErr)
		e.recordOutcome(ctx, services.RecordFiringCommand{
			ScheduleID:    schedule.ID,
			PublicationID: publication.ID,
			GroupID:       groupID,
			FiredAt:       firedAt,
			Outcome:       models.FiringFailed,
			ErrorMessage:  postErr.Error(),
		}, logger)
		e.publishEvent(ctx, schedule.ID, events.FiringFailed{
			BaseEvent:     e.baseEvent(events.FiringFailedEvent, schedule.ID),
			PublicationID: publication.ID,
			GroupID:       groupID,
			FiredAt:       firedAt,
			Error:         postErr.Error(),
			DurationMs:    duration,
		})

		return
	}

	logger.Info("Posted to group", "post_id", postID)
	e.recordOutcome(ctx, services.RecordFiringCommand{
		ScheduleID:    schedule.ID,
		PublicationID: publication.ID,
		GroupID:       groupID,
		FiredAt:       firedAt,
		Outcome:       models.FiringSucceeded,
		PlatformPost:  postID,
	}, logger)
	e.publishEvent(ctx, schedule.ID, events.FiringSucceeded{
		BaseEvent:      e.baseEvent(events.FiringSucceededEvent, schedule.ID),
		PublicationID:  publication.ID,
		GroupID:        groupID,
		FiredAt:        firedAt,
		PlatformPostID: postID,
		DurationMs:     duration,
	})
}

func (e *Engine) recordSkipped(ctx context.Context, schedule *models.Schedule, firedAt time.Time, groupID, reason string) {
	e.recordOutcome(ctx, services.RecordFiringCommand{
		ScheduleID:    schedule.ID,
		PublicationID: schedule.PublicationID,
		GroupID:       groupID,
		FiredAt:       firedAt,
		Outcome:       models.FiringSkipped,
		ErrorMessage:  reason,
	}, e.logger.With("schedule_id", schedule.ID, "group_id", groupID))
	e.publishEvent(ctx, schedule.ID, events.FiringSkipped{
		BaseEvent:     e.baseEvent(events.FiringSkippedEvent, schedule.ID),
		PublicationID: schedule.PublicationID,
		GroupID:       groupID,
		FiredAt:       firedAt,
		Reason:        reason,
	})
}

func (e *Engine) recordOutcome(ctx context.Context, cmd services.RecordFiringCommand, logger *slog.Logger) {
	_, err := e.schedules.RecordFiring(ctx, cmd)
	if err != nil {
		if persistence.IsDuplicateFiring(err) {
			// Another instance recorded this firing first.
			logger.Info("Firing already recorded, skipping")

			return
		}

		logger.Error("Failed to record firing", "error", err)
	}
}

// advance moves the schedule past the fired instant and emits the completion
// event once the recurrence is exhausted.
func (e *Engine) advance(ctx context.Context, schedule *models.Schedule, firedAt time.Time, logger *slog.Logger) {
	if err := e.schedules.AdvanceAfterFiring(ctx, schedule, firedAt); err != nil {
		logger.Error("Failed to advance schedule", "error", err)

		return
	}

	if schedule.Status == models.ScheduleStatusCompleted {
		logger.Info("Schedule completed")
		e.publishEvent(ctx, schedule.ID, events.ScheduleCompleted{
			BaseEvent:   e.baseEvent(events.ScheduleCompletedEvent, schedule.ID),
			LastFiredAt: &firedAt,
		})

		return
	}

	logger.Info("Schedule advanced", "next_due_at", schedule.NextDueAt)
}

func (e *Engine) baseEvent(eventType events.EventType, scheduleID string) events.BaseEvent {
	base := events.NewBaseEvent(eventType, scheduleID)
	base.PublisherID = e.id

	return base
}

func (e *Engine) publishEvent(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, key, event); err != nil {
		e.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
