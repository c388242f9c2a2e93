// Package persistence provides the data storage abstraction layer for the
// publishing catalog, schedules and firing history.
package persistence

import (
	"context"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
)

// Persistence bundles the entity repositories behind a single storage handle.
type Persistence interface {
	Products() ProductRepository
	Groups() GroupRepository
	Publications() PublicationRepository
	Schedules() ScheduleRepository
	History() HistoryRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ProductRepository stores catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetAll(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// GroupRepository stores posting destinations.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetAll(ctx context.Context) ([]*models.Group, error)
	GetByID(ctx context.Context, id string) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}

// PublicationRepository stores content bundles.
type PublicationRepository interface {
	Create(ctx context.Context, publication *models.Publication) error
	GetAll(ctx context.Context) ([]*models.Publication, error)
	GetByID(ctx context.Context, id string) (*models.Publication, error)
	Update(ctx context.Context, publication *models.Publication) error
	Delete(ctx context.Context, id string) error
}

// ScheduleRepository stores recurrence configurations. ListDue supports the
// publisher engine: it returns active schedules whose precomputed next due
// time is at or before the given instant.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetAll(ctx context.Context) ([]*models.Schedule, error)
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
	ListDue(ctx context.Context, before time.Time) ([]*models.Schedule, error)
}

// HistoryRepository is the append-only firing log. RecordFiring must reject a
// record whose (schedule, fired-at instant, group) key already exists with
// ErrDuplicateFiring, which is what gives firings at-most-once semantics
// under concurrent evaluation.
type HistoryRepository interface {
	RecordFiring(ctx context.Context, record *models.FiringRecord) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]*models.FiringRecord, error)
	LastFiring(ctx context.Context, scheduleID string) (*models.FiringRecord, error)
}
