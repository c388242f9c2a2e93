// Package postgresql provides PostgreSQL persistence for the publishing
// entities and the firing history log.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/getdivulga/divulga/pkg/persistence/sqlbase"
	_ "github.com/lib/pq" // postgres driver
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	products     *ProductRepository
	groups       *GroupRepository
	publications *PublicationRepository
	schedules    *ScheduleRepository
	history      *HistoryRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		products:     NewProductRepository(database, logger),
		groups:       NewGroupRepository(database, logger),
		publications: NewPublicationRepository(database, logger),
		schedules:    NewScheduleRepository(database, logger),
		history:      NewHistoryRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) Products() persistence.ProductRepository {
	return p.products
}

func (p *Persistence) Groups() persistence.GroupRepository {
	return p.groups
}

func (p *Persistence) Publications() persistence.PublicationRepository {
	return p.publications
}

func (p *Persistence) Schedules() persistence.ScheduleRepository {
	return p.schedules
}

func (p *Persistence) History() persistence.HistoryRepository {
	return p.history
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
