package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/getdivulga/divulga/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"firing_history", "schedules", "publications", "groups", "products", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("divulga_test"),
			postgres.WithUsername("divulga"),
			postgres.WithPassword("divulga"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func TestPersistence_HealthCheck(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))
}

func TestScheduleRepository_RoundTripAndListDue(t *testing.T) {
	p, ctx := setupTestDB(t)

	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	schedule, err := models.NewSchedule(
		"pub-1",
		[]string{"group-1", "group-2"},
		models.RecurrenceDaily,
		2,
		[]models.TimeSlot{{Hour: 9, Minute: 0}},
		1,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		&end,
	)
	require.NoError(t, err)

	require.NoError(t, p.Schedules().Create(ctx, schedule))

	fetched, err := p.Schedules().GetByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.GroupIDs, fetched.GroupIDs)
	assert.Equal(t, schedule.TimeSlots, fetched.TimeSlots)
	require.NotNil(t, fetched.NextDueAt)
	assert.True(t, schedule.NextDueAt.Equal(*fetched.NextDueAt))

	due, err := p.Schedules().ListDue(ctx, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 1)

	require.NoError(t, fetched.Pause())
	require.NoError(t, p.Schedules().Update(ctx, fetched))

	due, err = p.Schedules().ListDue(ctx, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestHistoryRepository_UniqueFiringKey(t *testing.T) {
	p, ctx := setupTestDB(t)

	firedAt := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

	record := &models.FiringRecord{
		ScheduleID: "sched-1",
		GroupID:    "group-1",
		FiredAt:    firedAt,
		Outcome:    models.FiringSucceeded,
	}
	require.NoError(t, p.History().RecordFiring(ctx, record))

	duplicate := &models.FiringRecord{
		ScheduleID: "sched-1",
		GroupID:    "group-1",
		FiredAt:    firedAt,
		Outcome:    models.FiringFailed,
	}
	err := p.History().RecordFiring(ctx, duplicate)
	require.ErrorIs(t, err, persistence.ErrDuplicateFiring)

	records, err := p.History().ListBySchedule(ctx, "sched-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FiringSucceeded, records[0].Outcome)
}

func TestProductRepository_Postgres_CRUD(t *testing.T) {
	p, ctx := setupTestDB(t)

	product := &models.Product{Name: "Handmade candle", Price: 8.90, Stock: 12}
	require.NoError(t, p.Products().Create(ctx, product))

	fetched, err := p.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Handmade candle", fetched.Name)

	fetched.Stock = 10
	require.NoError(t, p.Products().Update(ctx, fetched))

	require.NoError(t, p.Products().Delete(ctx, product.ID))

	_, err = p.Products().GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, persistence.ErrProductNotFound)
}
