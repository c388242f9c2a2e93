package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence/file"
	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/services"
)

type recordedPost struct {
	GroupID string
	Content platform.PostContent
}

type stubConnector struct {
	mu    sync.Mutex
	posts []recordedPost
	err   error
}

func (s *stubConnector) Post(_ context.Context, platformGroupID string, content platform.PostContent) (*platform.PostResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	s.posts = append(s.posts, recordedPost{GroupID: platformGroupID, Content: content})

	return &platform.PostResult{PostID: "post-1"}, nil
}

type engineFixture struct {
	engine    *Engine
	connector *stubConnector
	products  *services.Products
	groups    *services.Groups
	pubs      *services.Publications
	schedules *services.Schedules
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	connector := &stubConnector{}

	engine, err := NewEngine(Config{
		ID:          "test-publisher",
		Logger:      slog.Default(),
		Persistence: p,
		Connector:   connector,
	})
	require.NoError(t, err)

	return &engineFixture{
		engine:    engine,
		connector: connector,
		products:  services.NewProducts(p),
		groups:    services.NewGroups(p),
		pubs:      services.NewPublications(p),
		schedules: services.NewSchedules(p),
	}
}

func (f *engineFixture) createSchedule(t *testing.T, groupIDs []string) *models.Schedule {
	t.Helper()

	product, err := f.products.Create(t.Context(), services.CreateProductCommand{
		Name:  "Ceramic Mug",
		Price: 12.50,
		Stock: 10,
	})
	require.NoError(t, err)

	publication, err := f.pubs.Create(t.Context(), services.CreatePublicationCommand{
		Title:       "Weekend Offers",
		Description: "Everything handmade",
		Status:      models.PublicationStatusActive,
		LineItems:   []models.LineItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	schedule, err := f.schedules.Create(t.Context(), services.ScheduleCommand{
		PublicationID:  publication.ID,
		GroupIDs:       groupIDs,
		Recurrence:     models.RecurrenceDaily,
		IntervalDays:   1,
		TimeSlots:      []models.TimeSlot{{Hour: 9, Minute: 0}},
		PostsPerFiring: 1,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return schedule
}

func TestEngine_ProcessDue_PostsAndAdvances(t *testing.T) {
	f := newEngineFixture(t)

	group, err := f.groups.Create(t.Context(), services.CreateGroupCommand{
		Name:       "Neighborhood Sales",
		PlatformID: "fb-42",
	})
	require.NoError(t, err)

	schedule := f.createSchedule(t, []string{group.ID})
	firedAt := *schedule.NextDueAt

	f.engine.ProcessDue(t.Context(), firedAt)

	require.Len(t, f.connector.posts, 1)
	assert.Equal(t, "fb-42", f.connector.posts[0].GroupID)
	assert.Contains(t, f.connector.posts[0].Content.Message, "Weekend Offers")
	assert.Contains(t, f.connector.posts[0].Content.Message, "2x Ceramic Mug - $12.50")

	records, err := f.schedules.History(t.Context(), schedule.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FiringSucceeded, records[0].Outcome)
	assert.Equal(t, "post-1", records[0].PlatformPost)

	advanced, err := f.schedules.Fetch(t.Context(), schedule.ID)
	require.NoError(t, err)
	require.NotNil(t, advanced.NextDueAt)
	assert.Equal(t, firedAt.AddDate(0, 0, 1), *advanced.NextDueAt)
}

func TestEngine_ProcessDue_Idempotent(t *testing.T) {
	f := newEngineFixture(t)

	group, err := f.groups.Create(t.Context(), services.CreateGroupCommand{Name: "Sales", PlatformID: "fb-1"})
	require.NoError(t, err)

	schedule := f.createSchedule(t, []string{group.ID})
	firedAt := *schedule.NextDueAt

	f.engine.ProcessDue(t.Context(), firedAt)
	f.engine.ProcessDue(t.Context(), firedAt)

	// The second pass finds nothing due: the schedule moved past firedAt.
	assert.Len(t, f.connector.posts, 1)

	records, err := f.schedules.History(t.Context(), schedule.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestEngine_ProcessDue_PlatformFailure(t *testing.T) {
	f := newEngineFixture(t)
	f.connector.err = errors.New("graph api error 190 (OAuthException): token expired")

	group, err := f.groups.Create(t.Context(), services.CreateGroupCommand{Name: "Sales", PlatformID: "fb-1"})
	require.NoError(t, err)

	schedule := f.createSchedule(t, []string{group.ID})
	firedAt := *schedule.NextDueAt

	f.engine.ProcessDue(t.Context(), firedAt)

	records, err := f.schedules.History(t.Context(), schedule.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FiringFailed, records[0].Outcome)
	assert.Contains(t, records[0].ErrorMessage, "OAuthException")

	// A failed post still consumes the due instant.
	advanced, err := f.schedules.Fetch(t.Context(), schedule.ID)
	require.NoError(t, err)
	require.NotNil(t, advanced.NextDueAt)
	assert.True(t, advanced.NextDueAt.After(firedAt))
}

func TestEngine_ProcessDue_SkipsInactiveAndMissingGroups(t *testing.T) {
	f := newEngineFixture(t)

	inactive := false

	dormant, err := f.groups.Create(t.Context(), services.CreateGroupCommand{
		Name:       "Dormant",
		PlatformID: "fb-2",
		Active:     &inactive,
	})
	require.NoError(t, err)

	schedule := f.createSchedule(t, []string{dormant.ID, "missing-group"})
	firedAt := *schedule.NextDueAt

	f.engine.ProcessDue(t.Context(), firedAt)

	assert.Empty(t, f.connector.posts)

	records, err := f.schedules.History(t.Context(), schedule.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, record := range records {
		assert.Equal(t, models.FiringSkipped, record.Outcome)
	}
}

func TestEngine_ProcessDue_DanglingPublication(t *testing.T) {
	f := newEngineFixture(t)

	group, err := f.groups.Create(t.Context(), services.CreateGroupCommand{Name: "Sales", PlatformID: "fb-1"})
	require.NoError(t, err)

	schedule := f.createSchedule(t, []string{group.ID})
	require.NoError(t, f.pubs.Delete(t.Context(), schedule.PublicationID))

	firedAt := *schedule.NextDueAt

	f.engine.ProcessDue(t.Context(), firedAt)

	assert.Empty(t, f.connector.posts)

	records, err := f.schedules.History(t.Context(), schedule.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FiringSkipped, records[0].Outcome)
	assert.Equal(t, "publication not found", records[0].ErrorMessage)

	advanced, err := f.schedules.Fetch(t.Context(), schedule.ID)
	require.NoError(t, err)
	assert.True(t, advanced.NextDueAt.After(firedAt))
}

func TestEngine_ProcessDue_CompletesExhaustedSchedule(t *testing.T) {
	f := newEngineFixture(t)

	group, err := f.groups.Create(t.Context(), services.CreateGroupCommand{Name: "Sales", PlatformID: "fb-1"})
	require.NoError(t, err)

	product, err := f.products.Create(t.Context(), services.CreateProductCommand{Name: "Mug", Price: 5})
	require.NoError(t, err)

	publication, err := f.pubs.Create(t.Context(), services.CreatePublicationCommand{
		Title:     "Final Sale",
		LineItems: []models.LineItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start

	schedule, err := f.schedules.Create(t.Context(), services.ScheduleCommand{
		PublicationID:  publication.ID,
		GroupIDs:       []string{group.ID},
		Recurrence:     models.RecurrenceDaily,
		IntervalDays:   1,
		TimeSlots:      []models.TimeSlot{{Hour: 9, Minute: 0}},
		PostsPerFiring: 1,
		StartDate:      start,
		EndDate:        &end,
	})
	require.NoError(t, err)

	f.engine.ProcessDue(t.Context(), *schedule.NextDueAt)

	completed, err := f.schedules.Fetch(t.Context(), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCompleted, completed.Status)
	assert.Nil(t, completed.NextDueAt)
}

func TestEngine_PostsPerFiring(t *testing.T) {
	f := newEngineFixture(t)

	group, err := f.groups.Create(t.Context(), services.CreateGroupCommand{Name: "Sales", PlatformID: "fb-1"})
	require.NoError(t, err)

	publication, err := f.pubs.Create(t.Context(), services.CreatePublicationCommand{Title: "Burst"})
	require.NoError(t, err)

	schedule, err := f.schedules.Create(t.Context(), services.ScheduleCommand{
		PublicationID:  publication.ID,
		GroupIDs:       []string{group.ID},
		Recurrence:     models.RecurrenceDaily,
		IntervalDays:   1,
		TimeSlots:      []models.TimeSlot{{Hour: 9, Minute: 0}},
		PostsPerFiring: 3,
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	f.engine.ProcessDue(t.Context(), *schedule.NextDueAt)

	assert.Len(t, f.connector.posts, 3)

	// One history record covers the whole burst.
	records, err := f.schedules.History(t.Context(), schedule.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNewEngine_InvalidCron(t *testing.T) {
	_, err := NewEngine(Config{
		ID:       "x",
		Logger:   slog.Default(),
		PollCron: "not a cron",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid poll cron expression")
}
