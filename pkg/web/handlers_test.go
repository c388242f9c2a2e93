package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/models"
	"github.com/getdivulga/divulga/pkg/persistence/file"
	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/platform/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	registry := platform.NewRegistry(slog.Default())
	registry.Register(logging.NewConnectorFactory())

	handlers := NewAPIHandlers(
		slog.Default(),
		file.NewPersistence(t.TempDir()),
		validator.New(validator.WithRequiredStructEnabled()),
		registry,
		nil,
	)

	app := fiber.New()

	products := app.Group("/products")
	products.Get("/", handlers.GetProducts)
	products.Post("/", handlers.CreateProduct)
	products.Get("/:id", handlers.GetProduct)
	products.Put("/:id", handlers.UpdateProduct)
	products.Delete("/:id", handlers.DeleteProduct)

	groups := app.Group("/groups")
	groups.Get("/", handlers.GetGroups)
	groups.Post("/", handlers.CreateGroup)
	groups.Get("/:id", handlers.GetGroup)
	groups.Put("/:id", handlers.UpdateGroup)
	groups.Delete("/:id", handlers.DeleteGroup)

	publications := app.Group("/publications")
	publications.Get("/", handlers.GetPublications)
	publications.Post("/", handlers.CreatePublication)
	publications.Get("/:id", handlers.GetPublication)
	publications.Put("/:id", handlers.UpdatePublication)
	publications.Delete("/:id", handlers.DeletePublication)

	schedules := app.Group("/schedules")
	schedules.Get("/", handlers.GetSchedules)
	schedules.Post("/", handlers.CreateSchedule)
	schedules.Get("/due", handlers.GetDueSchedules)
	schedules.Get("/:id", handlers.GetSchedule)
	schedules.Put("/:id", handlers.UpdateSchedule)
	schedules.Delete("/:id", handlers.DeleteSchedule)
	schedules.Post("/:id/pause", handlers.PauseSchedule)
	schedules.Post("/:id/resume", handlers.ResumeSchedule)
	schedules.Get("/:id/history", handlers.GetScheduleHistory)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)

		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	return resp, raw
}

func createTestSchedule(t *testing.T, app *fiber.App) models.Schedule {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/publications/", map[string]any{
		"title": "Weekend Offers",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var publication models.Publication
	require.NoError(t, json.Unmarshal(body, &publication))

	resp, body = doJSON(t, app, http.MethodPost, "/schedules/", map[string]any{
		"publication_id":   publication.ID,
		"group_ids":        []string{"group-1"},
		"recurrence":       "daily",
		"interval_days":    1,
		"time_slots":       []map[string]int{{"hour": 9, "minute": 30}},
		"posts_per_firing": 1,
		"start_date":       "2026-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var schedule models.Schedule
	require.NoError(t, json.Unmarshal(body, &schedule))

	return schedule
}

func TestProductCRUD(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/products/", map[string]any{
		"name":  "Ceramic Mug",
		"price": 12.5,
		"stock": 3,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.Product
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)

	resp, body = doJSON(t, app, http.MethodGet, "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Product
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, "Ceramic Mug", fetched.Name)

	resp, _ = doJSON(t, app, http.MethodPut, "/products/"+created.ID, map[string]any{
		"name":  "Ceramic Mug v2",
		"price": 13.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/products/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateProduct_ValidationProblem(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/products/", map[string]any{
		"price": -1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "validation_error", problem["type"])
}

func TestScheduleLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	schedule := createTestSchedule(t, app)

	assert.Equal(t, models.ScheduleStatusActive, schedule.Status)
	require.NotNil(t, schedule.NextDueAt)

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/schedules/%s/pause", schedule.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var paused models.Schedule
	require.NoError(t, json.Unmarshal(body, &paused))
	assert.Equal(t, models.ScheduleStatusPaused, paused.Status)

	// Pausing a paused schedule is a conflict.
	resp, body = doJSON(t, app, http.MethodPost, fmt.Sprintf("/schedules/%s/pause", schedule.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "conflict", problem["type"])

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/schedules/%s/resume", schedule.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSchedule_ValidationOrder(t *testing.T) {
	app := newTestApp(t)

	// Interval below 1 fails struct validation before reaching the service.
	resp, _ := doJSON(t, app, http.MethodPost, "/schedules/", map[string]any{
		"publication_id":   "pub-1",
		"group_ids":        []string{"group-1"},
		"recurrence":       "daily",
		"interval_days":    0,
		"time_slots":       []map[string]int{{"hour": 9, "minute": 0}},
		"posts_per_firing": 1,
		"start_date":       "2026-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// An unknown recurrence passes binding but fails domain validation.
	resp, body := doJSON(t, app, http.MethodPost, "/schedules/", map[string]any{
		"publication_id":   "pub-1",
		"group_ids":        []string{"group-1"},
		"recurrence":       "hourly",
		"interval_days":    1,
		"time_slots":       []map[string]int{{"hour": 9, "minute": 0}},
		"posts_per_firing": 1,
		"start_date":       "2026-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "recurrence")
}

func TestScheduleHistoryAndDuePreview(t *testing.T) {
	app := newTestApp(t)
	schedule := createTestSchedule(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/schedules/"+schedule.ID+"/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))

	resp, body = doJSON(t, app, http.MethodGet, "/schedules/due?as_of=2026-01-01T09:30:00Z", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview struct {
		Schedules []models.Schedule `json:"schedules"`
	}
	require.NoError(t, json.Unmarshal(body, &preview))
	require.Len(t, preview.Schedules, 1)
	assert.Equal(t, schedule.ID, preview.Schedules[0].ID)

	resp, _ = doJSON(t, app, http.MethodGet, "/schedules/due?as_of=not-a-time", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSchedule_NotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/schedules/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "not_found", problem["type"])
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}
