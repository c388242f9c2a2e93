// Package main provides the Divulga API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/getdivulga/divulga/pkg/eventbus"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *platform.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *platform.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.persistence, a.validate, a.registry, a.eventBus)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Divulga API")
	})

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

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
