// Package web provides HTTP handlers and REST API endpoints for catalog and
// schedule management.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/getdivulga/divulga/pkg/eventbus"
	"github.com/getdivulga/divulga/pkg/events"
	"github.com/getdivulga/divulga/pkg/persistence"
	"github.com/getdivulga/divulga/pkg/platform"
	"github.com/getdivulga/divulga/pkg/services"
)

type APIHandlers struct {
	logger             *slog.Logger
	productService     *services.Products
	groupService       *services.Groups
	publicationService *services.Publications
	scheduleService    *services.Schedules
	validator          *validator.Validate
	registry           *platform.Registry
	eventBus           eventbus.EventPublisher
}

func NewAPIHandlers(
	logger *slog.Logger,
	p persistence.Persistence,
	validator *validator.Validate,
	registry *platform.Registry,
	eventBus eventbus.EventPublisher,
) *APIHandlers {
	return &APIHandlers{
		logger:             logger,
		productService:     services.NewProducts(p),
		groupService:       services.NewGroups(p),
		publicationService: services.NewPublications(p),
		scheduleService:    services.NewSchedules(p),
		validator:          validator,
		registry:           registry,
		eventBus:           eventBus,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.scheduleService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Divulga API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Divulga API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
			"platforms":  h.registry.Available(),
		},
		"timestamp": time.Now().UTC(),
	})
}

// Products

func (h *APIHandlers) GetProducts(c fiber.Ctx) error {
	products, err := h.productService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(products)
}

func (h *APIHandlers) GetProduct(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Product ID is required")
	}

	product, err := h.productService.Fetch(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(product)
}

func (h *APIHandlers) CreateProduct(c fiber.Ctx) error {
	var cmd services.CreateProductCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.productService.Create(c.Context(), cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.ProductCreatedEvent, "product", created.ID))

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateProduct(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Product ID is required")
	}

	var cmd services.CreateProductCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.productService.Update(c.Context(), id, cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.ProductUpdatedEvent, "product", updated.ID))

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteProduct(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Product ID is required")
	}

	if err := h.productService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.ProductDeletedEvent, "product", id))

	return c.SendStatus(fiber.StatusNoContent)
}

// Groups

func (h *APIHandlers) GetGroups(c fiber.Ctx) error {
	groups, err := h.groupService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(groups)
}

func (h *APIHandlers) GetGroup(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Group ID is required")
	}

	group, err := h.groupService.Fetch(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(group)
}

func (h *APIHandlers) CreateGroup(c fiber.Ctx) error {
	var cmd services.CreateGroupCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.groupService.Create(c.Context(), cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.GroupCreatedEvent, "group", created.ID))

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateGroup(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Group ID is required")
	}

	var cmd services.CreateGroupCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.groupService.Update(c.Context(), id, cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.GroupUpdatedEvent, "group", updated.ID))

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteGroup(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Group ID is required")
	}

	if err := h.groupService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.GroupDeletedEvent, "group", id))

	return c.SendStatus(fiber.StatusNoContent)
}

// Publications

func (h *APIHandlers) GetPublications(c fiber.Ctx) error {
	publications, err := h.publicationService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(publications)
}

func (h *APIHandlers) GetPublication(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Publication ID is required")
	}

	publication, err := h.publicationService.Fetch(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(publication)
}

func (h *APIHandlers) CreatePublication(c fiber.Ctx) error {
	var cmd services.CreatePublicationCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.publicationService.Create(c.Context(), cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.PublicationCreatedEvent, "publication", created.ID))

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdatePublication(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Publication ID is required")
	}

	var cmd services.CreatePublicationCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.publicationService.Update(c.Context(), id, cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.PublicationUpdatedEvent, "publication", updated.ID))

	return c.JSON(updated)
}

func (h *APIHandlers) DeletePublication(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Publication ID is required")
	}

	if err := h.publicationService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.NewEntityChanged(events.PublicationDeletedEvent, "publication", id))

	return c.SendStatus(fiber.StatusNoContent)
}

// Schedules

func (h *APIHandlers) GetSchedules(c fiber.Ctx) error {
	schedules, err := h.scheduleService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(schedules)
}

func (h *APIHandlers) GetSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	schedule, err := h.scheduleService.Fetch(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(schedule)
}

func (h *APIHandlers) CreateSchedule(c fiber.Ctx) error {
	var cmd services.ScheduleCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.scheduleService.Create(c.Context(), cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.ScheduleCreated{
		BaseEvent:     events.NewBaseEvent(events.ScheduleCreatedEvent, created.ID),
		PublicationID: created.PublicationID,
		Recurrence:    created.Recurrence,
		NextDueAt:     created.NextDueAt,
	})

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	var cmd services.ScheduleCommand
	if err := c.Bind().JSON(&cmd); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(cmd); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.scheduleService.Update(c.Context(), id, cmd)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.ScheduleUpdated{
		BaseEvent:     events.NewBaseEvent(events.ScheduleUpdatedEvent, updated.ID),
		PublicationID: updated.PublicationID,
		NextDueAt:     updated.NextDueAt,
	})

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	if err := h.scheduleService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.ScheduleDeleted{
		BaseEvent: events.NewBaseEvent(events.ScheduleDeletedEvent, id),
	})

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PauseSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	paused, err := h.scheduleService.Pause(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.SchedulePaused{
		BaseEvent: events.NewBaseEvent(events.SchedulePausedEvent, id),
	})

	return c.JSON(paused)
}

func (h *APIHandlers) ResumeSchedule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	resumed, err := h.scheduleService.Resume(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publishEvent(c, events.ScheduleResumed{
		BaseEvent: events.NewBaseEvent(events.ScheduleResumedEvent, id),
		NextDueAt: resumed.NextDueAt,
	})

	return c.JSON(resumed)
}

func (h *APIHandlers) GetScheduleHistory(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Schedule ID is required")
	}

	records, err := h.scheduleService.History(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(records)
}

// GetDueSchedules previews the schedules due at a given instant without
// firing them. as_of defaults to now.
func (h *APIHandlers) GetDueSchedules(c fiber.Ctx) error {
	asOf := time.Now().UTC()

	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			return badRequest(c, "as_of must be RFC3339")
		}

		asOf = parsed.UTC()
	}

	due, err := h.scheduleService.ListDue(c.Context(), asOf)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"as_of":     asOf,
		"schedules": due,
	})
}

func (h *APIHandlers) publishEvent(c fiber.Ctx, event eventbus.Event) {
	if h.eventBus == nil {
		return
	}

	if err := h.eventBus.Publish(c.Context(), "", event); err != nil {
		h.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
