package events

import (
	"errors"
	"time"

	appsvc "volunhub-backend/internal/application/applications"
	eventsvc "volunhub-backend/internal/application/events"
	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/middleware"
	"volunhub-backend/internal/pkg/response"
	"volunhub-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *eventsvc.Service
	// Applications provides the capacity summary for single-event reads.
	Applications *appsvc.Service
}

// CreateRequest body for POST /events.
type CreateRequest struct {
	Title         string    `json:"title" validate:"required,max=200"`
	Description   string    `json:"description" validate:"omitempty,max=5000"`
	Location      string    `json:"location" validate:"omitempty,max=300"`
	MaxVolunteers int       `json:"max_volunteers" validate:"required,gt=0"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required"`
}

// Create POST /api/v1/events — organizers only.
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if actor.Role != domain.RoleOrganizer {
		return response.Error(c, "Only organizers can create events", fiber.StatusForbidden, nil)
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if err := validation.Validate.Struct(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	event, err := h.Service.Create(c.Context(), actor.UserID, eventsvc.CreateEventInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		MaxVolunteers: req.MaxVolunteers,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Event created", event, nil)
}

// List GET /api/v1/events — upcoming open events.
func (h *Handlers) List(c *fiber.Ctx) error {
	events, err := h.Service.ListUpcoming(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Events fetched", events, nil)
}

// ListMine GET /api/v1/events/mine — the organizer's own events.
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	events, err := h.Service.ListByOrganizer(c.Context(), actor.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Events fetched", events, nil)
}

// Get GET /api/v1/events/:event_id — the event with its capacity summary.
func (h *Handlers) Get(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for event_id", fiber.StatusBadRequest, nil)
	}
	event, err := h.Service.Get(c.Context(), eventID)
	if err != nil {
		return respondServiceError(c, err)
	}
	summary, err := h.Applications.Summary(c.Context(), eventID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Event fetched", fiber.Map{
		"event":   event,
		"summary": summary,
	}, nil)
}

// UpdateRequest body for PATCH /events/:event_id. All fields optional.
type UpdateRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=200"`
	Description   *string    `json:"description" validate:"omitempty,max=5000"`
	Location      *string    `json:"location" validate:"omitempty,max=300"`
	MaxVolunteers *int       `json:"max_volunteers" validate:"omitempty,gt=0"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// Update PATCH /api/v1/events/:event_id — organizer-only edit.
func (h *Handlers) Update(c *fiber.Ctx) error {
	eventID, actor, errResp := parseEventParams(c)
	if errResp != nil {
		return errResp(c)
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Validate.Struct(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	event, err := h.Service.Update(c.Context(), eventID, actor.UserID, eventsvc.UpdateEventInput{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		MaxVolunteers: req.MaxVolunteers,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Event updated", event, nil)
}

// Cancel POST /api/v1/events/:event_id/cancel.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	eventID, actor, errResp := parseEventParams(c)
	if errResp != nil {
		return errResp(c)
	}
	event, err := h.Service.Cancel(c.Context(), eventID, actor.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Event cancelled", event, nil)
}

// Complete POST /api/v1/events/:event_id/complete.
func (h *Handlers) Complete(c *fiber.Ctx) error {
	eventID, actor, errResp := parseEventParams(c)
	if errResp != nil {
		return errResp(c)
	}
	event, err := h.Service.Complete(c.Context(), eventID, actor.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Event completed", event, nil)
}

// Delete DELETE /api/v1/events/:event_id — removes the event and its
// applications and notifications.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	eventID, actor, errResp := parseEventParams(c)
	if errResp != nil {
		return errResp(c)
	}
	if err := h.Service.Delete(c.Context(), eventID, actor.UserID); err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Event deleted", fiber.Map{"event_id": eventID}, nil)
}

func parseEventParams(c *fiber.Ctx) (uuid.UUID, *middleware.Actor, func(*fiber.Ctx) error) {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return uuid.Nil, nil, func(c *fiber.Ctx) error {
			return response.Error(c, "Invalid UUID format for event_id", fiber.StatusBadRequest, nil)
		}
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return uuid.Nil, nil, func(c *fiber.Ctx) error {
			return response.Unauthorized(c, "Unauthorized")
		}
	}
	return eventID, actor, nil
}

func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, eventsvc.ErrEventNotFound), errors.Is(err, appsvc.ErrEventNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, eventsvc.ErrForbidden):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, eventsvc.ErrCapacityBelowApproved):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, eventsvc.ErrInvalidDates),
		errors.Is(err, eventsvc.ErrInvalidCapacity),
		errors.Is(err, eventsvc.ErrEventClosed):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
