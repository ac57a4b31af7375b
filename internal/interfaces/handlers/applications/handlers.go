package applications

import (
	"errors"

	appsvc "volunhub-backend/internal/application/applications"
	"volunhub-backend/internal/middleware"
	"volunhub-backend/internal/pkg/response"
	"volunhub-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *appsvc.Service
}

// ApplyRequest body for POST /events/:event_id/applications.
type ApplyRequest struct {
	Skills  []string `json:"skills" validate:"omitempty,dive,min=1,max=60"`
	Message string   `json:"message" validate:"omitempty,max=2000"`
}

// Apply POST /api/v1/events/:event_id/applications — volunteer applies, application starts pending.
func (h *Handlers) Apply(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for event_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Validate.Struct(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	app, err := h.Service.Apply(c.Context(), eventID, actor.UserID, appsvc.ApplyInput{
		Skills:  req.Skills,
		Message: req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.SuccessCreated(c, "Application submitted", app, nil)
}

// DecideRequest body for PATCH /events/:event_id/applications/:application_id.
type DecideRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approve reject"`
	Feedback *string `json:"feedback" validate:"omitempty,max=2000"`
}

// Decide PATCH /api/v1/events/:event_id/applications/:application_id — organizer approves or rejects.
func (h *Handlers) Decide(c *fiber.Ctx) error {
	eventID, applicationID, actor, errResp := parseLifecycleParams(c)
	if errResp != nil {
		return errResp(c)
	}

	var req DecideRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "decision is required", fiber.StatusBadRequest, nil)
	}
	if err := validation.Validate.Struct(&req); err != nil {
		return response.Error(c, "decision must be approve or reject", fiber.StatusBadRequest, nil)
	}

	result, err := h.Service.Decide(c.Context(), eventID, applicationID, actor.UserID, appsvc.Decision(req.Decision), req.Feedback)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Application "+string(result.Application.Status), result, nil)
}

// Reset PATCH /api/v1/events/:event_id/applications/:application_id/reset — decision undone, back to pending.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	eventID, applicationID, actor, errResp := parseLifecycleParams(c)
	if errResp != nil {
		return errResp(c)
	}

	result, err := h.Service.Reset(c.Context(), eventID, applicationID, actor.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Application reset to pending", result, nil)
}

// HoursRequest body for PATCH /events/:event_id/applications/:application_id/hours.
type HoursRequest struct {
	Hours float64 `json:"hours" validate:"gte=0"`
}

// RecordHours PATCH /api/v1/events/:event_id/applications/:application_id/hours — organizer records contributed hours.
func (h *Handlers) RecordHours(c *fiber.Ctx) error {
	eventID, applicationID, actor, errResp := parseLifecycleParams(c)
	if errResp != nil {
		return errResp(c)
	}

	var req HoursRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "hours is required", fiber.StatusBadRequest, nil)
	}
	if err := validation.Validate.Struct(&req); err != nil {
		return response.Error(c, "hours must be zero or positive", fiber.StatusBadRequest, nil)
	}

	app, err := h.Service.RecordHours(c.Context(), eventID, applicationID, actor.UserID, req.Hours)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Hours recorded", app, nil)
}

// List GET /api/v1/events/:event_id/applications — organizer view with capacity summary.
func (h *Handlers) List(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for event_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	apps, summary, err := h.Service.List(c.Context(), eventID, actor.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Applications fetched", fiber.Map{
		"applications": apps,
		"summary":      summary,
	}, nil)
}

// ListMine GET /api/v1/applications/mine — volunteer's own applications.
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	apps, err := h.Service.ListByVolunteer(c.Context(), actor.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return response.Success(c, "Applications fetched", apps, nil)
}

func parseLifecycleParams(c *fiber.Ctx) (eventID, applicationID uuid.UUID, actor *middleware.Actor, errResp func(*fiber.Ctx) error) {
	eventID, err := uuid.Parse(c.Params("event_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, nil, func(c *fiber.Ctx) error {
			return response.Error(c, "Invalid UUID format for event_id", fiber.StatusBadRequest, nil)
		}
	}
	applicationID, err = uuid.Parse(c.Params("application_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, nil, func(c *fiber.Ctx) error {
			return response.Error(c, "Invalid UUID format for application_id", fiber.StatusBadRequest, nil)
		}
	}
	actor = middleware.GetActor(c)
	if actor == nil {
		return uuid.Nil, uuid.Nil, nil, func(c *fiber.Ctx) error {
			return response.Unauthorized(c, "Unauthorized")
		}
	}
	return eventID, applicationID, actor, nil
}

// respondServiceError maps engine errors onto the HTTP taxonomy. Capacity
// exhaustion is a normal contention outcome and maps to 409, never 5xx.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appsvc.ErrEventNotFound), errors.Is(err, appsvc.ErrApplicationNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, appsvc.ErrForbidden):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, appsvc.ErrDuplicateApplication),
		errors.Is(err, appsvc.ErrInvalidState),
		errors.Is(err, appsvc.ErrNotDecided),
		errors.Is(err, appsvc.ErrNotApproved),
		errors.Is(err, appsvc.ErrCapacityExceeded):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, appsvc.ErrEventClosed),
		errors.Is(err, appsvc.ErrEventStarted),
		errors.Is(err, appsvc.ErrInvalidHours),
		errors.Is(err, appsvc.ErrInvalidDecision):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
