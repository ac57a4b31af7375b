package notifications

import (
	"errors"

	notifsvc "volunhub-backend/internal/application/notifications"
	"volunhub-backend/internal/middleware"
	"volunhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *notifsvc.Service
}

// List GET /api/v1/notifications — the caller's feed, newest first.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.ListForUser(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notifications fetched", items, nil)
}

// MarkRead PATCH /api/v1/notifications/:notification_id/read.
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	notificationID, err := uuid.Parse(c.Params("notification_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for notification_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	n, err := h.Service.MarkRead(c.Context(), notificationID, actor.UserID)
	if err != nil {
		if errors.Is(err, notifsvc.ErrNotificationNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notification marked as read", n, nil)
}
