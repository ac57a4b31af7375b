package users

import (
	"errors"

	usersvc "volunhub-backend/internal/application/users"
	"volunhub-backend/internal/middleware"
	"volunhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *usersvc.Service
}

// RegisterRequest body for POST /users/register.
type RegisterRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register POST /api/v1/users/register — create a volunteer or organizer account.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if req.Fullname == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Register(c.Context(), usersvc.RegisterInput{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrEmailTaken):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		case errors.Is(err, usersvc.ErrInvalidEmailFormat),
			errors.Is(err, usersvc.ErrWeakPassword),
			errors.Is(err, usersvc.ErrInvalidFullname),
			errors.Is(err, usersvc.ErrInvalidRole):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Account created", user, nil)
}

// Get GET /api/v1/users/:user_id — view a profile.
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", fiber.StatusBadRequest, nil)
	}
	if middleware.GetActor(c) == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.Service.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "User fetched", user, nil)
}
