package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/frejen/ticketd/internal/api/dto"
	"github.com/frejen/ticketd/internal/auth"
	"github.com/frejen/ticketd/internal/service"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// UsersHandler exposes the self-service profile update.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Update handles PATCH /users/:id. A fresh access token reflecting the
// updated profile is returned and set as the session cookie.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	paramUserID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.UserUpdateInput{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		Password:     req.Password,
		NewPassword:  req.NewPassword,
	}
	_, token, err := h.users.Update(c.Context(), principal.User, paramUserID, input)
	if err != nil {
		return err
	}

	if claims := principal.Claims; claims != nil && claims.ExpiresAt != nil {
		setAccessTokenCookie(c, token, claims.ExpiresAt.Time)
	}
	return c.JSON(dto.AuthResponse{AccessToken: token})
}
