package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/frejen/ticketd/internal/api/dto"
	"github.com/frejen/ticketd/internal/service"
)

// StatesHandler lists the lifecycle states.
type StatesHandler struct {
	states *service.StateService
}

// NewStatesHandler constructs handler.
func NewStatesHandler(stateService *service.StateService) *StatesHandler {
	return &StatesHandler{states: stateService}
}

// List GET /states.
func (h *StatesHandler) List(c *fiber.Ctx) error {
	states, err := h.states.FindAll(c.Context())
	if err != nil {
		return err
	}

	items := make([]dto.StateRef, 0, len(states))
	for _, state := range states {
		items = append(items, dto.StateRef{ID: state.ID, Title: state.Title})
	}
	return c.JSON(items)
}
