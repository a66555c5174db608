package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/frejen/ticketd/internal/api/dto"
	"github.com/frejen/ticketd/internal/auth"
	"github.com/frejen/ticketd/internal/service"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || req.DepartmentID == 0 {
		return apperrors.NewValidationError("title, description, departmentId required", nil)
	}

	input := service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	}
	if err := h.service.Create(c.Context(), principal.User, input); err != nil {
		return err
	}
	return c.SendStatus(http.StatusCreated)
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.TicketListFilter{}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if lastIDStr := c.Query("lastId"); lastIDStr != "" {
		lastID, err := strconv.ParseInt(lastIDStr, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("lastId must be an integer", nil)
		}
		filter.LastID = &lastID
	}
	if statesStr := c.Query("states"); statesStr != "" {
		for _, part := range strings.Split(statesStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return apperrors.NewValidationError("states must be a comma-separated list of ids", nil)
			}
			filter.StateIDs = append(filter.StateIDs, id)
		}
	}

	page, err := h.service.FindByFilters(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}

	items := make([]dto.TicketSummary, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, dto.NewTicketSummary(&page.Tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{Tickets: items, HasMore: page.HasMore})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	detail, err := h.service.FindByID(c.Context(), principal.User, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketDetail(detail))
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Observations: req.Observations,
		DepartmentID: req.DepartmentID,
		StateID:      req.StateID,
	}
	if err := h.service.Update(c.Context(), principal.User, ticketID, input); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id must be a positive integer", nil)
	}
	return id, nil
}
