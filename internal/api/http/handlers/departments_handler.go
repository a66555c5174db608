package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/frejen/ticketd/internal/api/dto"
	"github.com/frejen/ticketd/internal/service"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// DepartmentsHandler lists departments.
type DepartmentsHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departmentService}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	filter := service.DepartmentListFilter{}
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

	page, err := h.departments.FindByFilters(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.DepartmentRef, 0, len(page.Departments))
	for _, dept := range page.Departments {
		items = append(items, dto.DepartmentRef{ID: dept.ID, Title: dept.Title})
	}
	return c.JSON(dto.DepartmentListResponse{Departments: items, HasMore: page.HasMore})
}
