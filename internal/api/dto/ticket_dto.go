package dto

import (
	"time"

	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DepartmentID int64  `json:"departmentId"`
}

// UpdateTicketRequest payload; absent fields stay untouched.
type UpdateTicketRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Observations *string `json:"observations"`
	DepartmentID *int64  `json:"departmentId"`
	StateID      *int64  `json:"stateId"`
}

// DepartmentRef is the nested department shape.
type DepartmentRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// StateRef is the nested state shape.
type StateRef struct {
	ID    int64             `json:"id"`
	Title domain.StateTitle `json:"title"`
}

// TicketUserRef embeds a user and their department in ticket details.
type TicketUserRef struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Department DepartmentRef `json:"department"`
}

// TicketSummary is the listing row shape.
type TicketSummary struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Observations *string        `json:"observations"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Department   *DepartmentRef `json:"department,omitempty"`
	State        *StateRef      `json:"state,omitempty"`
}

// TicketListResponse is one page plus the hasMore flag.
type TicketListResponse struct {
	Tickets []TicketSummary `json:"tickets"`
	HasMore bool            `json:"hasMore"`
}

// TicketDetailResponse is the denormalized single-ticket view.
type TicketDetailResponse struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Observations *string       `json:"observations"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	CreatedBy    TicketUserRef `json:"createdBy"`
	UpdatedBy    TicketUserRef `json:"updatedBy"`
	State        StateRef      `json:"state"`
	Department   DepartmentRef `json:"department"`
}

// NewTicketSummary maps a domain ticket (with optional includes) to
// its listing shape.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	summary := TicketSummary{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Observations: ticket.Observations,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
	if ticket.Department != nil {
		summary.Department = &DepartmentRef{ID: ticket.Department.ID, Title: ticket.Department.Title}
	}
	if ticket.State != nil {
		summary.State = &StateRef{ID: ticket.State.ID, Title: ticket.State.Title}
	}
	return summary
}

// NewTicketDetail maps the service read model to the response shape.
func NewTicketDetail(detail *service.TicketDetail) TicketDetailResponse {
	return TicketDetailResponse{
		ID:           detail.Ticket.ID,
		Title:        detail.Ticket.Title,
		Description:  detail.Ticket.Description,
		Observations: detail.Ticket.Observations,
		CreatedAt:    detail.Ticket.CreatedAt,
		UpdatedAt:    detail.Ticket.UpdatedAt,
		CreatedBy:    newTicketUserRef(detail.Creator),
		UpdatedBy:    newTicketUserRef(detail.Updater),
		State:        StateRef{ID: detail.State.ID, Title: detail.State.Title},
		Department:   DepartmentRef{ID: detail.Department.ID, Title: detail.Department.Title},
	}
}

func newTicketUserRef(view service.UserView) TicketUserRef {
	return TicketUserRef{
		ID:    view.User.ID,
		Name:  view.User.Name,
		Email: view.User.Email,
		Department: DepartmentRef{
			ID:    view.Department.ID,
			Title: view.Department.Title,
		},
	}
}
