package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/repository"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// TicketService enforces ticket authorization and lifecycle rules.
type TicketService struct {
	tickets     repository.TicketRepository
	states      repository.StateRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	pageSize    int
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	StateRepo      repository.StateRepository
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	PageSize       int
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	DepartmentID int64
}

// TicketListFilter describes listing filters; LastID is the id of the
// last ticket seen on the previous page.
type TicketListFilter struct {
	Search   *string
	StateIDs []int64
	LastID   *int64
}

// TicketPage is one page of a cursor-paginated listing.
type TicketPage struct {
	Tickets []domain.Ticket
	HasMore bool
}

// TicketUpdateInput is a partial update; nil fields are left untouched.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Observations *string
	DepartmentID *int64
	StateID      *int64
}

// UserView is a user plus their resolved department, as embedded in
// ticket detail responses.
type UserView struct {
	User       domain.User
	Department domain.Department
}

// TicketDetail is the fully denormalized read model for a single
// ticket.
type TicketDetail struct {
	Ticket     domain.Ticket
	Creator    UserView
	Updater    UserView
	State      domain.State
	Department domain.Department
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = 2
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		states:      deps.StateRepo,
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		pageSize:    pageSize,
	}
}

// Create opens a new ticket in the PENDING state on behalf of the
// acting user. The created ticket is not echoed back.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) error {
	if _, err := s.departments.FindByID(ctx, input.DepartmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("department", nil)
		}
		return apperrors.MapError(err)
	}

	pending, err := s.states.FindByTitle(ctx, domain.StatePending)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewDataIntegrity("PENDING state is not seeded")
		}
		return apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Title:        input.Title,
		Description:  input.Description,
		Observations: nil,
		CreatedBy:    actor.ID,
		UpdatedBy:    actor.ID,
		DepartmentID: input.DepartmentID,
		StateID:      pending.ID,
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// FindByID resolves a ticket into its denormalized view, enforcing the
// visibility predicate. Missing related rows are surfaced as
// data-integrity failures, not auth errors.
func (s *TicketService) FindByID(ctx context.Context, actor *domain.User, ticketID int64) (*TicketDetail, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if !canSeeTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("user not authorized to view this ticket")
	}

	creator, err := s.loadUserView(ctx, ticket.CreatedBy, "ticket creator")
	if err != nil {
		return nil, err
	}
	updater, err := s.loadUserView(ctx, ticket.UpdatedBy, "ticket updater")
	if err != nil {
		return nil, err
	}

	state, err := s.states.FindByID(ctx, ticket.StateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDataIntegrity("ticket state missing")
		}
		return nil, apperrors.MapError(err)
	}

	dept, err := s.departments.FindByID(ctx, ticket.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDataIntegrity("ticket department missing")
		}
		return nil, apperrors.MapError(err)
	}

	return &TicketDetail{
		Ticket:     *ticket,
		Creator:    *creator,
		Updater:    *updater,
		State:      *state,
		Department: *dept,
	}, nil
}

// FindByFilters returns one page of tickets visible to the actor,
// enriched with department and state, plus a hasMore flag computed by
// probing for a next row under the same filters.
func (s *TicketService) FindByFilters(ctx context.Context, actor *domain.User, filter TicketListFilter) (*TicketPage, error) {
	repoFilter := repository.TicketFilter{
		Search:            filter.Search,
		StateIDs:          filter.StateIDs,
		LastID:            filter.LastID,
		Limit:             s.pageSize,
		IncludeDepartment: true,
		IncludeState:      true,
		Actor:             actor,
	}

	tickets, err := s.tickets.FindByFilters(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	hasMore := false
	if len(tickets) > 0 {
		lastID := tickets[len(tickets)-1].ID
		probe := repository.TicketFilter{
			Search:   filter.Search,
			StateIDs: filter.StateIDs,
			LastID:   &lastID,
			Actor:    actor,
		}
		if _, err := s.tickets.FindOneByFilters(ctx, probe); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
		} else {
			hasMore = true
		}
	}

	return &TicketPage{Tickets: tickets, HasMore: hasMore}, nil
}

// Update applies a partial update after running the authorization and
// lifecycle guards. Returns nothing on success; callers re-fetch.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, ticketID int64, input TicketUpdateInput) error {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return apperrors.MapError(err)
	}

	if err := s.authorizeUpdate(ctx, actor, ticket, input); err != nil {
		return err
	}

	patch := repository.TicketPatch{
		Title:        input.Title,
		Description:  input.Description,
		Observations: input.Observations,
		DepartmentID: input.DepartmentID,
		StateID:      input.StateID,
		UpdatedBy:    actor.ID,
	}
	if err := s.tickets.Update(ctx, ticketID, patch); err != nil {
		if errors.Is(err, repository.ErrNoFields) || errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewBadRequest("no data has been updated")
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) authorizeUpdate(ctx context.Context, actor *domain.User, ticket *domain.Ticket, input TicketUpdateInput) error {
	if !canSeeTicket(actor, ticket) {
		return apperrors.NewUnauthorized("user not authorized to update this ticket")
	}

	current, err := s.states.FindByID(ctx, ticket.StateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewDataIntegrity("ticket state missing")
		}
		return apperrors.MapError(err)
	}
	if current.Title.Terminal() {
		return apperrors.NewForbidden("cannot update a rejected or completed ticket")
	}

	if input.StateID != nil {
		next, err := s.states.FindByID(ctx, *input.StateID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnprocessable("state does not exist")
			}
			return apperrors.MapError(err)
		}
		if next.Title == domain.StateRejected && !hasObservations(input.Observations) {
			return apperrors.NewUnprocessable("observations are required to reject the ticket")
		}
	}
	return nil
}

func (s *TicketService) loadUserView(ctx context.Context, userID int64, role string) (*UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDataIntegrity(role + " missing")
		}
		return nil, apperrors.MapError(err)
	}
	dept, err := s.departments.FindByID(ctx, user.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDataIntegrity(role + " department missing")
		}
		return nil, apperrors.MapError(err)
	}
	return &UserView{User: *user, Department: *dept}, nil
}

// canSeeTicket is the shared visibility predicate: admins see every
// ticket, others only their own or their department's.
func canSeeTicket(actor *domain.User, ticket *domain.Ticket) bool {
	return actor.Admin || ticket.CreatedBy == actor.ID || actor.DepartmentID == ticket.DepartmentID
}

func hasObservations(observations *string) bool {
	return observations != nil && strings.TrimSpace(*observations) != ""
}
