package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/repository"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// In-memory repositories mirroring the Postgres query semantics so the
// services can be exercised without a database.

type memStateRepo struct {
	states []domain.State
}

func (r *memStateRepo) FindByID(_ context.Context, id int64) (*domain.State, error) {
	for _, s := range r.states {
		if s.ID == id {
			state := s
			return &state, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memStateRepo) FindByTitle(_ context.Context, title domain.StateTitle) (*domain.State, error) {
	for _, s := range r.states {
		if s.Title == title {
			state := s
			return &state, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memStateRepo) FindAll(_ context.Context) ([]domain.State, error) {
	out := make([]domain.State, len(r.states))
	copy(out, r.states)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memDepartmentRepo struct {
	departments []domain.Department
}

func (r *memDepartmentRepo) FindByID(_ context.Context, id int64) (*domain.Department, error) {
	for _, d := range r.departments {
		if d.ID == id {
			dept := d
			return &dept, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memDepartmentRepo) matching(filter repository.DepartmentFilter) []domain.Department {
	var out []domain.Department
	for _, d := range r.departments {
		if filter.LastID != nil && d.ID <= *filter.LastID {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(*filter.Search)) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memDepartmentRepo) FindByFilters(_ context.Context, filter repository.DepartmentFilter) ([]domain.Department, error) {
	out := r.matching(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memDepartmentRepo) FindOneByFilters(_ context.Context, filter repository.DepartmentFilter) (*domain.Department, error) {
	out := r.matching(filter)
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	dept := out[0]
	return &dept, nil
}

type memUserRepo struct {
	users  []domain.User
	nextID int64
}

func (r *memUserRepo) Save(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) FindByFilters(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if filter.Admin != nil && u.Admin != *filter.Admin {
			continue
		}
		if filter.DepartmentID != nil && u.DepartmentID != *filter.DepartmentID {
			continue
		}
		out = append(out, u)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, id int64, patch repository.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return nil, repository.ErrNoFields
	}
	for i := range r.users {
		if r.users[i].ID != id {
			continue
		}
		if patch.Name != nil {
			r.users[i].Name = *patch.Name
		}
		if patch.DepartmentID != nil {
			r.users[i].DepartmentID = *patch.DepartmentID
		}
		if patch.PasswordHash != nil {
			r.users[i].PasswordHash = *patch.PasswordHash
		}
		r.users[i].UpdatedAt = time.Now()
		user := r.users[i]
		return &user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) remove(id int64) {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return
		}
	}
}

type memTicketRepo struct {
	tickets     []domain.Ticket
	nextID      int64
	departments *memDepartmentRepo
	states      *memStateRepo
}

func (r *memTicketRepo) Save(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = r.nextID
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memTicketRepo) FindByID(_ context.Context, id int64) (*domain.Ticket, error) {
	for _, t := range r.tickets {
		if t.ID == id {
			ticket := t
			ticket.Department = nil
			ticket.State = nil
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func matchesSearch(t domain.Ticket, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	return t.Observations != nil && strings.Contains(strings.ToLower(*t.Observations), needle)
}

func (r *memTicketRepo) matching(filter repository.TicketFilter) []domain.Ticket {
	var out []domain.Ticket
	for _, t := range r.tickets {
		if filter.LastID != nil && t.ID >= *filter.LastID {
			continue
		}
		if len(filter.StateIDs) > 0 {
			found := false
			for _, id := range filter.StateIDs {
				if t.StateID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.Search != nil && !matchesSearch(t, *filter.Search) {
			continue
		}
		if filter.Actor != nil && !filter.Actor.Admin {
			if t.CreatedBy != filter.Actor.ID && t.DepartmentID != filter.Actor.DepartmentID {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *memTicketRepo) FindByFilters(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	out := r.matching(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		if filter.IncludeDepartment {
			dept, err := r.departments.FindByID(ctx, out[i].DepartmentID)
			if err != nil {
				return nil, err
			}
			out[i].Department = dept
		}
		if filter.IncludeState {
			state, err := r.states.FindByID(ctx, out[i].StateID)
			if err != nil {
				return nil, err
			}
			out[i].State = state
		}
	}
	return out, nil
}

func (r *memTicketRepo) FindOneByFilters(_ context.Context, filter repository.TicketFilter) (*domain.Ticket, error) {
	out := r.matching(filter)
	if len(out) == 0 {
		return nil, pgx.ErrNoRows
	}
	ticket := out[0]
	return &ticket, nil
}

func (r *memTicketRepo) Update(_ context.Context, ticketID int64, patch repository.TicketPatch) error {
	if patch.Empty() {
		return repository.ErrNoFields
	}
	for i := range r.tickets {
		if r.tickets[i].ID != ticketID {
			continue
		}
		if patch.Title != nil {
			r.tickets[i].Title = *patch.Title
		}
		if patch.Description != nil {
			r.tickets[i].Description = *patch.Description
		}
		if patch.Observations != nil {
			obs := *patch.Observations
			r.tickets[i].Observations = &obs
		}
		if patch.DepartmentID != nil {
			r.tickets[i].DepartmentID = *patch.DepartmentID
		}
		if patch.StateID != nil {
			r.tickets[i].StateID = *patch.StateID
		}
		r.tickets[i].UpdatedBy = patch.UpdatedBy
		r.tickets[i].UpdatedAt = time.Now()
		return nil
	}
	return pgx.ErrNoRows
}

// fixture wires the fakes with the reference data every test needs:
// the four lifecycle states and a handful of departments.
type fixture struct {
	states      *memStateRepo
	departments *memDepartmentRepo
	users       *memUserRepo
	tickets     *memTicketRepo
}

const (
	statePendingID    int64 = 1
	stateRejectedID   int64 = 2
	stateInProgressID int64 = 3
	stateCompletedID  int64 = 4
)

func newFixture() *fixture {
	states := &memStateRepo{states: []domain.State{
		{ID: statePendingID, Title: domain.StatePending},
		{ID: stateRejectedID, Title: domain.StateRejected},
		{ID: stateInProgressID, Title: domain.StateInProgress},
		{ID: stateCompletedID, Title: domain.StateCompleted},
	}}
	departments := &memDepartmentRepo{departments: []domain.Department{
		{ID: 1, Title: "IT Support"},
		{ID: 2, Title: "Finance"},
		{ID: 3, Title: "Human Resources"},
		{ID: 5, Title: "Facilities"},
	}}
	users := &memUserRepo{}
	tickets := &memTicketRepo{departments: departments, states: states}
	return &fixture{states: states, departments: departments, users: users, tickets: tickets}
}

func (f *fixture) addUser(t *testing.T, name string, departmentID int64, admin bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "x",
		DepartmentID: departmentID,
		Admin:        admin,
	}
	if err := f.users.Save(context.Background(), user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return user
}

func (f *fixture) addTicket(t *testing.T, creator *domain.User, departmentID, stateID int64, title string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:        title,
		Description:  "description of " + title,
		CreatedBy:    creator.ID,
		UpdatedBy:    creator.ID,
		DepartmentID: departmentID,
		StateID:      stateID,
	}
	if err := f.tickets.Save(context.Background(), ticket); err != nil {
		t.Fatalf("save ticket: %v", err)
	}
	return ticket
}

func (f *fixture) ticketService(pageSize int) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		StateRepo:      f.states,
		UserRepo:       f.users,
		DepartmentRepo: f.departments,
		PageSize:       pageSize,
	})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError with code %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, domainErr.Code, domainErr.Message)
	}
}

func strPtr(s string) *string { return &s }

func i64Ptr(v int64) *int64 { return &v }
