package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frejen/ticketd/internal/domain"
)

// ErrNoFields is returned by partial updates whose patch carries no
// field at all.
var ErrNoFields = errors.New("no fields to update")

// TicketFilter captures listing parameters. Actor drives the visibility
// filter: non-admin callers only see tickets they created or tickets of
// their own department.
type TicketFilter struct {
	Search            *string
	StateIDs          []int64
	LastID            *int64
	Limit             int
	IncludeDepartment bool
	IncludeState      bool
	Actor             *domain.User
}

// TicketPatch describes a partial update. Nil fields are left untouched.
type TicketPatch struct {
	Title        *string
	Description  *string
	Observations *string
	DepartmentID *int64
	StateID      *int64
	UpdatedBy    int64
}

// Empty reports whether the patch carries no mutable field.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Observations == nil &&
		p.DepartmentID == nil && p.StateID == nil
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket) error
	FindByID(ctx context.Context, id int64) (*domain.Ticket, error)
	FindByFilters(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	FindOneByFilters(ctx context.Context, filter TicketFilter) (*domain.Ticket, error)
	Update(ctx context.Context, ticketID int64, patch TicketPatch) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, observations, created_by, updated_by, department_id, state_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Observations,
		ticket.CreatedBy,
		ticket.UpdatedBy,
		ticket.DepartmentID,
		ticket.StateID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) FindByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, observations, created_by, updated_by, department_id, state_id, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Observations,
		&ticket.CreatedBy,
		&ticket.UpdatedBy,
		&ticket.DepartmentID,
		&ticket.StateID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByFilters(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildTicketQuery(filter, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows, filter)
}

func (r *ticketRepository) FindOneByFilters(ctx context.Context, filter TicketFilter) (*domain.Ticket, error) {
	filter.IncludeDepartment = false
	filter.IncludeState = false
	query, args := buildTicketQuery(filter, 1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows, filter)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) Update(ctx context.Context, ticketID int64, patch TicketPatch) error {
	if patch.Empty() {
		return ErrNoFields
	}

	sets := []string{}
	args := []any{}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Observations != nil {
		appendSet("observations", *patch.Observations)
	}
	if patch.DepartmentID != nil {
		appendSet("department_id", *patch.DepartmentID)
	}
	if patch.StateID != nil {
		appendSet("state_id", *patch.StateID)
	}
	appendSet("updated_by", patch.UpdatedBy)
	sets = append(sets, "updated_at=NOW()")

	args = append(args, ticketID)
	query := fmt.Sprintf("UPDATE tickets SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func buildTicketQuery(filter TicketFilter, limit int) (string, []any) {
	selectCols := `t.id, t.title, t.description, t.observations, t.created_by, t.updated_by, t.department_id, t.state_id, t.created_at, t.updated_at`
	joins := ""
	if filter.IncludeDepartment {
		selectCols += ", d.id, d.title"
		joins += " JOIN departments d ON d.id = t.department_id"
	}
	if filter.IncludeState {
		selectCols += ", s.id, s.title"
		joins += " JOIN states s ON s.id = t.state_id"
	}

	clauses := []string{"1=1"}
	args := []any{}

	if filter.LastID != nil {
		args = append(args, *filter.LastID)
		clauses = append(clauses, fmt.Sprintf("t.id < $%d", len(args)))
	}
	if len(filter.StateIDs) > 0 {
		placeholders := make([]string, len(filter.StateIDs))
		for i, id := range filter.StateIDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.state_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.TrimSpace(*filter.Search) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(t.title ILIKE %s OR t.description ILIKE %s OR t.observations ILIKE %s)",
			placeholder, placeholder, placeholder))
	}
	if filter.Actor != nil && !filter.Actor.Admin {
		args = append(args, filter.Actor.ID)
		creatorPlaceholder := fmt.Sprintf("$%d", len(args))
		args = append(args, filter.Actor.DepartmentID)
		deptPlaceholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(t.created_by = %s OR t.department_id = %s)", creatorPlaceholder, deptPlaceholder))
	}

	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf("SELECT %s FROM tickets t%s WHERE %s ORDER BY t.id DESC LIMIT %d",
		selectCols, joins, strings.Join(clauses, " AND "), limit)
	return query, args
}

func scanTickets(rows pgx.Rows, filter TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		dest := []any{
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Observations,
			&ticket.CreatedBy,
			&ticket.UpdatedBy,
			&ticket.DepartmentID,
			&ticket.StateID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		}
		if filter.IncludeDepartment {
			ticket.Department = &domain.Department{}
			dest = append(dest, &ticket.Department.ID, &ticket.Department.Title)
		}
		if filter.IncludeState {
			ticket.State = &domain.State{}
			dest = append(dest, &ticket.State.ID, &ticket.State.Title)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
