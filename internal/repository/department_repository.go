package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frejen/ticketd/internal/domain"
)

// DepartmentFilter drives the keyset-paginated department listing.
// Departments paginate ascending: LastID is an exclusive lower bound.
type DepartmentFilter struct {
	LastID *int64
	Search *string
	Limit  int
}

// DepartmentRepository manages department reads. Departments are
// seeded reference data; there is no create or update path.
type DepartmentRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Department, error)
	FindByFilters(ctx context.Context, filter DepartmentFilter) ([]domain.Department, error)
	FindOneByFilters(ctx context.Context, filter DepartmentFilter) (*domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) FindByID(ctx context.Context, id int64) (*domain.Department, error) {
	const query = `SELECT id, title FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(&dept.ID, &dept.Title); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) FindByFilters(ctx context.Context, filter DepartmentFilter) ([]domain.Department, error) {
	query, args := buildDepartmentQuery(filter, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Title); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) FindOneByFilters(ctx context.Context, filter DepartmentFilter) (*domain.Department, error) {
	query, args := buildDepartmentQuery(filter, 1)

	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&dept.ID, &dept.Title); err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return &dept, nil
}

func buildDepartmentQuery(filter DepartmentFilter, limit int) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.LastID != nil {
		args = append(args, *filter.LastID)
		clauses = append(clauses, fmt.Sprintf("id > $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", len(args)))
	}

	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf("SELECT id, title FROM departments WHERE %s ORDER BY id ASC LIMIT %d",
		strings.Join(clauses, " AND "), limit)
	return query, args
}
