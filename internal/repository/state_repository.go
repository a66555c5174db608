package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frejen/ticketd/internal/domain"
)

// StateRepository reads the seeded lifecycle states.
type StateRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.State, error)
	FindByTitle(ctx context.Context, title domain.StateTitle) (*domain.State, error)
	FindAll(ctx context.Context) ([]domain.State, error)
}

type stateRepository struct {
	pool *pgxpool.Pool
}

// NewStateRepository builds the repository.
func NewStateRepository(pool *pgxpool.Pool) StateRepository {
	return &stateRepository{pool: pool}
}

func (r *stateRepository) FindByID(ctx context.Context, id int64) (*domain.State, error) {
	const query = `SELECT id, title FROM states WHERE id=$1`
	var state domain.State
	if err := r.pool.QueryRow(ctx, query, id).Scan(&state.ID, &state.Title); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *stateRepository) FindByTitle(ctx context.Context, title domain.StateTitle) (*domain.State, error) {
	const query = `SELECT id, title FROM states WHERE title=$1`
	var state domain.State
	if err := r.pool.QueryRow(ctx, query, title).Scan(&state.ID, &state.Title); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *stateRepository) FindAll(ctx context.Context) ([]domain.State, error) {
	const query = `SELECT id, title FROM states ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.State
	for rows.Next() {
		var state domain.State
		if err := rows.Scan(&state.ID, &state.Title); err != nil {
			return nil, err
		}
		result = append(result, state)
	}
	return result, rows.Err()
}
