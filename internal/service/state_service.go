package service

import (
	"context"

	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/repository"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// StateService exposes the seeded lifecycle states.
type StateService struct {
	states repository.StateRepository
}

// NewStateService builds the service.
func NewStateService(states repository.StateRepository) *StateService {
	return &StateService{states: states}
}

// FindAll returns every lifecycle state ordered by id.
func (s *StateService) FindAll(ctx context.Context) ([]domain.State, error) {
	states, err := s.states.FindAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return states, nil
}
