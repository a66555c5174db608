package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/repository"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// DepartmentService lists departments with keyset pagination.
// Departments paginate ascending by id, unlike tickets.
type DepartmentService struct {
	departments repository.DepartmentRepository
	pageSize    int
}

// DepartmentListFilter carries the cursor and search term.
type DepartmentListFilter struct {
	LastID *int64
	Search *string
}

// DepartmentPage is one page of the listing.
type DepartmentPage struct {
	Departments []domain.Department
	HasMore     bool
}

// NewDepartmentService builds the service.
func NewDepartmentService(departments repository.DepartmentRepository, pageSize int) *DepartmentService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &DepartmentService{departments: departments, pageSize: pageSize}
}

// FindByFilters returns one page plus a hasMore probe under the same
// filters.
func (s *DepartmentService) FindByFilters(ctx context.Context, filter DepartmentListFilter) (*DepartmentPage, error) {
	departments, err := s.departments.FindByFilters(ctx, repository.DepartmentFilter{
		LastID: filter.LastID,
		Search: filter.Search,
		Limit:  s.pageSize,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	hasMore := false
	if len(departments) > 0 {
		lastID := departments[len(departments)-1].ID
		_, err := s.departments.FindOneByFilters(ctx, repository.DepartmentFilter{
			LastID: &lastID,
			Search: filter.Search,
		})
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
		} else {
			hasMore = true
		}
	}

	return &DepartmentPage{Departments: departments, HasMore: hasMore}, nil
}
