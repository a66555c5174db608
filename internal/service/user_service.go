package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/frejen/ticketd/internal/auth"
	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/repository"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// UserService handles self-service profile updates.
type UserService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TokenManager   *auth.TokenManager
	BcryptCost     int
}

// UserUpdateInput is a partial self-update. Password carries the
// current password and is required when NewPassword is set.
type UserUpdateInput struct {
	Name         *string
	DepartmentID *int64
	Password     *string
	NewPassword  *string
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = 10
	}
	return &UserService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		tokenMgr:    deps.TokenManager,
		bcryptCost:  cost,
	}
}

// Update changes the caller's own record. Email and the admin flag are
// immutable; a fresh token reflecting the new profile is issued on
// success.
func (s *UserService) Update(ctx context.Context, actor *domain.User, paramUserID int64, input UserUpdateInput) (*domain.User, string, error) {
	if paramUserID != actor.ID {
		return nil, "", apperrors.NewUnauthorized("user id does not match token")
	}

	if input.DepartmentID != nil {
		if _, err := s.departments.FindByID(ctx, *input.DepartmentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", apperrors.NewUnauthorized("department not found")
			}
			return nil, "", apperrors.MapError(err)
		}
	}

	var newHash *string
	if input.NewPassword != nil {
		current := ""
		if input.Password != nil {
			current = *input.Password
		}
		if err := auth.ComparePassword(actor.PasswordHash, current); err != nil {
			return nil, "", apperrors.NewUnauthorized("invalid password")
		}
		if auth.ComparePassword(actor.PasswordHash, *input.NewPassword) == nil {
			return nil, "", apperrors.NewUnauthorized("new password cannot be the same as the current password")
		}
		hash, err := auth.HashPassword(*input.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, "", apperrors.MapError(err)
		}
		newHash = &hash
	}

	patch := repository.UserPatch{
		Name:         input.Name,
		DepartmentID: input.DepartmentID,
		PasswordHash: newHash,
	}
	updated, err := s.users.Update(ctx, actor.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNoFields) || errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewBadRequest("no data has been updated")
		}
		return nil, "", apperrors.MapError(err)
	}

	token, _, err := s.tokenMgr.GenerateToken(updated)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return updated, token, nil
}
