package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/frejen/ticketd/internal/auth"
	"github.com/frejen/ticketd/internal/domain"
	"github.com/frejen/ticketd/internal/repository"
	apperrors "github.com/frejen/ticketd/pkg/util"
)

// AuthService coordinates registration, login and session teardown.
type AuthService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	tokenMgr    *auth.TokenManager
	revoker     *auth.SessionRevoker
	bcryptCost  int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	DepartmentRepo repository.DepartmentRepository
	TokenManager   *auth.TokenManager
	Revoker        *auth.SessionRevoker
	BcryptCost     int
}

// SignUpInput describes a registration payload.
type SignUpInput struct {
	Name         string
	Email        string
	Password     string
	DepartmentID int64
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = 10
	}
	return &AuthService{
		users:       deps.UserRepo,
		departments: deps.DepartmentRepo,
		tokenMgr:    deps.TokenManager,
		revoker:     deps.Revoker,
		bcryptCost:  cost,
	}
}

// SignIn authenticates by email and password and issues an access
// token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewNotFound("user", nil)
		}
		return "", time.Time{}, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid password")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return "", time.Time{}, apperrors.MapError(err)
	}
	return token, exp, nil
}

// SignUp registers a new user. The very first account created while no
// administrator exists becomes the administrator; there is no other
// path to the admin flag.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) error {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return apperrors.NewConflict("user already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	if _, err := s.departments.FindByID(ctx, input.DepartmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("department", nil)
		}
		return apperrors.MapError(err)
	}

	adminFlag := true
	admins, err := s.users.FindByFilters(ctx, repository.UserFilter{Admin: &adminFlag, Limit: 1})
	if err != nil {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		DepartmentID: input.DepartmentID,
		Admin:        len(admins) == 0,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// SignOut revokes the presented token for the rest of its lifetime.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
