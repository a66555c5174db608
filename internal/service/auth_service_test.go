package service

import (
	"context"
	"testing"
	"time"

	"github.com/frejen/ticketd/internal/auth"
)

func (f *fixture) authService() *AuthService {
	return NewAuthService(AuthDependencies{
		UserRepo:       f.users,
		DepartmentRepo: f.departments,
		TokenManager:   auth.NewTokenManager("test-secret", time.Hour),
		Revoker:        auth.NewSessionRevoker(nil),
		BcryptCost:     4,
	})
}

func TestSignUpFirstUserBecomesAdmin(t *testing.T) {
	f := newFixture()
	svc := f.authService()
	ctx := context.Background()

	err := svc.SignUp(ctx, SignUpInput{Name: "alice", Email: "alice@example.com", Password: "secret", DepartmentID: 2})
	if err != nil {
		t.Fatalf("first sign-up: %v", err)
	}
	err = svc.SignUp(ctx, SignUpInput{Name: "bob", Email: "bob@example.com", Password: "secret", DepartmentID: 3})
	if err != nil {
		t.Fatalf("second sign-up: %v", err)
	}

	alice, err := f.users.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find alice: %v", err)
	}
	if !alice.Admin {
		t.Error("first user should be admin")
	}
	bob, err := f.users.FindByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("find bob: %v", err)
	}
	if bob.Admin {
		t.Error("second user must not be admin")
	}
}

func TestSignUpAfterAdminRemoved(t *testing.T) {
	f := newFixture()
	svc := f.authService()
	ctx := context.Background()

	if err := svc.SignUp(ctx, SignUpInput{Name: "alice", Email: "alice@example.com", Password: "secret", DepartmentID: 2}); err != nil {
		t.Fatalf("first sign-up: %v", err)
	}
	alice, _ := f.users.FindByEmail(ctx, "alice@example.com")
	f.users.remove(alice.ID)

	if err := svc.SignUp(ctx, SignUpInput{Name: "carol", Email: "carol@example.com", Password: "secret", DepartmentID: 2}); err != nil {
		t.Fatalf("sign-up after removal: %v", err)
	}
	carol, _ := f.users.FindByEmail(ctx, "carol@example.com")
	if !carol.Admin {
		t.Error("with no remaining admin, the next user becomes admin")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newFixture()
	svc := f.authService()
	ctx := context.Background()

	if err := svc.SignUp(ctx, SignUpInput{Name: "alice", Email: "alice@example.com", Password: "secret", DepartmentID: 2}); err != nil {
		t.Fatalf("sign-up: %v", err)
	}
	err := svc.SignUp(ctx, SignUpInput{Name: "impostor", Email: "alice@example.com", Password: "other", DepartmentID: 3})
	assertCode(t, err, "CONFLICT")
}

func TestSignUpUnknownDepartment(t *testing.T) {
	f := newFixture()
	svc := f.authService()

	err := svc.SignUp(context.Background(), SignUpInput{Name: "alice", Email: "alice@example.com", Password: "secret", DepartmentID: 999})
	assertCode(t, err, "NOT_FOUND")
}

func TestSignInIssuesToken(t *testing.T) {
	f := newFixture()
	svc := f.authService()
	ctx := context.Background()

	if err := svc.SignUp(ctx, SignUpInput{Name: "alice", Email: "alice@example.com", Password: "secret", DepartmentID: 2}); err != nil {
		t.Fatalf("sign-up: %v", err)
	}

	token, exp, err := svc.SignIn(ctx, "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("sign-in: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", exp)
	}

	claims, err := auth.NewTokenManager("test-secret", time.Hour).ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Email != "alice@example.com" || !claims.Admin || claims.DepartmentID != 2 {
		t.Errorf("claims = %+v", claims)
	}
}

func TestSignInUnknownEmail(t *testing.T) {
	f := newFixture()
	svc := f.authService()

	_, _, err := svc.SignIn(context.Background(), "ghost@example.com", "secret")
	assertCode(t, err, "NOT_FOUND")
}

func TestSignInWrongPassword(t *testing.T) {
	f := newFixture()
	svc := f.authService()
	ctx := context.Background()

	if err := svc.SignUp(ctx, SignUpInput{Name: "alice", Email: "alice@example.com", Password: "secret", DepartmentID: 2}); err != nil {
		t.Fatalf("sign-up: %v", err)
	}

	_, _, err := svc.SignIn(ctx, "alice@example.com", "wrong")
	assertCode(t, err, "UNAUTHORIZED")
}

func TestSignOutWithoutClaims(t *testing.T) {
	f := newFixture()
	svc := f.authService()

	if err := svc.SignOut(context.Background(), nil); err != nil {
		t.Fatalf("sign-out without claims: %v", err)
	}
}
