package service

import (
	"context"
	"testing"
	"time"

	"github.com/frejen/ticketd/internal/auth"
	"github.com/frejen/ticketd/internal/domain"
)

func (f *fixture) userService() *UserService {
	return NewUserService(UserDependencies{
		UserRepo:       f.users,
		DepartmentRepo: f.departments,
		TokenManager:   auth.NewTokenManager("test-secret", time.Hour),
		BcryptCost:     4,
	})
}

func (f *fixture) addUserWithPassword(t *testing.T, name, password string, departmentID int64) *domain.User {
	t.Helper()
	user := f.addUser(t, name, departmentID, false)
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	for i := range f.users.users {
		if f.users.users[i].ID == user.ID {
			f.users.users[i].PasswordHash = hash
		}
	}
	user.PasswordHash = hash
	return user
}

func TestUserUpdateSelfOnly(t *testing.T) {
	f := newFixture()
	actor := f.addUser(t, "alice", 2, false)
	other := f.addUser(t, "bob", 2, false)
	svc := f.userService()

	_, _, err := svc.Update(context.Background(), actor, other.ID, UserUpdateInput{Name: strPtr("mallory")})
	assertCode(t, err, "UNAUTHORIZED")
}

func TestUserUpdateNameAndDepartment(t *testing.T) {
	f := newFixture()
	actor := f.addUser(t, "alice", 2, false)
	svc := f.userService()

	updated, token, err := svc.Update(context.Background(), actor, actor.ID, UserUpdateInput{
		Name:         strPtr("alice cooper"),
		DepartmentID: i64Ptr(3),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "alice cooper" || updated.DepartmentID != 3 {
		t.Errorf("updated = %+v", updated)
	}

	claims, err := auth.NewTokenManager("test-secret", time.Hour).ParseToken(token)
	if err != nil {
		t.Fatalf("parse reissued token: %v", err)
	}
	if claims.Name != "alice cooper" || claims.DepartmentID != 3 {
		t.Errorf("reissued claims = %+v", claims)
	}
}

func TestUserUpdateUnknownDepartment(t *testing.T) {
	f := newFixture()
	actor := f.addUser(t, "alice", 2, false)
	svc := f.userService()

	_, _, err := svc.Update(context.Background(), actor, actor.ID, UserUpdateInput{DepartmentID: i64Ptr(999)})
	assertCode(t, err, "UNAUTHORIZED")
}

func TestUserUpdatePasswordChange(t *testing.T) {
	f := newFixture()
	actor := f.addUserWithPassword(t, "alice", "secret", 2)
	svc := f.userService()
	ctx := context.Background()

	_, _, err := svc.Update(ctx, actor, actor.ID, UserUpdateInput{
		Password:    strPtr("wrong"),
		NewPassword: strPtr("another"),
	})
	assertCode(t, err, "UNAUTHORIZED")

	_, _, err = svc.Update(ctx, actor, actor.ID, UserUpdateInput{
		Password:    strPtr("secret"),
		NewPassword: strPtr("secret"),
	})
	assertCode(t, err, "UNAUTHORIZED")

	updated, _, err := svc.Update(ctx, actor, actor.ID, UserUpdateInput{
		Password:    strPtr("secret"),
		NewPassword: strPtr("another"),
	})
	if err != nil {
		t.Fatalf("password change: %v", err)
	}
	if auth.ComparePassword(updated.PasswordHash, "another") != nil {
		t.Error("new password does not verify against stored hash")
	}
	if auth.ComparePassword(updated.PasswordHash, "secret") == nil {
		t.Error("old password still verifies")
	}
}

func TestUserUpdateNoOp(t *testing.T) {
	f := newFixture()
	actor := f.addUser(t, "alice", 2, false)
	svc := f.userService()

	_, _, err := svc.Update(context.Background(), actor, actor.ID, UserUpdateInput{})
	assertCode(t, err, "BAD_REQUEST")
}
