package auth

import (
	"testing"
	"time"

	"github.com/frejen/ticketd/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:           7,
		Name:         "alice",
		Email:        "alice@example.com",
		Admin:        true,
		DepartmentID: 3,
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, exp, err := tm.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", exp)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Name != "alice" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.Admin || claims.DepartmentID != 3 {
		t.Errorf("admin/department claims = %v/%d", claims.Admin, claims.DepartmentID)
	}
	if claims.ID == "" {
		t.Error("token id is empty")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("test-secret", time.Hour).GenerateToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewTokenManager("other-secret", time.Hour).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseTokenExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	token, _, err := tm.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := NewTokenManager("test-secret", time.Hour).ParseToken("not-a-jwt"); err == nil {
		t.Fatal("garbage must not parse")
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := testUser()

	first, _, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, _, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	a, err := tm.ParseToken(first)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := tm.ParseToken(second)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a.ID == b.ID {
		t.Error("two tokens share a jti")
	}
}
