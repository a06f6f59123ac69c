package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
	"github.com/Cheertaboi/coupon-management-service/internal/repository"
)

func newLoginService(t *testing.T) (*Service, *TokenManager) {
	t.Helper()

	hash, err := HashPassword("Password@123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Password@123" {
		t.Fatal("password was not hashed")
	}

	store := repository.NewMemoryStore()
	store.AddAdmin(models.Admin{ID: "admin-1", Email: "admin@example.com", PasswordHash: hash})

	tokens := NewTokenManager("test-secret", time.Hour)
	return NewService(store.Admins(), tokens), tokens
}

func TestLoginSuccess(t *testing.T) {
	svc, tokens := newLoginService(t)

	res, err := svc.Login(context.Background(), " Admin@Example.com ", "Password@123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.ValidateToken(res.AccessToken)
	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}
	if claims.Subject != "admin-1" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newLoginService(t)

	if _, err := svc.Login(context.Background(), "admin@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newLoginService(t)

	if _, err := svc.Login(context.Background(), "ghost@example.com", "Password@123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
