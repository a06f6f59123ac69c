package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type Service struct {
	admins AdminStore
	tokens *TokenManager
}

func NewService(admins AdminStore, tokens *TokenManager) *Service {
	return &Service{admins: admins, tokens: tokens}
}

type LoginResult struct {
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// Login checks the admin's bcrypt password hash and issues a session token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if admin == nil {
		log.Printf("admin login rejected: unknown email %s", email)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		log.Printf("admin login rejected: bad password for %s", email)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(admin.ID, admin.Email, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{Email: admin.Email, AccessToken: token}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
