package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindByEmail expects an already normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT email, coupon_codes_used, is_coupon_report_free
		FROM users
		WHERE LOWER(email) = $1
	`

	var u models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.Email,
		pq.Array(&u.CouponCodesUsed),
		&u.IsCouponReportFree,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

type AdminRepo struct {
	db *sql.DB
}

func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT id, email, password_hash FROM admins WHERE LOWER(email) = $1`

	var a models.Admin
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}
