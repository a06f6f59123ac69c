package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// CountByCoupon counts successful redemptions; failed or pending
// transactions stay in the log but do not use up max_usage.
func (r *UsageRepo) CountByCoupon(ctx context.Context, couponID int64) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND transaction_status = $2`
	err := r.db.QueryRowContext(ctx, query, couponID, models.TransactionSuccess).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return n, nil
}

func (r *UsageRepo) ListByCoupon(ctx context.Context, couponID int64) ([]models.CouponUsage, error) {
	query := `
		SELECT id, coupon_id, user_email, discount_applied, applied_at, transaction_status, redemption_key
		FROM coupon_usages
		WHERE coupon_id = $1
		ORDER BY applied_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, couponID)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	usages := []models.CouponUsage{}
	for rows.Next() {
		var u models.CouponUsage
		if err := rows.Scan(&u.ID, &u.CouponID, &u.UserEmail, &u.DiscountApplied, &u.AppliedAt, &u.TransactionStatus, &u.RedemptionKey); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// Redeem writes the usage log row and updates the user inside one
// transaction, with the user row locked for the duration.
func (r *UsageRepo) Redeem(ctx context.Context, red models.Redemption) (models.CouponUsage, bool, error) {
	usage := red.Usage

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return usage, false, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT email FROM users WHERE email = $1 FOR UPDATE`, usage.UserEmail).Scan(&locked)
	if err != nil {
		return usage, false, fmt.Errorf("lock user: %w", err)
	}

	insert := `
		INSERT INTO coupon_usages
		(coupon_id, user_email, discount_applied, applied_at, transaction_status, redemption_key)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (redemption_key) DO NOTHING
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insert,
		usage.CouponID,
		usage.UserEmail,
		usage.DiscountApplied,
		usage.AppliedAt,
		usage.TransactionStatus,
		usage.RedemptionKey,
	).Scan(&usage.ID)

	if errors.Is(err, sql.ErrNoRows) {
		// Key already recorded by an earlier attempt.
		existing, err := r.getByKey(ctx, tx, usage.RedemptionKey)
		if err != nil {
			return usage, false, err
		}
		if err := tx.Commit(); err != nil {
			return usage, false, fmt.Errorf("tx commit: %w", err)
		}
		committed = true
		return existing, true, nil
	}
	if err != nil {
		return usage, false, fmt.Errorf("insert usage: %w", err)
	}

	if !red.Applied {
		if err := tx.Commit(); err != nil {
			return usage, false, fmt.Errorf("tx commit: %w", err)
		}
		committed = true
		return usage, false, nil
	}

	update := `
		UPDATE users
		SET coupon_codes_used = array_append(coupon_codes_used, $2),
		    is_coupon_report_free = CASE WHEN $3 THEN FALSE ELSE is_coupon_report_free END
		WHERE email = $1
	`
	if _, err := tx.ExecContext(ctx, update, usage.UserEmail, red.Code, red.ConsumeReport); err != nil {
		return usage, false, fmt.Errorf("update user ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return usage, false, fmt.Errorf("tx commit: %w", err)
	}
	committed = true

	return usage, false, nil
}

func (r *UsageRepo) getByKey(ctx context.Context, tx *sql.Tx, key string) (models.CouponUsage, error) {
	query := `
		SELECT id, coupon_id, user_email, discount_applied, applied_at, transaction_status, redemption_key
		FROM coupon_usages
		WHERE redemption_key = $1
	`

	var u models.CouponUsage
	err := tx.QueryRowContext(ctx, query, key).Scan(&u.ID, &u.CouponID, &u.UserEmail, &u.DiscountApplied, &u.AppliedAt, &u.TransactionStatus, &u.RedemptionKey)
	if err != nil {
		return u, fmt.Errorf("get usage by key: %w", err)
	}
	return u, nil
}
