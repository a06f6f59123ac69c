package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

const couponColumns = `
	id, code, offer_name, discount_type, discount_value, max_usage,
	max_usage_per_user, start_date, end_date, terms_url, description,
	is_deleted, deleted_at, created_at, updated_at`

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var (
		c               models.Coupon
		maxUsage        sql.NullInt64
		maxUsagePerUser sql.NullInt64
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.OfferName,
		&c.DiscountType,
		&c.DiscountValue,
		&maxUsage,
		&maxUsagePerUser,
		&c.StartDate,
		&c.EndDate,
		&c.TermsURL,
		&c.Description,
		&c.IsDeleted,
		&deletedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.MaxUsage = intPtr(maxUsage)
	c.MaxUsagePerUser = intPtr(maxUsagePerUser)
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	return &c, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	query := `
		INSERT INTO coupons
		(code, offer_name, discount_type, discount_value, max_usage, max_usage_per_user,
		 start_date, end_date, terms_url, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING id, is_deleted, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		c.Code,
		c.OfferName,
		c.DiscountType,
		c.DiscountValue,
		nullInt(c.MaxUsage),
		nullInt(c.MaxUsagePerUser),
		c.StartDate,
		c.EndDate,
		c.TermsURL,
		c.Description,
	).Scan(&c.ID, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (r *CouponRepo) GetByID(ctx context.Context, id int64) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon %d: %w", id, err)
	}
	return c, nil
}

func (r *CouponRepo) FindLiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE code = $1 AND is_deleted = FALSE
		ORDER BY end_date DESC, id DESC
		LIMIT 1
	`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find coupon by code: %w", err)
	}
	return c, nil
}

func (r *CouponRepo) HasActiveCode(ctx context.Context, code string, now time.Time, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM coupons
			WHERE code = $1 AND is_deleted = FALSE AND end_date >= $2 AND id <> $3
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, code, now, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active code: %w", err)
	}
	return exists, nil
}

func (r *CouponRepo) List(ctx context.Context, includeDeleted bool) ([]models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons`
	if !includeDeleted {
		query += ` WHERE is_deleted = FALSE`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []models.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *CouponRepo) Update(ctx context.Context, c *models.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $2, offer_name = $3, discount_type = $4, discount_value = $5,
		    max_usage = $6, max_usage_per_user = $7, start_date = $8, end_date = $9,
		    terms_url = $10, description = $11, updated_at = $12
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Code,
		c.OfferName,
		c.DiscountType,
		c.DiscountValue,
		nullInt(c.MaxUsage),
		nullInt(c.MaxUsagePerUser),
		c.StartDate,
		c.EndDate,
		c.TermsURL,
		c.Description,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update coupon %d: %w", c.ID, err)
	}
	return expectOne(res, "update coupon")
}

func (r *CouponRepo) SetDeleted(ctx context.Context, id int64, deletedAt *time.Time) error {
	query := `
		UPDATE coupons
		SET is_deleted = $2, deleted_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	var at sql.NullTime
	if deletedAt != nil {
		at = sql.NullTime{Time: *deletedAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, id, deletedAt != nil, at)
	if err != nil {
		return fmt.Errorf("set coupon %d deleted: %w", id, err)
	}
	return expectOne(res, "set coupon deleted")
}

func (r *CouponRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %d: %w", id, err)
	}
	return expectOne(res, "delete coupon")
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n != 1 {
		return fmt.Errorf("%s: expected 1 row, affected %d", op, n)
	}
	return nil
}
