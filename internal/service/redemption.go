package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

const redeemBackoff = 50 * time.Millisecond

// RedeemCoupon records that a coupon was applied to a transaction. The usage
// row, ledger append and report flag are one idempotent store call, retried
// with the same redemption key on failure.
func (s *CouponService) RedeemCoupon(ctx context.Context, req models.RedeemRequest) (*models.RedeemResult, error) {
	if req.CouponID <= 0 {
		return nil, missingField("coupon_id")
	}
	email := models.NormalizeEmail(req.UserEmail)
	if email == "" {
		return nil, missingField("user_email")
	}
	if req.DiscountApplied.IsNegative() {
		return nil, invalidField("discount_applied", "must not be negative")
	}

	c, err := s.coupons.GetByID(ctx, req.CouponID)
	if err != nil {
		return nil, upstream("get coupon", err)
	}
	if c == nil || c.IsDeleted {
		return nil, newError(KindNotFound, ReasonCouponNotFound, "coupon %d not found", req.CouponID)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, upstream("find user", err)
	}
	if u == nil {
		return nil, newError(KindNotFound, ReasonUserNotFound, "user %s not found", email)
	}

	discount := req.DiscountApplied
	if discount.IsZero() && req.OriginalPrice != nil {
		discount = *req.OriginalPrice
	}

	status := strings.ToUpper(strings.TrimSpace(req.TransactionStatus))
	if status == "" {
		status = models.TransactionSuccess
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	red := models.Redemption{
		Usage: models.CouponUsage{
			CouponID:          c.ID,
			UserEmail:         u.Email,
			DiscountApplied:   discount,
			AppliedAt:         s.now().UTC(),
			TransactionStatus: status,
			RedemptionKey:     key,
		},
		Code:          c.Code,
		Applied:       status == models.TransactionSuccess,
		ConsumeReport: status == models.TransactionSuccess && c.DiscountType == models.DiscountReport,
	}

	for attempt := 1; ; attempt++ {
		usage, replayed, err := s.usages.Redeem(ctx, red)
		if err == nil {
			if replayed {
				log.Printf("redemption %s replayed for coupon=%d user=%s", key, c.ID, email)
			}
			return &models.RedeemResult{Usage: usage, Replayed: replayed}, nil
		}

		if attempt >= s.redeemAttempts || ctx.Err() != nil {
			log.Printf("redemption %s failed after %d attempt(s): %v", key, attempt, err)
			return nil, upstream("record redemption", err)
		}
		log.Printf("redemption %s attempt %d failed, retrying: %v", key, attempt, err)

		t := time.NewTimer(time.Duration(attempt) * redeemBackoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, upstream("record redemption", ctx.Err())
		case <-t.C:
		}
	}
}

// ListUsages returns a coupon's usage log, oldest first. The log outlives a
// hard delete, so an unknown coupon id yields an empty list, not an error.
func (s *CouponService) ListUsages(ctx context.Context, couponID int64) ([]models.CouponUsage, error) {
	list, err := s.usages.ListByCoupon(ctx, couponID)
	if err != nil {
		return nil, upstream("list coupon usage", err)
	}
	if list == nil {
		list = []models.CouponUsage{}
	}
	return list, nil
}
