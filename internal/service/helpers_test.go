package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
	"github.com/Cheertaboi/coupon-management-service/internal/repository"
)

var baseTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *CouponService
	store *repository.MemoryStore
	now   time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{store: repository.NewMemoryStore(), now: baseTime}
	opts.Now = func() time.Time { return f.now }
	f.svc = NewCouponService(f.store, f.store.Users(), f.store, opts)
	return f
}

func input(code string, start, end time.Time) models.CouponInput {
	v := decimal.NewFromInt(10)
	return models.CouponInput{
		Code:          code,
		OfferName:     "Spring offer",
		DiscountType:  "percentage",
		DiscountValue: &v,
		StartDate:     &start,
		EndDate:       &end,
	}
}

func (f *fixture) mustCreate(t *testing.T, in models.CouponInput) *models.Coupon {
	t.Helper()
	c, err := f.svc.CreateCoupon(context.Background(), in)
	if err != nil {
		t.Fatalf("create coupon %s: %v", in.Code, err)
	}
	return c
}

func (f *fixture) mustRedeem(t *testing.T, couponID int64, email string) *models.RedeemResult {
	t.Helper()
	res, err := f.svc.RedeemCoupon(context.Background(), models.RedeemRequest{
		UserEmail:       email,
		CouponID:        couponID,
		DiscountApplied: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("redeem coupon %d: %v", couponID, err)
	}
	return res
}

func intp(n int) *int { return &n }

func assertReason(t *testing.T, err error, kind Kind, reason Reason) {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error %s/%s, got %v", kind, reason, err)
	}
	if e.Kind != kind || e.Reason != reason {
		t.Fatalf("expected %s/%s, got %s/%s (%v)", kind, reason, e.Kind, e.Reason, err)
	}
}
