package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

func TestCreateCouponDuplicateActiveCode(t *testing.T) {
	f := newFixture(t, Options{})
	f.mustCreate(t, input("DUP", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))

	_, err := f.svc.CreateCoupon(context.Background(), input("DUP", baseTime, baseTime.Add(48*time.Hour)))
	assertReason(t, err, KindDuplicate, ReasonDuplicateCode)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatal("expected errors.Is(err, ErrDuplicate)")
	}
}

func TestCreateCouponReusesInactiveCode(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.mustCreate(t, input("AGAIN", baseTime.Add(-48*time.Hour), baseTime.Add(-time.Hour)))
		f.mustCreate(t, input("AGAIN", baseTime, baseTime.Add(time.Hour)))
	})

	t.Run("soft-deleted", func(t *testing.T) {
		f := newFixture(t, Options{})
		old := f.mustCreate(t, input("AGAIN", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))
		if _, err := f.svc.SoftDeleteCoupon(context.Background(), old.ID); err != nil {
			t.Fatalf("soft delete: %v", err)
		}
		f.mustCreate(t, input("AGAIN", baseTime, baseTime.Add(time.Hour)))
	})
}

func TestCreateCouponValidation(t *testing.T) {
	start, end := baseTime, baseTime.Add(time.Hour)

	tests := []struct {
		name   string
		mutate func(in *models.CouponInput)
		reason Reason
	}{
		{"missing code", func(in *models.CouponInput) { in.Code = "  " }, ReasonMissingField},
		{"missing offer name", func(in *models.CouponInput) { in.OfferName = "" }, ReasonMissingField},
		{"missing value", func(in *models.CouponInput) { in.DiscountValue = nil }, ReasonMissingField},
		{"missing end date", func(in *models.CouponInput) { in.EndDate = nil }, ReasonMissingField},
		{"unknown type", func(in *models.CouponInput) { in.DiscountType = "bogo" }, ReasonInvalidField},
		{"percentage over 100", func(in *models.CouponInput) {
			v := decimal.NewFromInt(101)
			in.DiscountValue = &v
		}, ReasonInvalidField},
		{"negative value", func(in *models.CouponInput) {
			v := decimal.NewFromInt(-5)
			in.DiscountValue = &v
		}, ReasonInvalidField},
		{"zero cap", func(in *models.CouponInput) { in.MaxUsage = intp(0) }, ReasonInvalidField},
		{"end before start", func(in *models.CouponInput) {
			e := start.Add(-time.Minute)
			in.EndDate = &e
		}, ReasonInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			in := input("CHECK", start, end)
			tt.mutate(&in)
			_, err := f.svc.CreateCoupon(context.Background(), in)
			assertReason(t, err, KindValidation, tt.reason)
		})
	}
}

func TestCreateFlatCouponAboveHundred(t *testing.T) {
	f := newFixture(t, Options{})
	in := input("FLAT250", baseTime, baseTime.Add(time.Hour))
	in.DiscountType = "flat"
	v := decimal.NewFromInt(250)
	in.DiscountValue = &v

	c := f.mustCreate(t, in)
	if c.DiscountType != models.DiscountFlat {
		t.Fatalf("expected FLAT, got %s", c.DiscountType)
	}
}

func TestSoftDeleteHidesCoupon(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AddUser(models.User{Email: "u@example.com"})
	c := f.mustCreate(t, input("HIDE", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))
	ctx := context.Background()

	deleted, err := f.svc.SoftDeleteCoupon(ctx, c.ID)
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if !deleted.IsDeleted || deleted.DeletedAt == nil {
		t.Fatalf("expected deleted flags, got %+v", deleted)
	}

	_, err = f.svc.ValidateCoupon(ctx, "HIDE", "u@example.com")
	assertReason(t, err, KindNotFound, ReasonNotFound)

	list, _ := f.svc.ListCoupons(ctx, false)
	if len(list) != 0 {
		t.Fatalf("expected soft-deleted coupon hidden from list, got %d", len(list))
	}
	all, _ := f.svc.ListCoupons(ctx, true)
	if len(all) != 1 {
		t.Fatalf("expected coupon in full list, got %d", len(all))
	}

	got, err := f.svc.GetCoupon(ctx, c.ID)
	if err != nil || !got.IsDeleted {
		t.Fatalf("expected soft-deleted coupon by id, got %+v, %v", got, err)
	}

	if err := f.svc.DeleteCoupon(ctx, c.ID); err != nil {
		t.Fatalf("hard delete after soft delete: %v", err)
	}
	_, err = f.svc.GetCoupon(ctx, c.ID)
	assertReason(t, err, KindNotFound, ReasonCouponNotFound)
}

func TestHardDeleteKeepsUsageLog(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AddUser(models.User{Email: "u@example.com"})
	c := f.mustCreate(t, input("KEEP", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))
	f.mustRedeem(t, c.ID, "u@example.com")

	if err := f.svc.DeleteCoupon(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := f.store.CountByCoupon(context.Background(), c.ID); n != 1 {
		t.Fatalf("expected usage to survive hard delete, got %d", n)
	}

	usages, err := f.svc.ListUsages(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("list usages after hard delete: %v", err)
	}
	if len(usages) != 1 || usages[0].UserEmail != "u@example.com" {
		t.Fatalf("expected the surviving usage, got %+v", usages)
	}

	none, err := f.svc.ListUsages(context.Background(), 999)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty list for unknown coupon, got %v, %v", none, err)
	}
}

func TestRestoreCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("code free", func(t *testing.T) {
		f := newFixture(t, Options{})
		c := f.mustCreate(t, input("BACK", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))
		if _, err := f.svc.SoftDeleteCoupon(ctx, c.ID); err != nil {
			t.Fatalf("soft delete: %v", err)
		}
		restored, err := f.svc.RestoreCoupon(ctx, c.ID)
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if restored.IsDeleted || restored.DeletedAt != nil {
			t.Fatalf("expected restored coupon, got %+v", restored)
		}
	})

	t.Run("code taken", func(t *testing.T) {
		f := newFixture(t, Options{})
		old := f.mustCreate(t, input("BACK", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))
		if _, err := f.svc.SoftDeleteCoupon(ctx, old.ID); err != nil {
			t.Fatalf("soft delete: %v", err)
		}
		f.mustCreate(t, input("BACK", baseTime, baseTime.Add(time.Hour)))

		_, err := f.svc.RestoreCoupon(ctx, old.ID)
		assertReason(t, err, KindDuplicate, ReasonDuplicateCode)
	})

	t.Run("expired coupon never collides", func(t *testing.T) {
		f := newFixture(t, Options{})
		old := f.mustCreate(t, input("BACK", baseTime.Add(-48*time.Hour), baseTime.Add(-time.Hour)))
		if _, err := f.svc.SoftDeleteCoupon(ctx, old.ID); err != nil {
			t.Fatalf("soft delete: %v", err)
		}
		f.mustCreate(t, input("BACK", baseTime, baseTime.Add(time.Hour)))

		if _, err := f.svc.RestoreCoupon(ctx, old.ID); err != nil {
			t.Fatalf("restore expired: %v", err)
		}
	})
}

func TestUpdateCoupon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	in := input("FIRST", baseTime.Add(-time.Hour), baseTime.Add(time.Hour))
	in.MaxUsage = intp(10)
	first := f.mustCreate(t, in)
	f.mustCreate(t, input("SECOND", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))

	taken := "SECOND"
	_, err := f.svc.UpdateCoupon(ctx, first.ID, models.CouponPatch{Code: &taken})
	assertReason(t, err, KindDuplicate, ReasonDuplicateCode)

	offer := "Summer offer"
	updated, err := f.svc.UpdateCoupon(ctx, first.ID, models.CouponPatch{OfferName: &offer, ClearMaxUsage: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.OfferName != offer || updated.MaxUsage != nil || updated.Code != "FIRST" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	bad := decimal.NewFromInt(150)
	_, err = f.svc.UpdateCoupon(ctx, first.ID, models.CouponPatch{DiscountValue: &bad})
	assertReason(t, err, KindValidation, ReasonInvalidField)

	_, err = f.svc.UpdateCoupon(ctx, 999, models.CouponPatch{OfferName: &offer})
	assertReason(t, err, KindNotFound, ReasonCouponNotFound)
}

func TestUpdateCouponExtendingExpiredChecksCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	old := f.mustCreate(t, input("DUP", baseTime.Add(-72*time.Hour), baseTime.Add(-48*time.Hour)))
	f.mustCreate(t, input("DUP", baseTime.Add(-time.Hour), baseTime.Add(time.Hour)))

	end := baseTime.Add(72 * time.Hour)
	_, err := f.svc.UpdateCoupon(ctx, old.ID, models.CouponPatch{EndDate: &end})
	assertReason(t, err, KindDuplicate, ReasonDuplicateCode)

	// Edits that leave the old coupon expired do not collide.
	offer := "Archived offer"
	if _, err := f.svc.UpdateCoupon(ctx, old.ID, models.CouponPatch{OfferName: &offer}); err != nil {
		t.Fatalf("update expired coupon: %v", err)
	}

	free := f.mustCreate(t, input("LAPSED", baseTime.Add(-72*time.Hour), baseTime.Add(-48*time.Hour)))
	revived, err := f.svc.UpdateCoupon(ctx, free.ID, models.CouponPatch{EndDate: &end})
	if err != nil {
		t.Fatalf("extend with free code: %v", err)
	}
	if !revived.IsActive(baseTime) {
		t.Fatalf("expected revived coupon to be active, got %+v", revived)
	}
}
