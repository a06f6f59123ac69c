package service

import (
	"context"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// CreateCoupon inserts a coupon unless its code is held by an active coupon.
func (s *CouponService) CreateCoupon(ctx context.Context, in models.CouponInput) (*models.Coupon, error) {
	c, verr := couponFromInput(in)
	if verr != nil {
		return nil, verr
	}
	if err := checkCoupon(c); err != nil {
		return nil, err
	}

	if err := s.ensureCodeFree(ctx, c.Code, 0); err != nil {
		return nil, err
	}

	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, upstream("create coupon", err)
	}
	s.invalidate(ctx, c.Code)

	log.Printf("coupon created id=%d code=%s", c.ID, c.Code)
	return c, nil
}

func (s *CouponService) ListCoupons(ctx context.Context, includeDeleted bool) ([]models.Coupon, error) {
	list, err := s.coupons.List(ctx, includeDeleted)
	if err != nil {
		return nil, upstream("list coupons", err)
	}
	return list, nil
}

// GetCoupon returns the coupon by id, soft-deleted or not.
func (s *CouponService) GetCoupon(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, upstream("get coupon", err)
	}
	if c == nil {
		return nil, newError(KindNotFound, ReasonCouponNotFound, "coupon %d not found", id)
	}
	return c, nil
}

func (s *CouponService) UpdateCoupon(ctx context.Context, id int64, patch models.CouponPatch) (*models.Coupon, error) {
	cur, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.DiscountType != nil {
		if _, ok := models.ParseDiscountType(*patch.DiscountType); !ok {
			return nil, invalidField("discount_type", "must be PERCENTAGE, FLAT or REPORT")
		}
	}

	next := patch.Apply(*cur)
	if err := checkCoupon(&next); err != nil {
		return nil, err
	}

	// A rename or an end date pushed past now both claim the code.
	now := s.now()
	if next.IsActive(now) && (next.Code != cur.Code || !cur.IsActive(now)) {
		if err := s.ensureCodeFree(ctx, next.Code, id); err != nil {
			return nil, err
		}
	}

	next.UpdatedAt = now.UTC()
	if err := s.coupons.Update(ctx, &next); err != nil {
		return nil, upstream("update coupon", err)
	}
	s.invalidate(ctx, cur.Code, next.Code)
	return &next, nil
}

// SoftDeleteCoupon hides the coupon from validation and default listings.
func (s *CouponService) SoftDeleteCoupon(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return c, nil
	}

	at := s.now().UTC()
	if err := s.coupons.SetDeleted(ctx, id, &at); err != nil {
		return nil, upstream("soft delete coupon", err)
	}
	s.invalidate(ctx, c.Code)

	c.IsDeleted = true
	c.DeletedAt = &at
	return c, nil
}

// RestoreCoupon undoes a soft delete, provided the code is free again.
func (s *CouponService) RestoreCoupon(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsDeleted {
		return c, nil
	}

	// Only a coupon that would become active again can collide.
	if !s.now().After(c.EndDate) {
		if err := s.ensureCodeFree(ctx, c.Code, id); err != nil {
			return nil, err
		}
	}

	if err := s.coupons.SetDeleted(ctx, id, nil); err != nil {
		return nil, upstream("restore coupon", err)
	}
	s.invalidate(ctx, c.Code)

	c.IsDeleted = false
	c.DeletedAt = nil
	return c, nil
}

// DeleteCoupon removes the row permanently. Usage records are kept.
func (s *CouponService) DeleteCoupon(ctx context.Context, id int64) error {
	c, err := s.GetCoupon(ctx, id)
	if err != nil {
		return err
	}
	if err := s.coupons.Delete(ctx, id); err != nil {
		return upstream("delete coupon", err)
	}
	s.invalidate(ctx, c.Code)

	log.Printf("coupon hard-deleted id=%d code=%s", id, c.Code)
	return nil
}

func (s *CouponService) ensureCodeFree(ctx context.Context, code string, excludeID int64) error {
	taken, err := s.coupons.HasActiveCode(ctx, code, s.now(), excludeID)
	if err != nil {
		return upstream("check active code", err)
	}
	if taken {
		return newError(KindDuplicate, ReasonDuplicateCode, "an active coupon with code %s already exists", code)
	}
	return nil
}

func couponFromInput(in models.CouponInput) (*models.Coupon, *Error) {
	code := strings.TrimSpace(in.Code)
	offer := strings.TrimSpace(in.OfferName)
	switch {
	case code == "":
		return nil, missingField("code")
	case offer == "":
		return nil, missingField("offer_name")
	case strings.TrimSpace(in.DiscountType) == "":
		return nil, missingField("discount_type")
	case in.DiscountValue == nil:
		return nil, missingField("discount_value")
	case in.StartDate == nil:
		return nil, missingField("start_date")
	case in.EndDate == nil:
		return nil, missingField("end_date")
	}

	dt, ok := models.ParseDiscountType(in.DiscountType)
	if !ok {
		return nil, invalidField("discount_type", "must be PERCENTAGE, FLAT or REPORT")
	}

	return &models.Coupon{
		Code:            code,
		OfferName:       offer,
		DiscountType:    dt,
		DiscountValue:   *in.DiscountValue,
		MaxUsage:        in.MaxUsage,
		MaxUsagePerUser: in.MaxUsagePerUser,
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		TermsURL:        strings.TrimSpace(in.TermsURL),
		Description:     strings.TrimSpace(in.Description),
	}, nil
}

// checkCoupon enforces the field rules shared by create, update and import.
func checkCoupon(c *models.Coupon) *Error {
	if c.Code == "" {
		return missingField("code")
	}
	if c.OfferName == "" {
		return missingField("offer_name")
	}
	if _, ok := models.ParseDiscountType(string(c.DiscountType)); !ok {
		return invalidField("discount_type", "must be PERCENTAGE, FLAT or REPORT")
	}
	if c.DiscountValue.IsNegative() {
		return invalidField("discount_value", "must not be negative")
	}
	if c.DiscountType == models.DiscountPercentage && c.DiscountValue.GreaterThan(hundred) {
		return invalidField("discount_value", "percentage cannot exceed 100")
	}
	if c.MaxUsage != nil && *c.MaxUsage < 1 {
		return invalidField("max_usage", "must be at least 1")
	}
	if c.MaxUsagePerUser != nil && *c.MaxUsagePerUser < 1 {
		return invalidField("max_usage_per_user", "must be at least 1")
	}
	if c.EndDate.Before(c.StartDate) {
		return invalidField("end_date", "must not be before start_date")
	}
	return nil
}
