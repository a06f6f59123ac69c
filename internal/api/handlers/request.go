package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

// Admin clients send numbers either as JSON numbers or as form strings, and
// use "" to clear an optional cap. The flex types below accept both.

type flexInt struct {
	Set   bool
	Null  bool
	Value int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	f.Set = true
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		f.Null = true
	case float64:
		if x != math.Trunc(x) {
			return fmt.Errorf("%v is not an integer", x)
		}
		f.Value = int(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			f.Null = true
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%q is not an integer", x)
		}
		f.Value = n
	default:
		return fmt.Errorf("expected integer, got %s", string(b))
	}
	return nil
}

func (f flexInt) ptr() *int {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}

type flexDecimal struct {
	Set   bool
	Value decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		// Parse the literal rather than x to keep every digit.
		d, err := decimal.NewFromString(strings.TrimSpace(string(b)))
		if err != nil {
			d = decimal.NewFromFloat(x)
		}
		f.Value, f.Set = d, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("%q is not a number", x)
		}
		f.Value, f.Set = d, true
	default:
		return fmt.Errorf("expected number, got %s", string(b))
	}
	return nil
}

func (f flexDecimal) ptr() *decimal.Decimal {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// flexTime accepts epoch milliseconds (number or string) or RFC3339.
type flexTime struct {
	Set   bool
	Value time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var raw string
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		raw = strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		raw = x
	default:
		return fmt.Errorf("expected timestamp, got %s", string(b))
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := models.ParseTimestamp(raw)
	if err != nil {
		return err
	}
	f.Value, f.Set = t, true
	return nil
}

func (f flexTime) ptr() *time.Time {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// CouponRequest is the body of create and update.
type CouponRequest struct {
	Code              *string     `json:"code"`
	OfferName         *string     `json:"offer_name"`
	DiscountType      *string     `json:"discount_type"`
	DiscountValue     flexDecimal `json:"discount_value"`
	MaxUsage          flexInt     `json:"max_usage"`
	MaxUsagePerUser   flexInt     `json:"max_usage_per_user"`
	StartDate         flexTime    `json:"start_date"`
	EndDate           flexTime    `json:"end_date"`
	TermsURL          *string     `json:"terms_url"`
	Description       *string     `json:"description"`
	CouponDescription *string     `json:"coupon_description"`
}

func (r CouponRequest) description() *string {
	if r.Description != nil {
		return r.Description
	}
	return r.CouponDescription
}

func (r CouponRequest) toInput() models.CouponInput {
	return models.CouponInput{
		Code:            deref(r.Code),
		OfferName:       deref(r.OfferName),
		DiscountType:    deref(r.DiscountType),
		DiscountValue:   r.DiscountValue.ptr(),
		MaxUsage:        r.MaxUsage.ptr(),
		MaxUsagePerUser: r.MaxUsagePerUser.ptr(),
		StartDate:       r.StartDate.ptr(),
		EndDate:         r.EndDate.ptr(),
		TermsURL:        deref(r.TermsURL),
		Description:     deref(r.description()),
	}
}

func (r CouponRequest) toPatch() models.CouponPatch {
	return models.CouponPatch{
		Code:                 r.Code,
		OfferName:            r.OfferName,
		DiscountType:         r.DiscountType,
		DiscountValue:        r.DiscountValue.ptr(),
		MaxUsage:             r.MaxUsage.ptr(),
		ClearMaxUsage:        r.MaxUsage.Set && r.MaxUsage.Null,
		MaxUsagePerUser:      r.MaxUsagePerUser.ptr(),
		ClearMaxUsagePerUser: r.MaxUsagePerUser.Set && r.MaxUsagePerUser.Null,
		StartDate:            r.StartDate.ptr(),
		EndDate:              r.EndDate.ptr(),
		TermsURL:             r.TermsURL,
		Description:          r.description(),
	}
}

type RedeemRequestBody struct {
	UserEmail         string      `json:"user_email"`
	CouponID          flexInt     `json:"coupon_id"`
	DiscountApplied   flexDecimal `json:"discount_applied"`
	OriginalPrice     flexDecimal `json:"original_price"`
	TransactionStatus string      `json:"transaction_status"`
	IdempotencyKey    string      `json:"idempotency_key"`
}

type LoginRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
