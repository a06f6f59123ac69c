package models

import "github.com/shopspring/decimal"

type ValidationRequest struct {
	CouponCode string `json:"code"`
	UserEmail  string `json:"email"`
}

// ValidationResult is what the caller needs to apply an allowed coupon.
type ValidationResult struct {
	CouponID      int64           `json:"coupon_id"`
	Code          string          `json:"code"`
	OfferName     string          `json:"offer_name"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Description   string          `json:"description"`
	TermsURL      string          `json:"terms_url"`
}

type ValidationResponse struct {
	IsValid bool              `json:"is_valid"`
	Reason  string            `json:"reason,omitempty"`
	Kind    string            `json:"kind,omitempty"`
	Message string            `json:"message"`
	Coupon  *ValidationResult `json:"coupon,omitempty"`
}
