package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFlat       DiscountType = "FLAT"
	// DiscountReport grants the user's single free report.
	DiscountReport DiscountType = "REPORT"
)

// ParseDiscountType normalizes s and reports whether it names a known type.
func ParseDiscountType(s string) (DiscountType, bool) {
	t := DiscountType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case DiscountPercentage, DiscountFlat, DiscountReport:
		return t, true
	}
	return t, false
}

type Coupon struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	OfferName       string          `json:"offer_name"`
	DiscountType    DiscountType    `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	MaxUsage        *int            `json:"max_usage"`
	MaxUsagePerUser *int            `json:"max_usage_per_user"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	TermsURL        string          `json:"terms_url"`
	Description     string          `json:"description"`
	IsDeleted       bool            `json:"is_deleted"`
	DeletedAt       *time.Time      `json:"deleted_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsActive reports whether the code still blocks reuse at now.
func (c *Coupon) IsActive(now time.Time) bool {
	return !c.IsDeleted && !now.After(c.EndDate)
}

// InWindow reports whether now falls inside [StartDate, EndDate].
func (c *Coupon) InWindow(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// CouponInput carries a fully decoded create request.
type CouponInput struct {
	Code            string
	OfferName       string
	DiscountType    string
	DiscountValue   *decimal.Decimal
	MaxUsage        *int
	MaxUsagePerUser *int
	StartDate       *time.Time
	EndDate         *time.Time
	TermsURL        string
	Description     string
}

// CouponPatch holds the fields of a partial update; nil means untouched.
// ClearMaxUsage and ClearMaxUsagePerUser remove a cap.
type CouponPatch struct {
	Code                 *string
	OfferName            *string
	DiscountType         *string
	DiscountValue        *decimal.Decimal
	MaxUsage             *int
	ClearMaxUsage        bool
	MaxUsagePerUser      *int
	ClearMaxUsagePerUser bool
	StartDate            *time.Time
	EndDate              *time.Time
	TermsURL             *string
	Description          *string
}

// Apply returns a copy of c with the patch applied.
func (p CouponPatch) Apply(c Coupon) Coupon {
	if p.Code != nil {
		c.Code = strings.TrimSpace(*p.Code)
	}
	if p.OfferName != nil {
		c.OfferName = strings.TrimSpace(*p.OfferName)
	}
	if p.DiscountType != nil {
		t, _ := ParseDiscountType(*p.DiscountType)
		c.DiscountType = t
	}
	if p.DiscountValue != nil {
		c.DiscountValue = *p.DiscountValue
	}
	if p.ClearMaxUsage {
		c.MaxUsage = nil
	} else if p.MaxUsage != nil {
		v := *p.MaxUsage
		c.MaxUsage = &v
	}
	if p.ClearMaxUsagePerUser {
		c.MaxUsagePerUser = nil
	} else if p.MaxUsagePerUser != nil {
		v := *p.MaxUsagePerUser
		c.MaxUsagePerUser = &v
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.TermsURL != nil {
		c.TermsURL = *p.TermsURL
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	return c
}
