package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is owned by the account service; this service reads it and appends
// to its ledger.
type User struct {
	Email              string   `json:"email"`
	CouponCodesUsed    []string `json:"coupon_codes_used"`
	IsCouponReportFree bool     `json:"is_coupon_report_free"`
}

// UsageCount counts exact occurrences of code in the ledger.
func (u *User) UsageCount(code string) int {
	n := 0
	for _, c := range u.CouponCodesUsed {
		if c == code {
			n++
		}
	}
	return n
}

// NormalizeEmail is the lookup key for users.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Admin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

const TransactionSuccess = "SUCCESS"

// CouponUsage is an append-only audit record of one redemption.
type CouponUsage struct {
	ID                int64           `json:"id"`
	CouponID          int64           `json:"coupon_id"`
	UserEmail         string          `json:"user_email"`
	DiscountApplied   decimal.Decimal `json:"discount_applied"`
	AppliedAt         time.Time       `json:"applied_at"`
	TransactionStatus string          `json:"transaction_status"`
	RedemptionKey     string          `json:"redemption_key"`
}
