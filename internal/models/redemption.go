package models

import "github.com/shopspring/decimal"

type RedeemRequest struct {
	UserEmail         string
	CouponID          int64
	DiscountApplied   decimal.Decimal
	OriginalPrice     *decimal.Decimal
	TransactionStatus string
	IdempotencyKey    string
}

// Redemption is the unit written atomically by a UsageStore: the usage row,
// the ledger append and, for REPORT coupons, the free-report flag. Only
// applied redemptions (transaction_status SUCCESS) touch the user.
type Redemption struct {
	Usage         CouponUsage
	Code          string
	Applied       bool
	ConsumeReport bool
}

type RedeemResult struct {
	Usage    CouponUsage `json:"usage"`
	Replayed bool        `json:"replayed"`
}
