package service

import (
	"context"
	"strings"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

type Options struct {
	// RedeemAttempts bounds retries of the redemption transaction.
	RedeemAttempts int
	// ImportDefaultValidity is used for import rows without an end date.
	ImportDefaultValidity time.Duration
	// ImportWorkers is the number of goroutines normalizing import rows.
	ImportWorkers int
	Cache         CouponCache
	Now           func() time.Time
}

type CouponService struct {
	coupons CouponStore
	users   UserStore
	usages  UsageStore
	cache   CouponCache

	now                   func() time.Time
	redeemAttempts        int
	importDefaultValidity time.Duration
	importWorkers         int
}

func NewCouponService(cRepo CouponStore, uRepo UserStore, usRepo UsageStore, opts Options) *CouponService {
	s := &CouponService{
		coupons:               cRepo,
		users:                 uRepo,
		usages:                usRepo,
		cache:                 opts.Cache,
		now:                   opts.Now,
		redeemAttempts:        opts.RedeemAttempts,
		importDefaultValidity: opts.ImportDefaultValidity,
		importWorkers:         opts.ImportWorkers,
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.redeemAttempts < 1 {
		s.redeemAttempts = 1
	}
	if s.importDefaultValidity <= 0 {
		s.importDefaultValidity = 365 * 24 * time.Hour
	}
	if s.importWorkers < 1 {
		s.importWorkers = 4
	}
	return s
}

// ValidateCoupon decides whether code may be applied for the user. It never
// writes; a denial is returned as *Error with the failing rule's Reason.
func (s *CouponService) ValidateCoupon(ctx context.Context, code, email string) (*models.ValidationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, missingField("code")
	}
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, missingField("email")
	}

	c, err := s.lookupCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, newError(KindNotFound, ReasonNotFound, "coupon %s not found", code)
	}

	now := s.now()
	if !c.InWindow(now) {
		return nil, newError(KindExpired, ReasonExpired, "coupon %s is not valid at this time", code)
	}

	if c.MaxUsage != nil {
		used, err := s.usages.CountByCoupon(ctx, c.ID)
		if err != nil {
			return nil, upstream("count coupon usage", err)
		}
		if used >= *c.MaxUsage {
			return nil, newError(KindExpired, ReasonExhausted, "coupon %s has reached its usage limit", code)
		}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, upstream("find user", err)
	}
	if u == nil {
		return nil, newError(KindNotFound, ReasonUserNotFound, "user %s not found", email)
	}

	if c.DiscountType == models.DiscountReport && !u.IsCouponReportFree {
		return nil, newError(KindAlreadyUsed, ReasonReportAlreadyUsed, "free report already used")
	}

	if c.MaxUsagePerUser != nil && u.UsageCount(c.Code) >= *c.MaxUsagePerUser {
		return nil, newError(KindLimitExceeded, ReasonPerUserLimit, "coupon %s already used %d time(s) by this user", code, *c.MaxUsagePerUser)
	}

	return &models.ValidationResult{
		CouponID:      c.ID,
		Code:          c.Code,
		OfferName:     c.OfferName,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		Description:   c.Description,
		TermsURL:      c.TermsURL,
	}, nil
}

func (s *CouponService) lookupCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, gen, ok := s.cache.Get(ctx, code)
	if ok {
		return c, nil
	}
	c, err := s.coupons.FindLiveByCode(ctx, code)
	if err != nil {
		return nil, upstream("find coupon", err)
	}
	if c != nil {
		s.cache.Set(ctx, code, c, gen)
	}
	return c, nil
}

func (s *CouponService) invalidate(ctx context.Context, codes ...string) {
	s.cache.Invalidate(ctx, codes...)
}
