package service

import (
	"context"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

// Stores required by the service. Lookups return (nil, nil) when the row
// does not exist.

type CouponStore interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByID(ctx context.Context, id int64) (*models.Coupon, error)
	// FindLiveByCode returns the non-deleted coupon with this exact code,
	// preferring the latest end date.
	FindLiveByCode(ctx context.Context, code string) (*models.Coupon, error)
	// HasActiveCode reports whether a non-deleted coupon with this code ends
	// at or after now, ignoring excludeID.
	HasActiveCode(ctx context.Context, code string, now time.Time, excludeID int64) (bool, error)
	List(ctx context.Context, includeDeleted bool) ([]models.Coupon, error)
	Update(ctx context.Context, c *models.Coupon) error
	SetDeleted(ctx context.Context, id int64, deletedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type UsageStore interface {
	// CountByCoupon counts successful redemptions of the coupon.
	CountByCoupon(ctx context.Context, couponID int64) (int, error)
	ListByCoupon(ctx context.Context, couponID int64) ([]models.CouponUsage, error)
	// Redeem writes the usage row and, for applied redemptions, the ledger
	// append and report flag in one transaction. A redemption key seen
	// before returns the stored usage with replayed=true and leaves the user
	// untouched.
	Redeem(ctx context.Context, r models.Redemption) (usage models.CouponUsage, replayed bool, err error)
}

// CouponCache fronts code lookups for validation. Implementations must
// treat errors as misses.
//
// Get returns the code's generation on a miss. Set stores the coupon only if
// the code has not been invalidated since that generation was read, so a
// lookup racing a mutation cannot cache the pre-mutation row.
type CouponCache interface {
	Get(ctx context.Context, code string) (c *models.Coupon, gen uint64, ok bool)
	Set(ctx context.Context, code string, c *models.Coupon, gen uint64)
	Invalidate(ctx context.Context, codes ...string)
}

type noCache struct{}

func (noCache) Get(context.Context, string) (*models.Coupon, uint64, bool) { return nil, 0, false }
func (noCache) Set(context.Context, string, *models.Coupon, uint64)        {}
func (noCache) Invalidate(context.Context, ...string)                      {}
