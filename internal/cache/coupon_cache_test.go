package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

func TestCouponCacheSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewCouponCache(time.Minute)

	_, gen, _ := c.Get(ctx, "SAVE10")
	c.Set(ctx, "SAVE10", &models.Coupon{ID: 7, Code: "SAVE10"}, gen)

	got, _, ok := c.Get(ctx, "SAVE10")
	if !ok || got.ID != 7 {
		t.Fatalf("expected cached coupon 7, got %+v ok=%v", got, ok)
	}

	got.OfferName = "mutated"
	again, _, _ := c.Get(ctx, "SAVE10")
	if again.OfferName != "" {
		t.Fatal("cache must hand out copies")
	}

	c.Invalidate(ctx, "SAVE10", "OTHER")
	if _, _, ok := c.Get(ctx, "SAVE10"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestCouponCacheDropsFillAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewCouponCache(time.Minute)

	// A lookup misses and reads the row; a mutation lands before the fill.
	_, gen, ok := c.Get(ctx, "SAVE10")
	if ok {
		t.Fatal("expected initial miss")
	}
	c.Invalidate(ctx, "SAVE10")
	c.Set(ctx, "SAVE10", &models.Coupon{ID: 7, Code: "SAVE10"}, gen)

	_, fresh, ok := c.Get(ctx, "SAVE10")
	if ok {
		t.Fatal("stale fill must not be cached")
	}
	if fresh == gen {
		t.Fatal("invalidate must advance the generation")
	}

	c.Set(ctx, "SAVE10", &models.Coupon{ID: 7, Code: "SAVE10"}, fresh)
	if _, _, ok := c.Get(ctx, "SAVE10"); !ok {
		t.Fatal("fill with current generation should be cached")
	}
}

func TestCouponCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCouponCache(30 * time.Second)
	c.now = func() time.Time { return now }

	c.Set(ctx, "X", &models.Coupon{ID: 1}, 0)
	now = now.Add(29 * time.Second)
	if _, _, ok := c.Get(ctx, "X"); !ok {
		t.Fatal("expected hit before ttl")
	}
	now = now.Add(time.Second)
	if _, _, ok := c.Get(ctx, "X"); ok {
		t.Fatal("expected miss at ttl")
	}
}

func TestCouponCacheDisabledWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	c := NewCouponCache(0)
	c.Set(ctx, "X", &models.Coupon{ID: 1}, 0)
	if _, _, ok := c.Get(ctx, "X"); ok {
		t.Fatal("zero ttl must not cache")
	}
}
