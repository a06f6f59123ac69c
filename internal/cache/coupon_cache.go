package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

type entry struct {
	coupon    models.Coupon
	expiresAt time.Time
}

// CouponCache is an in-process code -> coupon cache with a fixed TTL.
// It only sees invalidations made through this process; deployments with
// more than one instance should use RedisCouponCache.
type CouponCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	store map[string]entry
	gens  map[string]uint64
}

func NewCouponCache(ttl time.Duration) *CouponCache {
	return &CouponCache{
		ttl:   ttl,
		now:   time.Now,
		store: make(map[string]entry),
		gens:  make(map[string]uint64),
	}
}

func (c *CouponCache) Get(_ context.Context, code string) (*models.Coupon, uint64, bool) {
	c.mu.RLock()
	e, ok := c.store[code]
	gen := c.gens[code]
	c.mu.RUnlock()

	if !ok {
		return nil, gen, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.store[code]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.store, code)
		}
		gen = c.gens[code]
		c.mu.Unlock()
		return nil, gen, false
	}

	cp := e.coupon
	return &cp, gen, true
}

// Set is a no-op when code was invalidated after gen was handed out by Get.
func (c *CouponCache) Set(_ context.Context, code string, coupon *models.Coupon, gen uint64) {
	if coupon == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[code] != gen {
		return
	}
	c.store[code] = entry{coupon: *coupon, expiresAt: c.now().Add(c.ttl)}
}

func (c *CouponCache) Invalidate(_ context.Context, codes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		delete(c.store, code)
		c.gens[code]++
	}
}
