package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

// MemoryStore implements the coupon, user, usage and admin stores in
// process. It backs the service and handler tests.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	coupons map[int64]models.Coupon
	users   map[string]models.User
	admins  map[string]models.Admin
	usages  []models.CouponUsage

	// FailRedeem makes the next n Redeem calls fail before writing.
	FailRedeem int
	// FailCreateCode makes Create fail for this code.
	FailCreateCode string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		coupons: make(map[int64]models.Coupon),
		users:   make(map[string]models.User),
		admins:  make(map[string]models.Admin),
	}
}

func (m *MemoryStore) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[models.NormalizeEmail(u.Email)] = u
}

func (m *MemoryStore) AddAdmin(a models.Admin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[models.NormalizeEmail(a.Email)] = a
}

func (m *MemoryStore) Create(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateCode != "" && c.Code == m.FailCreateCode {
		return errStore("insert coupon: simulated failure")
	}

	m.nextID++
	now := time.Now().UTC()
	c.ID = m.nextID
	c.CreatedAt, c.UpdatedAt = now, now
	m.coupons[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id int64) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryStore) FindLiveByCode(_ context.Context, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *models.Coupon
	for _, c := range m.coupons {
		if c.IsDeleted || c.Code != code {
			continue
		}
		if best == nil || c.EndDate.After(best.EndDate) || (c.EndDate.Equal(best.EndDate) && c.ID > best.ID) {
			cp := c
			best = &cp
		}
	}
	return best, nil
}

func (m *MemoryStore) HasActiveCode(_ context.Context, code string, now time.Time, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.coupons {
		if c.ID != excludeID && c.Code == code && c.IsActive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) List(_ context.Context, includeDeleted bool) ([]models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Coupon{}
	for _, c := range m.coupons {
		if c.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, c *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.coupons[c.ID]; !ok {
		return errStore("update coupon: expected 1 row, affected 0")
	}
	m.coupons[c.ID] = *c
	return nil
}

func (m *MemoryStore) SetDeleted(_ context.Context, id int64, deletedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coupons[id]
	if !ok {
		return errStore("set coupon deleted: expected 1 row, affected 0")
	}
	c.IsDeleted = deletedAt != nil
	c.DeletedAt = deletedAt
	m.coupons[id] = c
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.coupons[id]; !ok {
		return errStore("delete coupon: expected 1 row, affected 0")
	}
	delete(m.coupons, id)
	return nil
}

// findUser returns a copy of the user. Callers hold mu.
func (m *MemoryStore) findUser(email string) (*models.User, bool) {
	u, ok := m.users[models.NormalizeEmail(email)]
	if !ok {
		return nil, false
	}
	u.CouponCodesUsed = append([]string(nil), u.CouponCodesUsed...)
	return &u, true
}

func (m *MemoryStore) CountByCoupon(_ context.Context, couponID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, u := range m.usages {
		if u.CouponID == couponID && u.TransactionStatus == models.TransactionSuccess {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ListByCoupon(_ context.Context, couponID int64) ([]models.CouponUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.CouponUsage{}
	for _, u := range m.usages {
		if u.CouponID == couponID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryStore) Redeem(_ context.Context, red models.Redemption) (models.CouponUsage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRedeem > 0 {
		m.FailRedeem--
		return red.Usage, false, errStore("redeem: simulated failure")
	}

	for _, u := range m.usages {
		if u.RedemptionKey == red.Usage.RedemptionKey {
			return u, true, nil
		}
	}

	key := models.NormalizeEmail(red.Usage.UserEmail)
	user, ok := m.users[key]
	if !ok {
		return red.Usage, false, errStore("lock user: no rows")
	}

	usage := red.Usage
	usage.ID = int64(len(m.usages) + 1)
	m.usages = append(m.usages, usage)
	if !red.Applied {
		return usage, false, nil
	}

	user.CouponCodesUsed = append(append([]string(nil), user.CouponCodesUsed...), red.Code)
	if red.ConsumeReport {
		user.IsCouponReportFree = false
	}
	m.users[key] = user

	return usage, false, nil
}

// Users exposes the user lookup as a service.UserStore.
func (m *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{m: m} }

// Admins exposes the admin lookup as an auth.AdminStore.
func (m *MemoryStore) Admins() *MemoryAdmins { return &MemoryAdmins{m: m} }

type MemoryUsers struct{ m *MemoryStore }

func (u *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	user, ok := u.m.findUser(email)
	if !ok {
		return nil, nil
	}
	return user, nil
}

type MemoryAdmins struct{ m *MemoryStore }

func (a *MemoryAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	admin, ok := a.m.admins[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	return &admin, nil
}

type errStore string

func (e errStore) Error() string { return string(e) }
