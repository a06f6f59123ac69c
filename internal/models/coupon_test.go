package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"1767225600000", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{" 1767225600000.9 ", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-01-01T05:30:00+05:30", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if !got.Equal(tt.want) || got.Location() != time.UTC {
			t.Fatalf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}

	for _, bad := range []string{"", "tomorrow", "2026-01-01"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCouponWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := Coupon{StartDate: start, EndDate: start.Add(time.Hour)}

	if c.InWindow(start.Add(-time.Nanosecond)) || !c.InWindow(start) || !c.InWindow(c.EndDate) || c.InWindow(c.EndDate.Add(time.Nanosecond)) {
		t.Fatal("window bounds must be inclusive")
	}

	// Not yet started still blocks the code.
	if !c.IsActive(start.Add(-24 * time.Hour)) {
		t.Fatal("future coupon should be active")
	}
	if c.IsActive(c.EndDate.Add(time.Second)) {
		t.Fatal("ended coupon should not be active")
	}
	c.IsDeleted = true
	if c.IsActive(start) {
		t.Fatal("soft-deleted coupon should not be active")
	}
}

func TestCouponPatchApply(t *testing.T) {
	limit := 5
	orig := Coupon{Code: "OLD", OfferName: "Offer", DiscountType: DiscountFlat, DiscountValue: decimal.NewFromInt(20), MaxUsage: &limit}

	code := " NEW "
	typ := "percentage"
	got := CouponPatch{Code: &code, DiscountType: &typ, ClearMaxUsage: true}.Apply(orig)

	if got.Code != "NEW" || got.DiscountType != DiscountPercentage || got.MaxUsage != nil {
		t.Fatalf("unexpected patched coupon %+v", got)
	}
	if orig.Code != "OLD" || orig.MaxUsage == nil {
		t.Fatal("Apply must not modify the original")
	}
}

func TestUsageCount(t *testing.T) {
	u := User{CouponCodesUsed: []string{"A", "B", "A", "a"}}
	if n := u.UsageCount("A"); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
	if n := u.UsageCount("C"); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}
