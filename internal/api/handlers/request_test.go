package handlers

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCouponRequestAcceptsLooseTypes(t *testing.T) {
	body := `{
		"code": "MIX",
		"offer_name": "Mixed",
		"discount_type": "flat",
		"discount_value": "199.995",
		"max_usage": 10,
		"max_usage_per_user": "3",
		"start_date": "1767225600000",
		"end_date": "2026-12-31T23:59:59Z",
		"description": "primary",
		"coupon_description": "ignored"
	}`

	var req CouponRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	in := req.toInput()

	if in.DiscountValue == nil || in.DiscountValue.String() != "199.995" {
		t.Fatalf("unexpected discount %v", in.DiscountValue)
	}
	if in.MaxUsage == nil || *in.MaxUsage != 10 || in.MaxUsagePerUser == nil || *in.MaxUsagePerUser != 3 {
		t.Fatalf("unexpected caps %v %v", in.MaxUsage, in.MaxUsagePerUser)
	}
	if want := time.UnixMilli(1767225600000).UTC(); in.StartDate == nil || !in.StartDate.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, in.StartDate)
	}
	if want := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC); in.EndDate == nil || !in.EndDate.Equal(want) {
		t.Fatalf("expected end %v, got %v", want, in.EndDate)
	}
	if in.Description != "primary" {
		t.Fatalf("expected description to win over coupon_description, got %q", in.Description)
	}
}

func TestCouponRequestDecimalKeepsPrecision(t *testing.T) {
	var req CouponRequest
	if err := json.Unmarshal([]byte(`{"discount_value": 0.1000000000000000055}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := req.DiscountValue.Value.String(); got != "0.1000000000000000055" {
		t.Fatalf("expected literal precision, got %s", got)
	}
}

func TestCouponPatchClearsCaps(t *testing.T) {
	var req CouponRequest
	if err := json.Unmarshal([]byte(`{"max_usage": null, "max_usage_per_user": ""}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := req.toPatch()
	if !p.ClearMaxUsage || !p.ClearMaxUsagePerUser {
		t.Fatalf("expected both caps cleared, got %+v", p)
	}
	if p.Code != nil || p.DiscountValue != nil || p.StartDate != nil {
		t.Fatalf("absent fields must stay untouched, got %+v", p)
	}

	req = CouponRequest{}
	if err := json.Unmarshal([]byte(`{"offer_name": "Renamed"}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p = req.toPatch()
	if p.ClearMaxUsage || p.MaxUsage != nil {
		t.Fatalf("absent cap must not be cleared, got %+v", p)
	}
}

func TestFlexRejectsBadValues(t *testing.T) {
	bodies := []string{
		`{"max_usage": 2.5}`,
		`{"max_usage": "many"}`,
		`{"max_usage": true}`,
		`{"discount_value": "ten"}`,
		`{"start_date": "next week"}`,
	}
	for _, b := range bodies {
		var req CouponRequest
		if err := json.Unmarshal([]byte(b), &req); err == nil {
			t.Errorf("expected error decoding %s", b)
		}
	}
}
