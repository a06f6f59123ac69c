package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/coupon-management-service/internal/concurrency"
	"github.com/Cheertaboi/coupon-management-service/internal/models"
)

// ImportCoupons creates every row that does not collide with an active code,
// including codes created earlier in the same batch. Codes compare
// case-insensitively. A failed row never aborts the batch and earlier inserts
// are kept.
func (s *CouponService) ImportCoupons(ctx context.Context, rows []models.ImportRow) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{Total: len(rows), Errors: []models.ImportRowError{}}

	existing, err := s.coupons.List(ctx, false)
	if err != nil {
		return nil, upstream("list coupons", err)
	}

	now := s.now()
	active := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		if !now.After(c.EndDate) {
			active[strings.ToUpper(c.Code)] = struct{}{}
		}
	}

	parsed := make([]*models.Coupon, len(rows))
	rowErrs := make([]*Error, len(rows))
	concurrency.ForEach(ctx, s.importWorkers, len(rows), func(_ context.Context, i int) {
		parsed[i], rowErrs[i] = couponFromRow(rows[i], now, s.importDefaultValidity)
	})
	if err := ctx.Err(); err != nil {
		return nil, upstream("import interrupted", err)
	}

	fail := func(row models.ImportRow, code string, e *Error) {
		summary.Failed++
		summary.Errors = append(summary.Errors, models.ImportRowError{
			Row:     row.Line,
			Code:    code,
			Kind:    string(e.Kind),
			Message: e.Error(),
		})
	}

	for i, row := range rows {
		if rowErrs[i] != nil {
			fail(row, strings.TrimSpace(row.Get("code")), rowErrs[i])
			continue
		}

		c := parsed[i]
		key := strings.ToUpper(c.Code)
		if _, dup := active[key]; dup {
			fail(row, c.Code, newError(KindDuplicate, ReasonDuplicateCode, "an active coupon with code %s already exists", c.Code))
			continue
		}

		if err := s.coupons.Create(ctx, c); err != nil {
			fail(row, c.Code, upstream("insert coupon", err))
			continue
		}
		active[key] = struct{}{}
		summary.Created++
		s.invalidate(ctx, c.Code)
	}

	log.Printf("coupon import finished: total=%d created=%d failed=%d", summary.Total, summary.Created, summary.Failed)
	return summary, nil
}

func couponFromRow(row models.ImportRow, now time.Time, defaultValidity time.Duration) (*models.Coupon, *Error) {
	for _, name := range []string{"code", "offer_name", "discount_type", "discount_value"} {
		if strings.TrimSpace(row.Get(name)) == "" {
			return nil, missingField(name)
		}
	}

	value, err := decimal.NewFromString(strings.TrimSpace(row.Get("discount_value")))
	if err != nil {
		return nil, invalidField("discount_value", "not a number")
	}
	in := models.CouponInput{
		Code:          row.Get("code"),
		OfferName:     row.Get("offer_name"),
		DiscountType:  row.Get("discount_type"),
		DiscountValue: &value,
		TermsURL:      row.Get("terms_url"),
		Description:   row.Get("description"),
	}

	var verr *Error
	if in.MaxUsage, verr = optionalInt(row, "max_usage"); verr != nil {
		return nil, verr
	}
	if in.MaxUsagePerUser, verr = optionalInt(row, "max_usage_per_user"); verr != nil {
		return nil, verr
	}

	start := now.UTC()
	if v := strings.TrimSpace(row.Get("start_date")); v != "" {
		t, err := models.ParseTimestamp(v)
		if err != nil {
			return nil, invalidField("start_date", err.Error())
		}
		start = t
	}
	end := start.Add(defaultValidity)
	if v := strings.TrimSpace(row.Get("end_date")); v != "" {
		t, err := models.ParseTimestamp(v)
		if err != nil {
			return nil, invalidField("end_date", err.Error())
		}
		end = t
	}
	in.StartDate, in.EndDate = &start, &end

	c, verr := couponFromInput(in)
	if verr != nil {
		return nil, verr
	}
	if verr := checkCoupon(c); verr != nil {
		return nil, verr
	}
	return c, nil
}

func optionalInt(row models.ImportRow, name string) (*int, *Error) {
	v := strings.TrimSpace(row.Get(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, invalidField(name, "not an integer")
	}
	return &n, nil
}
