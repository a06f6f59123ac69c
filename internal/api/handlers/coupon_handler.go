package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Cheertaboi/coupon-management-service/internal/metrics"
	"github.com/Cheertaboi/coupon-management-service/internal/models"
	"github.com/Cheertaboi/coupon-management-service/internal/service"
	"github.com/Cheertaboi/coupon-management-service/internal/storage"
)

type CouponHandler struct {
	service        *service.CouponService
	archiver       storage.Archiver
	importMaxBytes int64
}

func NewCouponHandler(svc *service.CouponService, archiver storage.Archiver, importMaxBytes int64) *CouponHandler {
	if archiver == nil {
		archiver = storage.NopArchiver{}
	}
	if importMaxBytes <= 0 {
		importMaxBytes = 10 << 20
	}
	return &CouponHandler{
		service:        svc,
		archiver:       archiver,
		importMaxBytes: importMaxBytes,
	}
}

// ValidateCoupon handles POST /api/coupons/validate.
// Rule denials are answered with 200 and is_valid=false.
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	res, err := h.service.ValidateCoupon(r.Context(), req.CouponCode, req.UserEmail)
	if err != nil {
		e := service.AsError(err)
		metrics.ObserveValidation(string(e.Reason))
		if e.Kind == service.KindValidation || e.Kind == service.KindUpstream {
			respondError(w, r, "Error validating coupon", err)
			return
		}
		respond(w, http.StatusOK, "Coupon is not applicable", models.ValidationResponse{
			IsValid: false,
			Reason:  string(e.Reason),
			Kind:    string(e.Kind),
			Message: e.Message,
		})
		return
	}

	metrics.ObserveValidation("VALID")
	respond(w, http.StatusOK, "Coupon is valid", models.ValidationResponse{
		IsValid: true,
		Message: "coupon_applicable",
		Coupon:  res,
	})
}

// RedeemCoupon handles POST /api/coupons/redeem.
func (h *CouponHandler) RedeemCoupon(w http.ResponseWriter, r *http.Request) {
	var body RedeemRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req := models.RedeemRequest{
		UserEmail:         body.UserEmail,
		CouponID:          int64(body.CouponID.Value),
		DiscountApplied:   body.DiscountApplied.Value,
		OriginalPrice:     body.OriginalPrice.ptr(),
		TransactionStatus: body.TransactionStatus,
		IdempotencyKey:    body.IdempotencyKey,
	}
	if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
		req.IdempotencyKey = key
	}

	res, err := h.service.RedeemCoupon(r.Context(), req)
	if err != nil {
		metrics.ObserveRedemption(string(service.AsError(err).Kind))
		respondError(w, r, "Error redeeming coupon", err)
		return
	}

	if res.Replayed {
		metrics.ObserveRedemption("REPLAYED")
		respond(w, http.StatusOK, "Coupon redemption already recorded", res)
		return
	}
	metrics.ObserveRedemption("RECORDED")
	respond(w, http.StatusCreated, "Coupon redeemed successfully", res)
}
