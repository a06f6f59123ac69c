package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Cheertaboi/coupon-management-service/internal/api/middleware"
)

// CreateCoupon handles POST /admin/api/coupons/createCoupon
func (h *CouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	c, err := h.service.CreateCoupon(r.Context(), req.toInput())
	if err != nil {
		respondError(w, r, "Error creating coupon", err)
		return
	}
	respond(w, http.StatusCreated, "Coupon created successfully", c)
}

// GetAllCoupons handles GET /admin/api/coupons/getAllCoupons[?include_deleted=true]
func (h *CouponHandler) GetAllCoupons(w http.ResponseWriter, r *http.Request) {
	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))

	list, err := h.service.ListCoupons(r.Context(), includeDeleted)
	if err != nil {
		respondError(w, r, "Error fetching coupons", err)
		return
	}
	respond(w, http.StatusOK, "Coupons fetched successfully", list)
}

func (h *CouponHandler) GetCouponByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondFailure(w, http.StatusBadRequest, "Invalid coupon id", "id must be a positive integer")
		return
	}

	c, err := h.service.GetCoupon(r.Context(), id)
	if err != nil {
		respondError(w, r, "Coupon not found", err)
		return
	}
	respond(w, http.StatusOK, "Coupon fetched successfully", c)
}

func (h *CouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondFailure(w, http.StatusBadRequest, "Invalid coupon id", "id must be a positive integer")
		return
	}

	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	c, err := h.service.UpdateCoupon(r.Context(), id, req.toPatch())
	if err != nil {
		respondError(w, r, "Error updating coupon", err)
		return
	}
	respond(w, http.StatusOK, "Coupon updated successfully", c)
}

func (h *CouponHandler) SoftDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondFailure(w, http.StatusBadRequest, "Invalid coupon id", "id must be a positive integer")
		return
	}

	c, err := h.service.SoftDeleteCoupon(r.Context(), id)
	if err != nil {
		respondError(w, r, "Error deleting coupon", err)
		return
	}
	respond(w, http.StatusOK, "Coupon soft deleted successfully", c)
}

func (h *CouponHandler) RestoreCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondFailure(w, http.StatusBadRequest, "Invalid coupon id", "id must be a positive integer")
		return
	}

	c, err := h.service.RestoreCoupon(r.Context(), id)
	if err != nil {
		respondError(w, r, "Error restoring coupon", err)
		return
	}
	respond(w, http.StatusOK, "Coupon restored successfully", c)
}

// DeleteCoupon handles DELETE /admin/api/coupons/delete/{id} (hard delete).
func (h *CouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondFailure(w, http.StatusBadRequest, "Invalid coupon id", "id must be a positive integer")
		return
	}

	if err := h.service.DeleteCoupon(r.Context(), id); err != nil {
		respondError(w, r, "Error deleting coupon", err)
		return
	}
	if admin, ok := middleware.AdminFromContext(r.Context()); ok {
		log.Printf("coupon %d hard-deleted by %s", id, admin.Email)
	}
	respond(w, http.StatusOK, "Coupon deleted successfully", nil)
}

func (h *CouponHandler) GetCouponUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondFailure(w, http.StatusBadRequest, "Invalid coupon id", "id must be a positive integer")
		return
	}

	list, err := h.service.ListUsages(r.Context(), id)
	if err != nil {
		respondError(w, r, "Error fetching coupon usage", err)
		return
	}
	respond(w, http.StatusOK, "Coupon usage fetched successfully", list)
}
