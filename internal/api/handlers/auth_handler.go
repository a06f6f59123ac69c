package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Cheertaboi/coupon-management-service/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondFailure(w, http.StatusUnauthorized, "Access Denied, invalid email or password", "Unauthorized")
			return
		}
		respondFailure(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	respond(w, http.StatusOK, "Login successful", res)
}
