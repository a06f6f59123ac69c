package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Cheertaboi/coupon-management-service/internal/service"
)

// envelope is the response shape shared by every endpoint.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Error      any    `json:"error"`
	Kind       string `json:"kind,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{StatusCode: code, Message: message, Data: data})
}

func respondFailure(w http.ResponseWriter, code int, message, detail string) {
	writeJSON(w, code, envelope{StatusCode: code, Message: message, Error: detail})
}

// respondError maps a service error onto its HTTP status. Upstream causes
// are attached to the body for diagnostics.
func respondError(w http.ResponseWriter, r *http.Request, message string, err error) {
	e := service.AsError(err)
	code := statusFor(e.Kind)
	if code >= http.StatusInternalServerError {
		log.Printf("%s %s: %s: %v", r.Method, r.URL.Path, message, err)
	}
	writeJSON(w, code, envelope{
		StatusCode: code,
		Message:    message,
		Error:      e.Error(),
		Kind:       string(e.Kind),
		Reason:     string(e.Reason),
	})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindExpired:
		return http.StatusGone
	case service.KindAlreadyUsed, service.KindLimitExceeded, service.KindDuplicate:
		return http.StatusConflict
	case service.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
