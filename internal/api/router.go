package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Cheertaboi/coupon-management-service/internal/api/handlers"
	"github.com/Cheertaboi/coupon-management-service/internal/api/middleware"
	"github.com/Cheertaboi/coupon-management-service/internal/auth"
	"github.com/Cheertaboi/coupon-management-service/internal/metrics"
	"github.com/Cheertaboi/coupon-management-service/internal/service"
	"github.com/Cheertaboi/coupon-management-service/internal/storage"
)

type Deps struct {
	Coupons        *service.CouponService
	Auth           *auth.Service
	Tokens         *auth.TokenManager
	Archiver       storage.Archiver
	ImportMaxBytes int64
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP router for the coupon-service
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if d.RequestTimeout > 0 {
		r.Use(chimw.Timeout(d.RequestTimeout))
	}

	couponHandler := handlers.NewCouponHandler(d.Coupons, d.Archiver, d.ImportMaxBytes)
	authHandler := handlers.NewAuthHandler(d.Auth)

	// Public coupon endpoints
	r.Route("/api/coupons", func(r chi.Router) {
		r.Post("/validate", couponHandler.ValidateCoupon)
		r.Post("/redeem", couponHandler.RedeemCoupon)
	})

	// Admin endpoints
	r.Post("/admin/login", authHandler.Login)
	r.Route("/admin/api/coupons", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(d.Tokens))

		r.Post("/createCoupon", couponHandler.CreateCoupon)
		r.Get("/getAllCoupons", couponHandler.GetAllCoupons)
		r.Get("/getCouponById/{id}", couponHandler.GetCouponByID)
		r.Put("/update/{id}", couponHandler.UpdateCoupon)
		r.Patch("/softDelete/{id}", couponHandler.SoftDeleteCoupon)
		r.Patch("/restore/{id}", couponHandler.RestoreCoupon)
		r.Delete("/delete/{id}", couponHandler.DeleteCoupon)
		r.Get("/usage/{id}", couponHandler.GetCouponUsage)
		r.Post("/bulkUpload", couponHandler.BulkUpload)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
