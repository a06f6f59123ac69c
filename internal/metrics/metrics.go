package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupon_service",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coupon_service",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	validations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupon_service",
		Name:      "validations_total",
		Help:      "Coupon validations by outcome (VALID or the denial reason).",
	}, []string{"outcome"})

	redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupon_service",
		Name:      "redemptions_total",
		Help:      "Redemption calls by outcome.",
	}, []string{"outcome"})

	importRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coupon_service",
		Name:      "import_rows_total",
		Help:      "Bulk import rows by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, validations, redemptions, importRows)
}

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(route, method, status string, seconds float64) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpDuration.WithLabelValues(route, method).Observe(seconds)
}

func ObserveValidation(outcome string) {
	validations.WithLabelValues(outcome).Inc()
}

func ObserveRedemption(outcome string) {
	redemptions.WithLabelValues(outcome).Inc()
}

func ObserveImport(created, failed int) {
	importRows.WithLabelValues("created").Add(float64(created))
	importRows.WithLabelValues("failed").Add(float64(failed))
}
