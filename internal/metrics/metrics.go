package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribuna_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tribuna_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	HoldsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tribuna_holds_expired_total",
		Help: "Holds released by the expiry sweep.",
	})

	PaymentsReconciledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tribuna_payments_reconciled_total",
		Help: "Payment notifications processed, by verdict.",
	}, []string{"outcome"})
)
