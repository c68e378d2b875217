package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics recorded by the transport middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Payment reconciliation metrics.
var (
	ReconcileResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconcile_results_total",
		Help: "Reconciliation outcomes by result.",
	}, []string{"result"})

	CheckoutsInitiatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_checkouts_initiated_total",
		Help: "Checkout sessions opened, by intent kind.",
	}, []string{"kind"})

	OrdersReadyForFulfillment = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_ready_for_fulfillment_total",
		Help: "Paid orders handed to fulfillment.",
	})

	WalletCreditsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_credits_committed_total",
		Help: "Wallet recharges credited after verification.",
	})
)
