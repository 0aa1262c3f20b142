package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCheckedOutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_checked_out_total",
		Help: "Total number of carts checked out into orders",
	})

	OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_paid_total",
		Help: "Total number of orders successfully paid",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrdersTakenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_taken_total",
		Help: "Total number of orders taken by workers",
	})

	OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of completed deliveries",
	})

	PaymentFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_failed_total",
		Help: "Total number of failed wallet payments",
	}, []string{"reason"})

	PaymentProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_processing_latency_seconds",
		Help:    "Latency of wallet payment processing",
		Buckets: prometheus.DefBuckets,
	})

	WalletTopUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_topups_total",
		Help: "Total number of wallet top-ups",
	})

	WalletPINFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_pin_failures_total",
		Help: "Total number of failed wallet PIN attempts",
	})

	WalletLockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_lockouts_total",
		Help: "Total number of wallet lockouts after exhausted PIN attempts",
	})

	CartLinesAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_lines_added_total",
		Help: "Total number of cart line additions",
	})

	TakeConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_take_conflicts_total",
		Help: "Total number of take attempts that lost the assignment race",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
