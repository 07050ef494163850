package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the storefront: cart write traffic, the checkout funnel, payment
// outcomes and upstream commerce API performance.
type BusinessMetrics struct {
	// Cart
	CartWrites        *prometheus.CounterVec
	CartWriteStale    prometheus.Counter
	CartWriteRollback prometheus.Counter

	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutCompleted *prometheus.CounterVec
	CheckoutFailed    *prometheus.CounterVec
	CheckoutResumed   prometheus.Counter

	// Payments
	PaymentAttempts  *prometheus.CounterVec
	PaymentSucceeded *prometheus.CounterVec
	PaymentFailed    *prometheus.CounterVec
	PaymentPending   prometheus.Counter

	// Coupons
	CouponApplied  prometheus.Counter
	CouponRejected prometheus.Counter

	// Search
	SearchQueries   prometheus.Counter
	SearchDiscarded prometheus.Counter

	// Upstream APIs
	CommerceAPILatency *prometheus.HistogramVec
	StripeAPILatency   *prometheus.HistogramVec
}

// NewBusinessMetrics creates and registers all business metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "vitrine"
	}

	subsystem := "business"

	m := &BusinessMetrics{
		CartWrites: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_writes_total",
				Help:      "Total cart write operations sent upstream",
			},
			[]string{"action", "outcome"}, // action: update_quantity, remove; outcome: ok, error
		),
		CartWriteStale: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_write_stale_total",
				Help:      "Total cart write responses discarded as stale",
			},
		),
		CartWriteRollback: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_write_rollback_total",
				Help:      "Total optimistic cart edits rolled back after a failed write",
			},
		),

		CheckoutStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_started_total",
				Help:      "Total checkout attempts started",
			},
		),
		CheckoutCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_completed_total",
				Help:      "Total checkouts reaching a success state",
			},
			[]string{"payment_method"},
		),
		CheckoutFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_failed_total",
				Help:      "Total checkouts reaching the failed state",
			},
			[]string{"stage"}, // stage: validating, placing_order, stripe_confirming
		),
		CheckoutResumed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_resumed_total",
				Help:      "Total checkout sessions resumed from persistence",
			},
		),

		PaymentAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_attempts_total",
				Help:      "Total gateway payment confirmations attempted",
			},
			[]string{"payment_method"},
		),
		PaymentSucceeded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_succeeded_total",
				Help:      "Total successful gateway payments",
			},
			[]string{"payment_method"},
		),
		PaymentFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_failed_total",
				Help:      "Total failed gateway payments",
			},
			[]string{"payment_method", "failure_reason"},
		),
		PaymentPending: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_captured_pending_total",
				Help:      "Total payments captured by the gateway but unconfirmed upstream",
			},
		),

		CouponApplied: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupons_applied_total",
				Help:      "Total coupon codes accepted by the commerce API",
			},
		),
		CouponRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupons_rejected_total",
				Help:      "Total coupon codes rejected",
			},
		),

		SearchQueries: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_queries_total",
				Help:      "Total search suggestion queries executed",
			},
		),
		SearchDiscarded: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_results_discarded_total",
				Help:      "Total search responses discarded for arriving out of order",
			},
		),

		CommerceAPILatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commerce_api_duration_seconds",
				Help:      "Commerce API call duration by operation",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		StripeAPILatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stripe_api_duration_seconds",
				Help:      "Stripe API call duration (helps differentiate app slowness from Stripe issues)",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}

	return m
}

// Global instance for easy access from handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
