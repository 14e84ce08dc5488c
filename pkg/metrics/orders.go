package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records checkout and cancellation outcomes.
type OrderMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutSuccess  prometheus.Counter
	checkoutFailure  *prometheus.CounterVec
	cancellations    prometheus.Counter
	stockConflicts   prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_success_total",
		Help: "Orders created successfully.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Failed checkout attempts by reason.",
	}, []string{"reason"})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_cancellations_total",
		Help: "Orders cancelled.",
	})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_stock_conflicts_total",
		Help: "Checkout attempts rejected for insufficient stock.",
	})
	reg.MustRegister(duration, success, failure, cancellations, stockConflicts)
	return &OrderMetrics{
		checkoutDuration: duration,
		checkoutSuccess:  success,
		checkoutFailure:  failure,
		cancellations:    cancellations,
		stockConflicts:   stockConflicts,
	}
}

// ObserveCheckoutDuration records how long a checkout took for the given outcome.
func (o *OrderMetrics) ObserveCheckoutDuration(outcome string, duration time.Duration) {
	if o == nil || o.checkoutDuration == nil {
		return
	}
	o.checkoutDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCheckoutSuccess increments the successful checkout counter.
func (o *OrderMetrics) IncCheckoutSuccess() {
	if o == nil || o.checkoutSuccess == nil {
		return
	}
	o.checkoutSuccess.Inc()
}

// IncCheckoutFailure increments the failure counter for the given reason.
func (o *OrderMetrics) IncCheckoutFailure(reason string) {
	if o == nil || o.checkoutFailure == nil {
		return
	}
	o.checkoutFailure.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncCancellation increments the cancelled order counter.
func (o *OrderMetrics) IncCancellation() {
	if o == nil || o.cancellations == nil {
		return
	}
	o.cancellations.Inc()
}

// IncStockConflict increments the insufficient-stock counter.
func (o *OrderMetrics) IncStockConflict() {
	if o == nil || o.stockConflicts == nil {
		return
	}
	o.stockConflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
