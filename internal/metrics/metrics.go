package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedemptionDuration tracks the latency of promotion and reward redemptions.
	RedemptionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loyalty_redemption_duration_seconds",
			Help:    "Duration of redemption requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"kind", "result"}, // kind: promotion|reward; result: success|conflict|failed
	)

	// TopUpsTotal counts admin top-up operations by result.
	TopUpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_topups_total",
			Help: "Total number of admin top-up operations",
		},
		[]string{"result"},
	)

	// CoinsGranted accumulates coins credited through top-ups.
	CoinsGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_coins_granted_total",
			Help: "Total coins credited through top-ups",
		},
	)
)

// RecordRedemption records one redemption attempt.
func RecordRedemption(kind, result string, seconds float64) {
	RedemptionDuration.WithLabelValues(kind, result).Observe(seconds)
}
