package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

type Recorder interface {
	PaymentAttempt(gateway, outcome string)
	ChargeDuration(gateway string, d time.Duration)
}

type PrometheusRecorder struct {
	attempts *prometheus.CounterVec
	charges  *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the payment collectors on reg.
func NewPrometheusRecorder(namespace string, reg prometheus.Registerer) *PrometheusRecorder {
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_attempts_total",
		Help:      "Payment attempts by gateway and outcome.",
	}, []string{"gateway", "outcome"})

	charges := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_charge_duration_seconds",
		Help:      "Time spent in the payment gateway charge call.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"gateway"})

	reg.MustRegister(attempts, charges)

	return &PrometheusRecorder{attempts: attempts, charges: charges}
}

func (r *PrometheusRecorder) PaymentAttempt(gateway, outcome string) {
	r.attempts.WithLabelValues(gateway, outcome).Inc()
}

func (r *PrometheusRecorder) ChargeDuration(gateway string, d time.Duration) {
	r.charges.WithLabelValues(gateway).Observe(d.Seconds())
}

type NopRecorder struct{}

func (NopRecorder) PaymentAttempt(string, string)        {}
func (NopRecorder) ChargeDuration(string, time.Duration) {}
