package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCacheHit = "cache_hit"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	reviews  *prometheus.CounterVec
	llmCalls *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codereview",
			Name:      "reviews_total",
			Help:      "Code review requests by service mode and outcome.",
		}, []string{"mode", "outcome"}),
		llmCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codereview",
			Name:      "llm_call_duration_seconds",
			Help:      "Duration of LLM completion calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider", "outcome"}),
	}
	reg.MustRegister(m.reviews, m.llmCalls)
	return m
}

func (m *Metrics) ObserveReview(mode string, outcome string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveLLMCall(provider string, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}
