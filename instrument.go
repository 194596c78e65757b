package sentiment

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScorerMetrics holds the collectors updated by an instrumented scorer.
type ScorerMetrics struct {
	// Predictions counts scored texts by backend and label.
	Predictions *prometheus.CounterVec
	// Errors counts failed calls by backend and error kind.
	Errors *prometheus.CounterVec
	// Duration tracks scoring latency in seconds by backend.
	Duration *prometheus.HistogramVec
}

// NewScorerMetrics creates the scorer collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewScorerMetrics(reg prometheus.Registerer) *ScorerMetrics {
	factory := promauto.With(reg)
	return &ScorerMetrics{
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_predictions_total",
				Help: "Total scored texts by backend and label",
			},
			[]string{"backend", "label"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentiment_errors_total",
				Help: "Total scoring failures by backend and error kind",
			},
			[]string{"backend", "kind"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentiment_score_duration_seconds",
				Help:    "Scoring duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .5},
			},
			[]string{"backend"},
		),
	}
}

type instrumentedScorer struct {
	next    Scorer
	metrics *ScorerMetrics
}

// Instrument wraps scorer so every call updates metrics.
func Instrument(scorer Scorer, metrics *ScorerMetrics) Scorer {
	return &instrumentedScorer{next: scorer, metrics: metrics}
}

func (s *instrumentedScorer) Backend() Backend {
	return s.next.Backend()
}

func (s *instrumentedScorer) Score(ctx context.Context, text string) (Result, error) {
	backend := string(s.next.Backend())
	start := time.Now()
	result, err := s.next.Score(ctx, text)
	s.metrics.Duration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Errors.WithLabelValues(backend, string(KindOf(err))).Inc()
		return result, err
	}
	s.metrics.Predictions.WithLabelValues(backend, string(result.Label)).Inc()
	return result, nil
}
