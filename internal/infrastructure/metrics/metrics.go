// Package metrics provides Prometheus metrics for feather runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ersonp/feather/internal/domain/ports"
)

const namespace = "feather"

// Recorder counts pipeline outcomes in its own registry, so each run (and
// each test) starts from zero.
type Recorder struct {
	registry *prometheus.Registry

	// CandidatesTotal counts selected subjects by tier.
	CandidatesTotal *prometheus.CounterVec
	// MediaTotal counts resolved images by strategy.
	MediaTotal *prometheus.CounterVec
	// FactsTotal counts fact sets by source.
	FactsTotal *prometheus.CounterVec
	// FallbacksTotal counts components that fell back to curated data.
	FallbacksTotal *prometheus.CounterVec
	// PublishedTotal counts deliveries by kind.
	PublishedTotal *prometheus.CounterVec
}

// New creates a recorder with a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		CandidatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_total",
				Help:      "Subjects selected, by candidate tier",
			},
			[]string{"tier"},
		),
		MediaTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "media_resolved_total",
				Help:      "Images resolved, by strategy",
			},
			[]string{"source"},
		),
		FactsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fact_sets_total",
				Help:      "Fact sets produced, by source",
			},
			[]string{"source"},
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Curated fallbacks used, by component",
			},
			[]string{"component"},
		),
		PublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "published_total",
				Help:      "Publications delivered, by kind",
			},
			[]string{"kind"},
		),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// CandidateSelected records the tier a subject came from.
func (r *Recorder) CandidateSelected(tier string) {
	r.CandidatesTotal.WithLabelValues(tier).Inc()
}

// MediaResolved records the strategy that produced an image.
func (r *Recorder) MediaResolved(source string) {
	r.MediaTotal.WithLabelValues(source).Inc()
}

// FactsProduced records where a fact set came from.
func (r *Recorder) FactsProduced(source string) {
	r.FactsTotal.WithLabelValues(source).Inc()
}

// Fallback records a curated fallback.
func (r *Recorder) Fallback(component string) {
	r.FallbacksTotal.WithLabelValues(component).Inc()
}

// Published records a delivery.
func (r *Recorder) Published(kind string) {
	r.PublishedTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

var _ ports.Metrics = (*Recorder)(nil)
