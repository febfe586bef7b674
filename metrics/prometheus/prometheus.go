// Package prometheus provides a Prometheus-backed httpcache.Metrics
// implementation. This package is optional and only imported when
// Prometheus metrics are needed.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arnavsurve/httpcache"
)

// Collector implements httpcache.Metrics for Prometheus.
type Collector struct {
	outcomes *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// CollectorConfig provides configuration options for the Prometheus collector.
type CollectorConfig struct {
	// Registry is the Prometheus registry to use. If nil, uses
	// prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace for metrics (default: "httpcache").
	Namespace string

	// Subsystem for metrics (optional).
	Subsystem string

	// ConstLabels are labels added to all metrics.
	ConstLabels prometheus.Labels
}

// NewCollector creates a new Prometheus collector with default registry and configuration.
func NewCollector() *Collector {
	return NewCollectorWithConfig(CollectorConfig{})
}

// NewCollectorWithRegistry creates a new Prometheus collector with a custom registry.
func NewCollectorWithRegistry(reg prometheus.Registerer) *Collector {
	return NewCollectorWithConfig(CollectorConfig{Registry: reg})
}

// NewCollectorWithConfig creates a new Prometheus collector with custom configuration.
func NewCollectorWithConfig(config CollectorConfig) *Collector {
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if config.Namespace == "" {
		config.Namespace = "httpcache"
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "lookup_outcomes_total",
				Help:        "Total number of Lookup/OnResponse/Invalidate outcomes by kind",
				ConstLabels: config.ConstLabels,
			},
			[]string{"outcome"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "errors_total",
				Help:        "Total number of CacheErrors reported through the error hook, by kind",
				ConstLabels: config.ConstLabels,
			},
			[]string{"kind"},
		),
	}
}

func (c *Collector) IncHit()        { c.outcomes.WithLabelValues("hit").Inc() }
func (c *Collector) IncMiss()       { c.outcomes.WithLabelValues("miss").Inc() }
func (c *Collector) IncRevalidate() { c.outcomes.WithLabelValues("revalidate").Inc() }
func (c *Collector) IncStore()      { c.outcomes.WithLabelValues("store").Inc() }
func (c *Collector) IncInvalidate() { c.outcomes.WithLabelValues("invalidate").Inc() }

func (c *Collector) IncError(kind httpcache.ErrKind) {
	c.errors.WithLabelValues(kind.String()).Inc()
}

// Verify interface implementation at compile time.
var _ httpcache.Metrics = (*Collector)(nil)
