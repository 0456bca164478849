// Package metrics exposes Prometheus constructors bound to a swappable
// registry and a small HTTP server publishing them.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registerer receives metrics created through this package.
	Registerer prometheus.Registerer = prometheus.DefaultRegisterer
	// Gatherer is served by Server.
	Gatherer prometheus.Gatherer = prometheus.DefaultGatherer
)

// SetRegistry points both Registerer and Gatherer at reg. Metrics created
// earlier stay on the registry they were created with.
func SetRegistry(reg *prometheus.Registry) {
	Registerer = reg
	Gatherer = reg
}

// Metric types (aliases from Prometheus).
type (
	CounterOpts   = prometheus.CounterOpts
	HistogramOpts = prometheus.HistogramOpts
	CounterVec    = prometheus.CounterVec
	HistogramVec  = prometheus.HistogramVec
)

// DefBuckets are the default histogram buckets.
var DefBuckets = prometheus.DefBuckets

// NewCounterVec creates a CounterVec on the current Registerer. A vector
// already registered there under the same name and labels is returned
// instead, so callers may construct their metrics more than once.
func NewCounterVec(opts CounterOpts, labels []string) *CounterVec {
	return register(prometheus.NewCounterVec(opts, labels))
}

// NewHistogramVec creates a HistogramVec on the current Registerer, reusing
// an identical registered vector like NewCounterVec.
func NewHistogramVec(opts HistogramOpts, labels []string) *HistogramVec {
	return register(prometheus.NewHistogramVec(opts, labels))
}

func register[C prometheus.Collector](c C) C {
	err := Registerer.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}
