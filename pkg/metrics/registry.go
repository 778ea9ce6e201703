// Package metrics wires BucketFS components to Prometheus.
//
// Collection is opt-in: InitRegistry runs once at startup when the
// configuration enables metrics. Until then GetRegistry returns nil and the
// constructors in this package degrade to no-op forms, so instrumented code
// never pays for disabled metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Write-once: InitRegistry publishes the registry, nothing ever replaces it.
var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry creates the process-wide registry. Safe to call more than
// once; only the first call has an effect.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the process-wide registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
