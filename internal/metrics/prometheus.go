// Package metrics holds the Prometheus instrumentation for nfcond.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all nfcond metrics.
type Registry struct {
	// Registry / variable lifecycle
	AcquiresTotal  *prometheus.CounterVec
	ReleasesTotal  *prometheus.CounterVec
	VariablesLive  *prometheus.GaugeVec
	RegistriesLive prometheus.Gauge

	// Endpoint writes, partitioned by whether the first byte was recognized
	ToggleWrites *prometheus.CounterVec

	// Packet path
	MatchesTotal *prometheus.CounterVec

	// Companion trigger gate
	TriggerTotal *prometheus.CounterVec

	// API surface
	APIRequests *prometheus.CounterVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.AcquiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfcond",
		Name:      "acquires_total",
		Help:      "Condition variable acquires (rule attaches) per registry",
	}, []string{"registry"})

	r.ReleasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfcond",
		Name:      "releases_total",
		Help:      "Condition variable releases (rule detaches) per registry",
	}, []string{"registry"})

	r.VariablesLive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nfcond",
		Name:      "variables_live",
		Help:      "Live condition variables per registry",
	}, []string{"registry"})

	r.RegistriesLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nfcond",
		Name:      "registries_live",
		Help:      "Live registry instances (isolated contexts)",
	})

	r.ToggleWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfcond",
		Name:      "toggle_writes_total",
		Help:      "Endpoint writes, by registry and result (applied or ignored)",
	}, []string{"registry", "result"})

	r.MatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfcond",
		Name:      "matches_total",
		Help:      "Condition match evaluations, by result",
	}, []string{"result"})

	r.TriggerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfcond",
		Name:      "trigger_total",
		Help:      "Trigger gate decisions, by result",
	}, []string{"result"})

	r.APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfcond",
		Name:      "api_requests_total",
		Help:      "API requests, by method and status class",
	}, []string{"method", "status"})

	return r
}
