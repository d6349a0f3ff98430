// Package metrics wires the ambient Prometheus counters SPEC_FULL.md §11
// supplements onto the TGS pipeline and the schema registry (the xdbm
// cursor has no counters),
// following marmos91-dittofs's pkg/metrics/prometheus package shape: a
// package-level, lazily-enabled registry (nil until InitRegistry is
// called) and one promauto-backed metrics struct per subsystem, each
// method a no-op on a nil receiver so callers never have to branch on
// whether metrics are enabled.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chemikadze/dirkdc/registry"
)

var (
	mu           sync.Mutex
	promRegistry *prometheus.Registry
)

// InitRegistry enables metrics collection, creating a fresh Prometheus
// registry. Calling it more than once replaces the previous registry;
// tests call it once per test to avoid duplicate-registration panics
// across parallel subtests.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	promRegistry = prometheus.NewRegistry()
	return promRegistry
}

// GetRegistry returns the active registry, or nil if InitRegistry has
// not been called.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return promRegistry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Handler returns the HTTP handler serving the active registry's
// metrics in the Prometheus exposition format, or nil if metrics are
// not enabled.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// TgsMetrics is the Prometheus-backed implementation of tgs.Recorder.
// A nil *TgsMetrics (returned by NewTgsMetrics when metrics are
// disabled) makes every method a safe no-op, so tgs.Server can be
// handed one unconditionally.
type TgsMetrics struct {
	requestsTotal *prometheus.CounterVec
	replayTotal   *prometheus.CounterVec
}

// NewTgsMetrics registers the TGS counters against the active registry.
// Returns nil if metrics are not enabled.
func NewTgsMetrics() *TgsMetrics {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}
	return &TgsMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirkdc_tgs_requests_total",
				Help: "Total number of TGS-REQ exchanges by outcome.",
			},
			[]string{"result"}, // "success" or a KRB error code
		),
		replayTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirkdc_tgs_replay_checks_total",
				Help: "Total number of replay cache checks by outcome.",
			},
			[]string{"outcome"}, // "hit" or "miss"
		),
	}
}

// ObserveResult records a completed TGS exchange, where result is
// "success" or the numeric KRB error code string that ended the
// pipeline early.
func (m *TgsMetrics) ObserveResult(result string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(result).Inc()
}

// ReplayHit implements tgs.Recorder: the authenticator had already been
// seen.
func (m *TgsMetrics) ReplayHit() {
	if m == nil {
		return
	}
	m.replayTotal.WithLabelValues("hit").Inc()
}

// ReplayMiss implements tgs.Recorder: the authenticator was new.
func (m *TgsMetrics) ReplayMiss() {
	if m == nil {
		return
	}
	m.replayTotal.WithLabelValues("miss").Inc()
}

// RegistryMetrics is the Prometheus-backed implementation of
// registry.Monitor, counting register/lookup outcomes for the schema
// object registry per SPEC_FULL.md §11's registry operation counters
// supplement.
type RegistryMetrics struct {
	registerTotal *prometheus.CounterVec
	lookupTotal   *prometheus.CounterVec
}

// NewRegistryMetrics registers the schema registry counters against the
// active registry. Returns nil if metrics are not enabled.
func NewRegistryMetrics() *RegistryMetrics {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}
	return &RegistryMetrics{
		registerTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirkdc_registry_register_total",
				Help: "Total number of schema object register attempts by outcome.",
			},
			[]string{"outcome"}, // "ok" or "failed"
		),
		lookupTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dirkdc_registry_lookup_total",
				Help: "Total number of schema object lookups by outcome.",
			},
			[]string{"outcome"}, // "ok" or "failed"
		),
	}
}

func (m *RegistryMetrics) Registered(schema string, obj registry.SchemaObject) {
	if m == nil {
		return
	}
	m.registerTotal.WithLabelValues("ok").Inc()
}

func (m *RegistryMetrics) RegisterFailed(schema string, obj registry.SchemaObject, err error) {
	if m == nil {
		return
	}
	m.registerTotal.WithLabelValues("failed").Inc()
}

func (m *RegistryMetrics) LookedUp(obj registry.SchemaObject) {
	if m == nil {
		return
	}
	m.lookupTotal.WithLabelValues("ok").Inc()
}

func (m *RegistryMetrics) LookupFailed(id string, err error) {
	if m == nil {
		return
	}
	m.lookupTotal.WithLabelValues("failed").Inc()
}
