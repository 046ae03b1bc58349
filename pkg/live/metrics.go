package live

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the live server's Prometheus collectors. Each Metrics owns
// its own registry so servers in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	MessagesTotal  *prometheus.CounterVec
	FramesTotal    *prometheus.CounterVec
	RecipeLoads    *prometheus.CounterVec
	Panics         prometheus.Counter
	CatalogSize    prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.initSessionMetrics()
	m.initMessageMetrics()
	return m
}

func (m *Metrics) initSessionMetrics() {
	f := promauto.With(m.registry)
	m.SessionsActive = f.NewGauge(prometheus.GaugeOpts{
		Name: "nodegraph_sessions_active",
		Help: "Number of connected editor sessions",
	})
	m.SessionsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "nodegraph_sessions_total",
		Help: "Total number of editor sessions opened",
	})
	m.Panics = f.NewCounter(prometheus.CounterOpts{
		Name: "nodegraph_session_panics_total",
		Help: "Total number of recovered panics in session loops",
	})
	m.CatalogSize = f.NewGauge(prometheus.GaugeOpts{
		Name: "nodegraph_catalog_components",
		Help: "Number of component definitions in the served catalog",
	})
}

func (m *Metrics) initMessageMetrics() {
	f := promauto.With(m.registry)
	m.MessagesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "nodegraph_messages_total",
		Help: "Total number of client messages by type and outcome",
	}, []string{"type", "result"})
	m.FramesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "nodegraph_frames_sent_total",
		Help: "Total number of frames sent to clients by type",
	}, []string{"type"})
	m.RecipeLoads = f.NewCounterVec(prometheus.CounterOpts{
		Name: "nodegraph_recipe_loads_total",
		Help: "Total number of recipe loads by outcome",
	}, []string{"result"})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMessage counts one handled client message.
func (m *Metrics) RecordMessage(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MessagesTotal.WithLabelValues(kind, result).Inc()
}

// RecordFrame counts one frame sent to a client.
func (m *Metrics) RecordFrame(kind string) {
	m.FramesTotal.WithLabelValues(kind).Inc()
}

// RecordRecipeLoad counts one recipe load.
func (m *Metrics) RecordRecipeLoad(err error) {
	if err != nil {
		m.RecipeLoads.WithLabelValues("malformed").Inc()
		return
	}
	m.RecipeLoads.WithLabelValues("ok").Inc()
}
