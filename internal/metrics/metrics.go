package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	// Decode counters
	FramesDecoded atomic.Uint64
	FramesSkipped atomic.Uint64
	DecodeErrors  atomic.Uint64

	// Analysis counters
	FramesAnalyzed atomic.Uint64
	HUDAbsent      atomic.Uint64
	HPUnreadable   atomic.Uint64
	SAUnreadable   atomic.Uint64
	ODUnreadable   atomic.Uint64

	// Pipeline state
	RoundsObserved     atomic.Uint64
	FramesCollected    atomic.Uint64
	DebugFramesWritten atomic.Uint64

	// Latency tracking
	AnalyzeLatencyMs atomic.Uint64 // Last per-frame analysis latency in ms

	// Prometheus collectors
	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) gauge(name, help string, v *atomic.Uint64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		func() float64 { return float64(v.Load()) },
	))
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {
	m.gauge("hudscan_frames_decoded_total", "Total frames decoded from the source video", &m.FramesDecoded)
	m.gauge("hudscan_frames_skipped_total", "Total frames skipped by the sample rate", &m.FramesSkipped)
	m.gauge("hudscan_decode_errors_total", "Total decoder errors", &m.DecodeErrors)

	m.gauge("hudscan_frames_analyzed_total", "Total frames run through the gauge readers", &m.FramesAnalyzed)
	m.gauge("hudscan_hud_absent_total", "Total analyzed frames with no HUD present", &m.HUDAbsent)
	m.gauge("hudscan_hp_unreadable_total", "Total unreadable health readings (per side)", &m.HPUnreadable)
	m.gauge("hudscan_sa_unreadable_total", "Total unreadable special-gauge readings (per side)", &m.SAUnreadable)
	m.gauge("hudscan_od_unreadable_total", "Total unreadable drive-gauge readings (per side)", &m.ODUnreadable)

	m.gauge("hudscan_rounds_observed", "Rounds segmented so far", &m.RoundsObserved)
	m.gauge("hudscan_frames_collected_total", "Frames retained in the match log", &m.FramesCollected)
	m.gauge("hudscan_debug_frames_written_total", "Debug overlay frames written to disk", &m.DebugFramesWritten)

	m.gauge("hudscan_analyze_latency_ms", "Last per-frame analysis latency in milliseconds", &m.AnalyzeLatencyMs)
}

// UpdateAnalyzeLatency records the duration of the last frame analysis
func (m *Metrics) UpdateAnalyzeLatency(duration time.Duration) {
	m.AnalyzeLatencyMs.Store(uint64(duration.Milliseconds()))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server
func (m *Metrics) StartServer(addr string) error {
	http.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, nil)
}
