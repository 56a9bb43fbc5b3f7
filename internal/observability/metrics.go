package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions       prometheus.Gauge
	SessionEvents        *prometheus.CounterVec
	WSMessages           *prometheus.CounterVec
	FramesRelayed        *prometheus.CounterVec
	BackendErrors        *prometheus.CounterVec
	TranscriptionLatency prometheus.Histogram
	FirstReplyLatency    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active media-stream sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle and pipeline events by type.",
		}, []string{"event"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Media-stream messages by direction and event.",
		}, []string{"direction", "event"}),
		FramesRelayed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_relayed_total",
			Help:      "Audio frames relayed by direction.",
		}, []string{"direction"}),
		BackendErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Speech backend errors by operation and code.",
		}, []string{"operation", "code"}),
		TranscriptionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_latency_ms",
			Help:      "Latency of transcription round trips in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000},
		}),
		FirstReplyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "first_reply_latency_ms",
			Help:      "Latency from stream start to first outbound reply frame in milliseconds.",
			Buckets:   []float64{200, 500, 1000, 2000, 3000, 5000, 8000},
		}),
	}
}

func (m *Metrics) ObserveTranscriptionLatency(d time.Duration) {
	m.TranscriptionLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveFirstReplyLatency(d time.Duration) {
	m.FirstReplyLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
