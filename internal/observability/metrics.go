package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionTx = "tx"
	DirectionRx = "rx"
)

var (
	registerOnce sync.Once

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vhalctl",
			Subsystem: "session",
			Name:      "messages_total",
			Help:      "Injection messages sent and received.",
		},
		[]string{"direction", "msg_type"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vhalctl",
			Subsystem: "session",
			Name:      "frame_bytes_total",
			Help:      "Framed bytes sent and received, length prefix included.",
		},
		[]string{"direction"},
	)
	sessionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vhalctl",
			Subsystem: "session",
			Name:      "errors_total",
			Help:      "Session operation failures.",
		},
		[]string{"op"},
	)
	registrySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vhalctl",
			Subsystem: "registry",
			Name:      "properties",
			Help:      "Properties loaded by the last bootstrap.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vhalctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vhalctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(messagesTotal, frameBytes, sessionErrors, registrySize, httpRequests, httpDuration)
	})
}

// RecordMessage counts one framed message of n bytes.
func RecordMessage(direction, msgType string, n int) {
	RegisterMetrics()
	messagesTotal.WithLabelValues(direction, msgType).Inc()
	frameBytes.WithLabelValues(direction).Add(float64(n))
}

func RecordSessionError(op string) {
	RegisterMetrics()
	sessionErrors.WithLabelValues(op).Inc()
}

func SetRegistrySize(n int) {
	RegisterMetrics()
	registrySize.Set(float64(n))
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
