package metrics

import (
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the client's Prometheus metrics.
type MetricsManager struct {
	Registry                *prometheus.Registry
	GatewayRequestsTotal    *prometheus.CounterVec   // by op and outcome
	GatewayRequestLatency   *prometheus.HistogramVec // by op
	StaleResponsesDiscarded *prometheus.CounterVec   // by projection
	SubmissionsTotal        *prometheus.CounterVec   // by outcome
	NotificationsTotal      *prometheus.CounterVec   // by kind
}

// NewMetricsManager initializes and registers the metrics on a private registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of remote API calls by operation and outcome.",
	}, []string{"op", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_latency_seconds",
		Help:      "Latency of remote API calls by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_discarded_total",
		Help:      "Projection refresh responses dropped because a newer refresh was issued.",
	}, []string{"projection"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Response submissions by outcome (started, blocked, success, failure).",
	}, []string{"outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "User-facing notifications shown, by kind.",
	}, []string{"kind"})

	registry.MustRegister(
		requests,
		latency,
		stale,
		submissions,
		notifications,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:                registry,
		GatewayRequestsTotal:    requests,
		GatewayRequestLatency:   latency,
		StaleResponsesDiscarded: stale,
		SubmissionsTotal:        submissions,
		NotificationsTotal:      notifications,
	}
}

// StartMetricsServer starts an HTTP server exposing /metrics. A blank port disables it.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Helpers below are nil-safe so components can run without metrics.

func (m *MetricsManager) ObserveRequest(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(op, outcome).Inc()
	m.GatewayRequestLatency.WithLabelValues(op).Observe(seconds)
}

func (m *MetricsManager) StaleDiscarded(projection string) {
	if m == nil {
		return
	}
	m.StaleResponsesDiscarded.WithLabelValues(projection).Inc()
}

func (m *MetricsManager) Submission(outcome string) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsManager) Notification(kind string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind).Inc()
}
