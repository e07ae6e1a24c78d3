// Package metrics exposes Prometheus instrumentation for ledger operations,
// notification delivery and the HTTP and gRPC APIs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"cluster-ledger-backend/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cluster_ledger"

var (
	// Registry holds every collector of this process.
	Registry = prometheus.NewRegistry()

	ledgerOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Ledger operations by name and outcome.",
	}, []string{"operation", "outcome"})

	notificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Notifications that could not be stored.",
	})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	grpcDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "grpc_request_duration_seconds",
		Help:      "Unary gRPC latency by method and code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})
)

func init() {
	Registry.MustRegister(
		ledgerOperations,
		notificationFailures,
		httpDuration,
		grpcDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Outcome classifies an operation result for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case domain.IsClientError(err):
		return "rejected"
	default:
		return "error"
	}
}

// ObserveOperation counts one ledger operation.
func ObserveOperation(operation string, err error) {
	ledgerOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// NotificationFailed counts one dropped notification.
func NotificationFailed() {
	notificationFailures.Inc()
}

// ObserveHTTP records the latency of one HTTP request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveGRPC records the latency of one unary RPC.
func ObserveGRPC(method, code string, elapsed time.Duration) {
	grpcDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
