package popbal

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/popbal/internal/logging"
	"github.com/arloliu/popbal/internal/metrics"
)

// NewSlogLogger adapts a *slog.Logger to Logger.
//
// Parameters:
//   - logger: slog logger; nil selects slog.Default()
//
// Returns:
//   - Logger: Adapter writing through logger
func NewSlogLogger(logger *slog.Logger) Logger {
	return logging.NewSlog(logger)
}

// NewPrometheusMetrics creates a MetricsCollector exporting Prometheus metrics.
//
// Metrics are registered with reg on first use.
//
// Parameters:
//   - reg: Registerer (e.g., prometheus.DefaultRegisterer)
//   - namespace: Metric namespace; empty selects "popbal"
//
// Returns:
//   - MetricsCollector: Prometheus-backed collector
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
