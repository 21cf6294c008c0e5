package popbal

import (
	"github.com/arloliu/popbal/discretize"
)

// Option configures a Synthesizer with optional dependencies.
type Option func(*synthOptions)

// synthOptions holds optional Synthesizer configuration.
type synthOptions struct {
	logger      Logger
	metrics     MetricsCollector
	discretizer discretize.Discretizer
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewSynthesizer
//
// Example:
//
//	synth, err := popbal.NewSynthesizer(&cfg, inputs,
//	    popbal.WithLogger(popbal.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(o *synthOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewSynthesizer
//
// Example:
//
//	metrics := popbal.NewPrometheusMetrics(prometheus.DefaultRegisterer, "synth")
//	synth, err := popbal.NewSynthesizer(&cfg, inputs, popbal.WithMetrics(metrics))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *synthOptions) {
		o.metrics = metrics
	}
}

// WithDiscretizer replaces the default stochastic discretizer.
//
// Parameters:
//   - d: Discretizer turning balanced weights into integer counts
//
// Returns:
//   - Option: Functional option for NewSynthesizer
func WithDiscretizer(d discretize.Discretizer) Option {
	return func(o *synthOptions) {
		o.discretizer = d
	}
}
