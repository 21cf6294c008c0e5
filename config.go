package popbal

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/popbal/balance"
)

// ConvergenceConfig controls when balancing of a neighborhood stops.
type ConvergenceConfig struct {
	// Criterion is the largest convergence measure every category must reach
	// for its dimension to count as converged. For a category with a positive
	// target the measure is |value/target − 1|, so 0.001 means within 0.1%.
	//
	// Zero selects the default 0.001; it does not mean exact convergence. Use
	// a small positive value such as 1e-12 to balance until MaxIterations.
	Criterion float64 `yaml:"criterion"`

	// MaxIterations caps the counted weight-update sweeps per dimension.
	// A dimension that reaches the cap stops balancing without converging.
	MaxIterations int `yaml:"maxIterations"`

	// Dimensions overrides Criterion and MaxIterations per dimension.
	//
	// When non-empty it must name exactly the dimensions of the run's
	// classifiers; otherwise NewSynthesizer returns ErrDimensionMismatch.
	// Zero fields of an override inherit the global values.
	Dimensions map[string]balance.Criteria `yaml:"dimensions,omitempty"`
}

// Config is the configuration for the Synthesizer.
type Config struct {
	// Workers is the number of neighborhoods balanced concurrently.
	// Default: runtime.GOMAXPROCS(0).
	Workers int `yaml:"workers"`

	// Retries is the number of extra attempts a neighborhood gets when an
	// attempt does not converge; a neighborhood makes at most Retries+1
	// attempts and keeps the best-scored one.
	//
	// 0 is valid (a single attempt) and is not replaced by a default.
	Retries int `yaml:"retries"`

	// SampleSize is the representative sample size drawn per base element.
	SampleSize int `yaml:"sampleSize"`

	// WeightLimitFactor bounds every weight to WeightLimitFactor × the largest
	// target of its balancer. 0 selects the default; a negative value
	// disables clipping.
	WeightLimitFactor float64 `yaml:"weightLimitFactor"`

	// Seed is the run seed. Each neighborhood derives its own random stream
	// from Seed and its id, so a run is reproducible for a given Seed.
	Seed uint64 `yaml:"seed"`

	// Convergence controls stopping criteria.
	Convergence ConvergenceConfig `yaml:"convergence"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.GOMAXPROCS(0),
		Retries:           3,
		SampleSize:        100,
		WeightLimitFactor: 1.0,
		Seed:              0,
		Convergence: ConvergenceConfig{
			Criterion:     0.001,
			MaxIterations: 1000,
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.SampleSize == 0 {
		cfg.SampleSize = defaults.SampleSize
	}
	if cfg.WeightLimitFactor == 0 {
		cfg.WeightLimitFactor = defaults.WeightLimitFactor
	}
	if cfg.Convergence.Criterion == 0 {
		cfg.Convergence.Criterion = defaults.Convergence.Criterion
	}
	if cfg.Convergence.MaxIterations == 0 {
		cfg.Convergence.MaxIterations = defaults.Convergence.MaxIterations
	}
	// Note: Retries of 0 is valid (single attempt), so we don't apply default
	// Note: Seed of 0 is a valid seed
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Workers >= 1
//   - Retries >= 0
//   - SampleSize >= 1
//   - Convergence.Criterion >= 0 (globally and per dimension)
//   - Convergence.MaxIterations >= 1 (globally and per dimension, after inheritance)
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("%w: retries must be >= 0, got %d", ErrInvalidConfig, cfg.Retries)
	}
	if cfg.SampleSize < 1 {
		return fmt.Errorf("%w: sampleSize must be >= 1, got %d", ErrInvalidConfig, cfg.SampleSize)
	}
	if cfg.Convergence.Criterion < 0 {
		return fmt.Errorf("%w: convergence criterion must be >= 0, got %v", ErrInvalidConfig, cfg.Convergence.Criterion)
	}
	if cfg.Convergence.MaxIterations < 1 {
		return fmt.Errorf("%w: convergence maxIterations must be >= 1, got %d",
			ErrInvalidConfig, cfg.Convergence.MaxIterations)
	}

	for name, override := range cfg.Convergence.Dimensions {
		c := cfg.criteriaFor(name)
		if override.Criterion < 0 {
			return fmt.Errorf("%w: dimension %q criterion must be >= 0, got %v", ErrInvalidConfig, name, override.Criterion)
		}
		if c.MaxIterations < 1 {
			return fmt.Errorf("%w: dimension %q maxIterations must be >= 1, got %d", ErrInvalidConfig, name, c.MaxIterations)
		}
	}

	return nil
}

// ValidateWithWarnings logs warnings for valid but non-recommended values.
//
// This is called after Validate() in NewSynthesizer() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cpus := runtime.NumCPU(); cfg.Workers > 4*cpus {
		logger.Warn(
			"workers far exceed available CPUs, balancing is CPU-bound",
			"workers", cfg.Workers,
			"cpus", cpus,
		)
	}

	if cfg.WeightLimitFactor < 0 {
		logger.Warn("weight clipping disabled, poorly represented categories may produce runaway weights")
	}

	if cfg.SampleSize < 10 {
		logger.Warn(
			"sampleSize is very small, categories may be missing from samples",
			"sampleSize", cfg.SampleSize,
			"recommended", "10 or higher",
		)
	}
}

// TestConfig returns a configuration tuned for fast, deterministic tests.
//
// Returns:
//   - Config: Small samples, few workers, fixed seed
//
// Example:
//
//	cfg := popbal.TestConfig()
//	cfg.Retries = 0
//	synth, err := popbal.NewSynthesizer(&cfg, inputs)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Workers = 2
	cfg.Retries = 2
	cfg.SampleSize = 20
	cfg.Seed = 42
	cfg.Convergence.MaxIterations = 200

	return cfg
}

// ParseConfig parses a YAML configuration, applies defaults and validates it.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - *Config: Parsed configuration with defaults applied
//   - error: Parse or validation error
//
// Example:
//
//	cfg, err := popbal.ParseConfig([]byte(`
//	workers: 8
//	retries: 5
//	convergence:
//	  criterion: 0.0001
//	`))
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfig loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if file cannot be read, parsed or validated
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// criteriaFor returns the stopping criteria of one dimension, applying the
// per-dimension override on top of the global values.
func (cfg *Config) criteriaFor(dimension string) balance.Criteria {
	c := balance.Criteria{
		Criterion:     cfg.Convergence.Criterion,
		MaxIterations: cfg.Convergence.MaxIterations,
	}
	if o, ok := cfg.Convergence.Dimensions[dimension]; ok {
		if o.Criterion != 0 {
			c.Criterion = o.Criterion
		}
		if o.MaxIterations != 0 {
			c.MaxIterations = o.MaxIterations
		}
	}

	return c
}

// criteria returns the stopping criteria of every named dimension.
func (cfg *Config) criteria(dimensions []string) map[string]balance.Criteria {
	out := make(map[string]balance.Criteria, len(dimensions))
	for _, name := range dimensions {
		out[name] = cfg.criteriaFor(name)
	}

	return out
}
