package popbal

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/popbal/balance"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	require.Equal(t, 3, cfg.Retries)
	require.Equal(t, 100, cfg.SampleSize)
	require.Equal(t, 1.0, cfg.WeightLimitFactor)
	require.Equal(t, uint64(0), cfg.Seed)
	require.Equal(t, 0.001, cfg.Convergence.Criterion)
	require.Equal(t, 1000, cfg.Convergence.MaxIterations)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		defaults := DefaultConfig()
		require.Equal(t, defaults.Workers, cfg.Workers)
		require.Equal(t, defaults.SampleSize, cfg.SampleSize)
		require.Equal(t, defaults.WeightLimitFactor, cfg.WeightLimitFactor)
		require.Equal(t, defaults.Convergence.Criterion, cfg.Convergence.Criterion)
		require.Equal(t, defaults.Convergence.MaxIterations, cfg.Convergence.MaxIterations)
	})

	t.Run("zero criterion selects the default", func(t *testing.T) {
		cfg := TestConfig()
		cfg.Convergence.Criterion = 0
		SetDefaults(&cfg)
		require.Equal(t, 0.001, cfg.Convergence.Criterion)

		cfg.Convergence.Dimensions = map[string]balance.Criteria{"sex": {}}
		require.Equal(t, 0.001, cfg.criteriaFor("sex").Criterion, "zero overrides inherit")
	})

	t.Run("zero retries is preserved", func(t *testing.T) {
		cfg := Config{Retries: 0}
		SetDefaults(&cfg)
		require.Equal(t, 0, cfg.Retries)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			Workers:           3,
			Retries:           7,
			SampleSize:        55,
			WeightLimitFactor: -1,
			Seed:              9,
			Convergence: ConvergenceConfig{
				Criterion:     0.05,
				MaxIterations: 12,
			},
		}
		want := cfg
		SetDefaults(&cfg)
		require.Equal(t, want, cfg)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := TestConfig()
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"retries", func(c *Config) { c.Retries = -1 }},
		{"sample size", func(c *Config) { c.SampleSize = 0 }},
		{"criterion", func(c *Config) { c.Convergence.Criterion = -0.1 }},
		{"max iterations", func(c *Config) { c.Convergence.MaxIterations = 0 }},
		{"dimension criterion", func(c *Config) {
			c.Convergence.Dimensions = map[string]balance.Criteria{"sex": {Criterion: -1}}
		}},
		{"dimension max iterations", func(c *Config) {
			c.Convergence.Dimensions = map[string]balance.Criteria{"sex": {MaxIterations: -5}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := TestConfig()
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_ValidateWithWarnings(t *testing.T) {
	t.Run("recommended config is quiet", func(t *testing.T) {
		logger := newCaptureLogger()
		cfg := DefaultConfig()
		cfg.Workers = 1
		cfg.ValidateWithWarnings(logger)
		require.Empty(t, logger.messages("warn"))
	})

	t.Run("warns on questionable values", func(t *testing.T) {
		logger := newCaptureLogger()
		cfg := DefaultConfig()
		cfg.Workers = 4*runtime.NumCPU() + 1
		cfg.SampleSize = 3
		cfg.WeightLimitFactor = -1
		cfg.ValidateWithWarnings(logger)
		require.Len(t, logger.messages("warn"), 3)
	})
}

func TestConfig_CriteriaFor(t *testing.T) {
	cfg := TestConfig()
	cfg.Convergence.Dimensions = map[string]balance.Criteria{
		"sex": {Criterion: 0.05},
		"age": {MaxIterations: 7},
	}

	require.Equal(t, balance.Criteria{Criterion: 0.05, MaxIterations: cfg.Convergence.MaxIterations}, cfg.criteriaFor("sex"))
	require.Equal(t, balance.Criteria{Criterion: cfg.Convergence.Criterion, MaxIterations: 7}, cfg.criteriaFor("age"))
	require.Equal(t, balance.Criteria{Criterion: cfg.Convergence.Criterion, MaxIterations: cfg.Convergence.MaxIterations}, cfg.criteriaFor("income"))

	all := cfg.criteria([]string{"sex", "income"})
	require.Len(t, all, 2)
	require.Equal(t, 0.05, all["sex"].Criterion)
}

const sampleYAML = `
workers: 4
retries: 0
sampleSize: 250
weightLimitFactor: 2.5
seed: 1234
convergence:
  criterion: 0.0001
  maxIterations: 500
  dimensions:
    household_size:
      criterion: 0.001
    workers:
      maxIterations: 50
`

func TestParseConfig(t *testing.T) {
	t.Run("parses all fields", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(sampleYAML))
		require.NoError(t, err)

		require.Equal(t, 4, cfg.Workers)
		require.Equal(t, 0, cfg.Retries)
		require.Equal(t, 250, cfg.SampleSize)
		require.Equal(t, 2.5, cfg.WeightLimitFactor)
		require.Equal(t, uint64(1234), cfg.Seed)
		require.Equal(t, 0.0001, cfg.Convergence.Criterion)
		require.Equal(t, 500, cfg.Convergence.MaxIterations)
		require.Equal(t, balance.Criteria{Criterion: 0.001}, cfg.Convergence.Dimensions["household_size"])
		require.Equal(t, balance.Criteria{MaxIterations: 50}, cfg.Convergence.Dimensions["workers"])
	})

	t.Run("applies defaults to partial config", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("retries: 2\n"))
		require.NoError(t, err)
		require.Equal(t, 2, cfg.Retries)
		require.Equal(t, DefaultConfig().SampleSize, cfg.SampleSize)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		_, err := ParseConfig([]byte("retries: -2\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("workers: [1, 2\n"))
		require.Error(t, err)
	})

	t.Run("round trips through yaml", func(t *testing.T) {
		cfg := TestConfig()
		data, err := yaml.Marshal(&cfg)
		require.NoError(t, err)

		parsed, err := ParseConfig(data)
		require.NoError(t, err)
		require.Equal(t, cfg, *parsed)
	})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popbal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 250, cfg.SampleSize)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
