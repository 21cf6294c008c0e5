package kvreport

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/popbal/types"
)

// Config configures the report bucket.
type Config struct {
	// Bucket is the KV bucket name.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every report key.
	Prefix string `yaml:"prefix"`

	// TTL expires reports after this long. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl"`

	// History is the number of revisions kept per key (1-64).
	History uint8 `yaml:"history"`

	// Replicas is the bucket replication factor.
	Replicas int `yaml:"replicas"`

	// MemoryStorage keeps the bucket in memory instead of on disk.
	MemoryStorage bool `yaml:"memoryStorage"`

	// CreateRetries bounds bucket creation attempts.
	CreateRetries int `yaml:"createRetries"`
}

// DefaultConfig returns the default report bucket configuration.
func DefaultConfig() Config {
	return Config{
		Bucket:        "popbal-reports",
		Prefix:        "neighborhood",
		History:       1,
		Replicas:      1,
		CreateRetries: 3,
	}
}

// SetDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.Bucket == "" {
		c.Bucket = def.Bucket
	}
	if c.Prefix == "" {
		c.Prefix = def.Prefix
	}
	if c.History == 0 {
		c.History = def.History
	}
	if c.Replicas == 0 {
		c.Replicas = def.Replicas
	}
	if c.CreateRetries == 0 {
		c.CreateRetries = def.CreateRetries
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket name is required", types.ErrInvalidConfig)
	}
	if c.Prefix == "" {
		return fmt.Errorf("%w: key prefix is required", types.ErrInvalidConfig)
	}
	if c.History > 64 {
		return fmt.Errorf("%w: history must be at most 64, got %d", types.ErrInvalidConfig, c.History)
	}
	if c.TTL < 0 {
		return fmt.Errorf("%w: ttl must not be negative, got %s", types.ErrInvalidConfig, c.TTL)
	}

	return nil
}

func (c *Config) keyValueConfig() jetstream.KeyValueConfig {
	storage := jetstream.FileStorage
	if c.MemoryStorage {
		storage = jetstream.MemoryStorage
	}

	return jetstream.KeyValueConfig{
		Bucket:      c.Bucket,
		Description: "popbal neighborhood reports",
		History:     c.History,
		TTL:         c.TTL,
		Replicas:    c.Replicas,
		Storage:     storage,
	}
}
