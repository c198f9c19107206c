package password

import (
	"fmt"
	"runtime"
)

// Config configures Argon2id hashing.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Argon2Time is the number of iterations (default: 3).
	Argon2Time uint32 `mapstructure:"argon2_time"`

	// Argon2Memory is the memory usage in KiB (default: 65536 = 64MB).
	Argon2Memory uint32 `mapstructure:"argon2_memory"`

	// Argon2Threads is the parallelism (default: 4).
	Argon2Threads uint8 `mapstructure:"argon2_threads"`

	// MaxConcurrent bounds how many hashes run at once (default: NumCPU).
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Argon2Time == 0 {
		c.Argon2Time = 3
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = runtime.NumCPU()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Argon2Memory < 8*uint32(c.Argon2Threads) {
		return fmt.Errorf("argon2_memory must be at least 8*threads KiB (got: %d)", c.Argon2Memory)
	}
	if c.Argon2Memory > maxMemoryKiB {
		return fmt.Errorf("argon2_memory must not exceed %d KiB (got: %d)", maxMemoryKiB, c.Argon2Memory)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be >= 1 (got: %d)", c.MaxConcurrent)
	}
	return nil
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) *Hasher {
	cfg.ApplyDefaults()
	return NewArgon2Hasher(
		WithArgon2Time(cfg.Argon2Time),
		WithArgon2Memory(cfg.Argon2Memory),
		WithArgon2Threads(cfg.Argon2Threads),
		WithMaxConcurrent(cfg.MaxConcurrent),
	)
}
