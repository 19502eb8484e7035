package simulator

import (
	"fmt"
	"runtime"
)

// Config controls the Monte Carlo estimator.
type Config struct {
	// TrialCount is the number of trials per estimate.
	TrialCount int `json:"trial_count"`
	// Workers bounds the goroutines sampling trials. Zero uses GOMAXPROCS.
	Workers int `json:"workers"`
	// ChunkSize is the number of trials drawn from one derived random
	// stream. It fixes the stream layout so results do not depend on
	// Workers.
	ChunkSize int `json:"chunk_size"`
	// ClampNegative floors every trial total at zero.
	ClampNegative bool `json:"clamp_negative"`
	// CommonRandomNumbers replays the same random streams on every
	// estimate, so two estimates differ only through their inputs.
	CommonRandomNumbers bool `json:"common_random_numbers"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TrialCount == 0 {
		c.TrialCount = 10000
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 1024
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.TrialCount <= 0 {
		return fmt.Errorf("trial_count must be positive, got %d", c.TrialCount)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	return nil
}
