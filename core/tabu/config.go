package tabu

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid search config")

// Config holds the search parameters.
type Config struct {
	MaxIterations int `json:"max_iterations"`
	TabuTenure    int `json:"tabu_tenure"`
	// NeighborsPerIteration is the neighbourhood size drawn at every
	// iteration.
	NeighborsPerIteration int `json:"neighbors_per_iteration"`
	// Seed feeds the random source used for solution zero and neighbour
	// generation.
	Seed uint64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 1000
	}
	if c.TabuTenure == 0 {
		c.TabuTenure = 50
	}
	if c.NeighborsPerIteration == 0 {
		c.NeighborsPerIteration = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.TabuTenure <= 0 {
		return fmt.Errorf("%w: tabu_tenure must be positive, got %d", ErrInvalidConfig, c.TabuTenure)
	}
	if c.NeighborsPerIteration <= 0 {
		return fmt.Errorf("%w: neighbors_per_iteration must be positive, got %d", ErrInvalidConfig, c.NeighborsPerIteration)
	}
	return nil
}
