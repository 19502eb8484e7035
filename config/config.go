// Package config loads the slotplan configuration from a YAML or JSON file
// with environment overrides. Every section applies its defaults and is
// validated before any command runs.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/slotplan/core/metrics"
	"github.com/kilianp07/slotplan/core/simulator"
	"github.com/kilianp07/slotplan/core/tabu"
	"github.com/kilianp07/slotplan/infra/logger"
	"github.com/kilianp07/slotplan/infra/runstore"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. SLOTPLAN_SEARCH__MAX_ITERATIONS.
const EnvPrefix = "SLOTPLAN_"

type Config struct {
	Search      tabu.Config        `json:"search"`
	Simulation  simulator.Config   `json:"simulation"`
	Window      WindowConfig       `json:"window"`
	Inputs      InputsConfig       `json:"inputs"`
	Catalog     CatalogConfig      `json:"catalog"`
	Maneuvering *ManeuveringConfig `json:"maneuvering"`
	Mission     MissionConfig      `json:"mission"`
	Metrics     metrics.Config     `json:"metrics"`
	Store       runstore.Config    `json:"store"`
	Logging     logger.Config      `json:"logging"`
}

// Load reads the configuration at path. An empty path only applies
// defaults and environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Search.SetDefaults()
	c.Simulation.SetDefaults()
	c.Window.SetDefaults()
	c.Mission.SetDefaults()
	c.Store.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if _, err := c.Window.Build(); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	if _, err := c.BuildCatalog(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Mission.Validate(); err != nil {
		return fmt.Errorf("mission: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
