// Package delay holds the registry of named delay sources observed at the
// base, each bound to a fitted distribution and an activation probability.
package delay

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog is an immutable, validated list of delay sources plus the
// load-dependent maneuvering model. Source order is preserved because the
// simulator consumes random numbers in catalog order.
type Catalog struct {
	sources     []Source
	maneuvering Maneuvering
}

// NewCatalog validates sources and the maneuvering model. Source names must
// be unique; a source without an explicit rule gets one inferred from its
// name.
func NewCatalog(sources []Source, m Maneuvering) (*Catalog, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, len(sources))
	for i, s := range sources {
		if s.Rule == RuleCatalog {
			s.Rule = InferRule(s.Name)
		}
		if s.Family != "" {
			f, err := ParseFamily(string(s.Family))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name, err)
			}
			s.Family = f
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		k := strings.ToLower(s.Name)
		if _, ok := seen[k]; ok {
			return nil, fmt.Errorf("duplicate delay source %q", s.Name)
		}
		seen[k] = struct{}{}
		out[i] = s
	}
	return &Catalog{sources: out, maneuvering: m}, nil
}

// InferRule maps the historical source names to their special sampling
// rules.
func InferRule(name string) Rule {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "base maneuvering time":
		return RuleManeuvering
	case "tool waiting":
		return RuleToolWait
	default:
		return RuleCatalog
	}
}

// DefaultSources returns the delay sources fitted on the historical logs.
func DefaultSources() []Source {
	return []Source{
		{Name: "Base maneuvering time", Family: LogNormal, Shape: 0.77, Scale: 5.76, Probability: 1.00, Rule: RuleManeuvering},
		{Name: "Load/unloading time", Family: Exponential, Loc: 1.00, Scale: 10.91, Probability: 1.00},
		{Name: "Tool waiting", Family: Weibull, Shape: 0.94, Scale: 28.28, Probability: 0.22, Rule: RuleToolWait},
		{Name: "Load securement", Family: LogNormal, Shape: 0.71, Scale: 9.73, Probability: 1.00},
		{Name: "Crane waiting", Family: Weibull, Shape: 0.79, Scale: 91.62, Probability: 0.14},
		{Name: "Lift truck wait time", Family: LogNormal, Shape: 0.94, Scale: 14.81, Probability: 0.24},
		{Name: "Administrative papers/authorisations", Family: Weibull, Shape: 1.51, Scale: 20.89, Probability: 0.28},
		{Name: "Service planification delays", Family: LogNormal, Shape: 1.03, Scale: 18.83, Probability: 0.12},
		{Name: "Coordination SEG - drivers", Family: LogNormal, Shape: 0.56, Scale: 33.21, Probability: 0.09},
		{Name: "Other delays", Family: Weibull, Shape: 1.82, Scale: 26.23, Probability: 0.09},
	}
}

// Default returns the catalog built from DefaultSources and
// DefaultManeuvering.
func Default() *Catalog {
	c, err := NewCatalog(DefaultSources(), DefaultManeuvering())
	if err != nil {
		panic(err)
	}
	return c
}

// Sources returns a copy of the catalog entries in sampling order.
func (c *Catalog) Sources() []Source { return slices.Clone(c.sources) }

// Len returns the number of sources.
func (c *Catalog) Len() int { return len(c.sources) }

// Source returns the i-th source.
func (c *Catalog) Source(i int) Source { return c.sources[i] }

// Maneuvering returns the load-dependent maneuvering model.
func (c *Catalog) Maneuvering() Maneuvering { return c.maneuvering }

// WithProbability returns a copy of the catalog where every source is
// activated with probability p.
func (c *Catalog) WithProbability(p float64) (*Catalog, error) {
	sources := c.Sources()
	for i := range sources {
		sources[i].Probability = p
	}
	return NewCatalog(sources, c.maneuvering)
}

// Only returns a copy of the catalog where the named source always fires
// and every other source is disabled.
func (c *Catalog) Only(name string) (*Catalog, error) {
	sources := c.Sources()
	found := false
	for i := range sources {
		if strings.EqualFold(sources[i].Name, name) {
			sources[i].Probability = 1
			found = true
		} else {
			sources[i].Probability = 0
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown delay source %q", name)
	}
	return NewCatalog(sources, c.maneuvering)
}
