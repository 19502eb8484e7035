package delay

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Family is a probability distribution family used by a delay source.
type Family string

const (
	LogNormal   Family = "lognormal"
	Exponential Family = "exponential"
	Weibull     Family = "weibull"
)

// ParseFamily accepts the canonical names and the scipy spellings found in
// fitted parameter exports (lognorm, expon, weibull_min).
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lognormal", "lognorm":
		return LogNormal, nil
	case "exponential", "expon":
		return Exponential, nil
	case "weibull", "weibull_min":
		return Weibull, nil
	default:
		return "", fmt.Errorf("unknown distribution family %q", s)
	}
}

// Rule selects how a source is sampled by the simulator.
type Rule string

const (
	// RuleCatalog samples the source's own distribution.
	RuleCatalog Rule = ""
	// RuleManeuvering samples a lognormal whose scale depends on the number
	// of trucks at the base.
	RuleManeuvering Rule = "maneuvering"
	// RuleToolWait samples a normal distribution from the tool-wait table.
	RuleToolWait Rule = "tool_wait"
)

// Source is a named delay with its fitted distribution and the independent
// probability that it happens during a visit. Parameters follow the
// loc/scale convention: X = Loc + Scale*Y where Y is the standard variate.
type Source struct {
	Name        string  `json:"name"`
	Family      Family  `json:"family"`
	Shape       float64 `json:"shape"`
	Loc         float64 `json:"loc"`
	Scale       float64 `json:"scale"`
	Probability float64 `json:"probability"`
	Rule        Rule    `json:"rule"`
}

// Validate checks that the distribution is well defined.
func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("delay source name is required")
	}
	for _, v := range []float64{s.Shape, s.Loc, s.Scale, s.Probability} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: non-finite parameter", s.Name)
		}
	}
	if s.Probability < 0 || s.Probability > 1 {
		return fmt.Errorf("%s: activation probability %.3f outside [0,1]", s.Name, s.Probability)
	}
	if s.Scale <= 0 {
		return fmt.Errorf("%s: scale must be positive, got %.3f", s.Name, s.Scale)
	}
	switch s.Family {
	case LogNormal, Weibull:
		if s.Shape <= 0 {
			return fmt.Errorf("%s: shape must be positive, got %.3f", s.Name, s.Shape)
		}
	case Exponential:
	default:
		return fmt.Errorf("%s: unknown distribution family %q", s.Name, s.Family)
	}
	switch s.Rule {
	case RuleCatalog, RuleManeuvering, RuleToolWait:
	default:
		return fmt.Errorf("%s: unknown sampling rule %q", s.Name, s.Rule)
	}
	return nil
}

// Sample draws one value in minutes.
func (s Source) Sample(src rand.Source) float64 {
	switch s.Family {
	case LogNormal:
		return s.Loc + distuv.LogNormal{Mu: math.Log(s.Scale), Sigma: s.Shape, Src: src}.Rand()
	case Exponential:
		return s.Loc + distuv.Exponential{Rate: 1 / s.Scale, Src: src}.Rand()
	case Weibull:
		return s.Loc + distuv.Weibull{K: s.Shape, Lambda: s.Scale, Src: src}.Rand()
	default:
		return 0
	}
}

// Median returns the analytic median of the source distribution.
func (s Source) Median() float64 {
	switch s.Family {
	case LogNormal:
		return s.Loc + s.Scale
	case Exponential:
		return s.Loc + s.Scale*math.Ln2
	case Weibull:
		return s.Loc + s.Scale*math.Pow(math.Ln2, 1/s.Shape)
	default:
		return 0
	}
}
