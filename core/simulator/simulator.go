// Package simulator estimates the time a truck spends at the base by Monte
// Carlo simulation of the delay catalog.
//
// Each trial walks the catalog in order and activates every source through
// an independent Bernoulli draw. Two sources use special rules: base
// maneuvering depends on the number of trucks present and tool waiting is
// drawn from the hourly tool-wait table (zero when the table has no row).
// The estimator reports the median and population standard deviation of the
// per-trial totals, in minutes.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/slotplan/core/delay"
	"github.com/kilianp07/slotplan/core/logger"
	"github.com/kilianp07/slotplan/core/ratetable"
)

// ErrNoValidTrials is returned when every trial produced a non-finite total.
var ErrNoValidTrials = errors.New("simulation produced no finite trial")

// Estimate summarises the per-trial totals of one simulation.
type Estimate struct {
	Median float64 `json:"median_minutes"`
	StdDev float64 `json:"std_dev_minutes"`
	// Trials is the number of trials kept in the statistics.
	Trials int `json:"trials"`
	// Excluded counts trials dropped because their total was not finite.
	Excluded int `json:"excluded"`
}

// Simulator draws base-time trials. It is safe for concurrent use; the
// seeded source is only touched to derive per-chunk streams.
type Simulator struct {
	catalog *delay.Catalog
	tools   *ratetable.ToolWaitTable
	cfg     Config
	log     logger.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	common [][2]uint64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithConfig overrides the estimator settings.
func WithConfig(cfg Config) Option {
	return func(s *Simulator) { s.cfg = cfg }
}

// WithLogger sets the logger used for warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a simulator. tools may be nil, in which case tool waiting
// always contributes zero.
func New(catalog *delay.Catalog, tools *ratetable.ToolWaitTable, rng *rand.Rand, opts ...Option) (*Simulator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("simulator: catalog is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("simulator: random source is required")
	}
	s := &Simulator{catalog: catalog, tools: tools, rng: rng, log: logger.NopLogger{}}
	for _, o := range opts {
		o(s)
	}
	s.cfg.SetDefaults()
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.cfg }

// visit holds the per-estimate parameters resolved once for all trials.
type visit struct {
	hour     int
	trucks   int
	segment  string
	toolWait ratetable.ToolWaitEntry
	hasTool  bool
}

func (s *Simulator) resolve(hour, trucks int, segment string) visit {
	tw, ok := s.tools.Lookup(hour, segment)
	return visit{hour: hour, trucks: trucks, segment: segment, toolWait: tw, hasTool: ok}
}

// trial draws one total time at base in minutes.
func (s *Simulator) trial(r *rand.Rand, v visit) float64 {
	var total float64
	for i := 0; i < s.catalog.Len(); i++ {
		src := s.catalog.Source(i)
		if r.Float64() >= src.Probability {
			continue
		}
		switch src.Rule {
		case delay.RuleManeuvering:
			total += s.catalog.Maneuvering().Sample(v.trucks, r)
		case delay.RuleToolWait:
			if v.hasTool {
				total += distuv.Normal{Mu: v.toolWait.Mean, Sigma: v.toolWait.StdDev, Src: r}.Rand()
			}
		default:
			total += src.Sample(r)
		}
	}
	if s.cfg.ClampNegative && total < 0 {
		total = 0
	}
	return total
}

// Trial draws a single total using r. It is used by callers that drive
// their own trial loop, such as mission simulations.
func (s *Simulator) Trial(r *rand.Rand, hour, trucks int, segment string) float64 {
	return s.trial(r, s.resolve(hour, trucks, segment))
}

// Estimate runs trials independent trials for a truck arriving at hour with
// trucks present at the base and returns the median and population standard
// deviation of the totals.
func (s *Simulator) Estimate(ctx context.Context, hour, trucks int, segment string, trials int) (Estimate, error) {
	if trials <= 0 {
		return Estimate{}, fmt.Errorf("trial count must be positive, got %d", trials)
	}
	v := s.resolve(hour, trucks, segment)
	totals := make([]float64, trials)

	chunks := (trials + s.cfg.ChunkSize - 1) / s.cfg.ChunkSize
	seeds := s.chunkSeeds(chunks)

	run := func(c int) {
		r := rand.New(rand.NewPCG(seeds[c][0], seeds[c][1]))
		lo := c * s.cfg.ChunkSize
		hi := min(lo+s.cfg.ChunkSize, trials)
		for i := lo; i < hi; i++ {
			totals[i] = s.trial(r, v)
		}
	}

	if chunks == 1 || s.cfg.Workers == 1 {
		for c := 0; c < chunks; c++ {
			if err := ctx.Err(); err != nil {
				return Estimate{}, err
			}
			run(c)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for c := 0; c < chunks; c++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				run(c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Estimate{}, err
		}
	}
	return s.summarise(totals, v)
}

// chunkSeeds derives one PCG seed pair per chunk from the simulator source.
func (s *Simulator) chunkSeeds(n int) [][2]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.CommonRandomNumbers {
		for len(s.common) < n {
			s.common = append(s.common, [2]uint64{s.rng.Uint64(), s.rng.Uint64()})
		}
		return s.common[:n:n]
	}
	seeds := make([][2]uint64, n)
	for i := range seeds {
		seeds[i] = [2]uint64{s.rng.Uint64(), s.rng.Uint64()}
	}
	return seeds
}

func (s *Simulator) summarise(totals []float64, v visit) (Estimate, error) {
	kept := totals[:0]
	for _, t := range totals {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			continue
		}
		kept = append(kept, t)
	}
	excluded := len(totals) - len(kept)
	if excluded > 0 {
		s.log.Warnf("excluded %d non-finite trials (hour=%d trucks=%d segment=%s)", excluded, v.hour, v.trucks, v.segment)
	}
	if len(kept) == 0 {
		return Estimate{Excluded: excluded}, ErrNoValidTrials
	}
	return Estimate{
		Median:   Percentile(kept, 0.5),
		StdDev:   stat.PopStdDev(kept, nil),
		Trials:   len(kept),
		Excluded: excluded,
	}, nil
}

// Percentile sorts xs in place and returns its empirical p-quantile: the
// smallest sample covering at least a fraction p of the data.
func Percentile(xs []float64, p float64) float64 {
	if !sort.Float64sAreSorted(xs) {
		sort.Float64s(xs)
	}
	return stat.Quantile(p, stat.Empirical, xs, nil)
}
