// Package mission estimates the duration of a full truck mission: the road
// trip to the base, the time spent at the base and the trip back.
//
// The number of trucks already at the base is drawn per trial from the
// occupancy table row of the arrival hour, so the maneuvering delay follows
// the historical load.
package mission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/slotplan/core/logger"
	"github.com/kilianp07/slotplan/core/ratetable"
	"github.com/kilianp07/slotplan/core/simulator"
)

// ErrNoDeparture is returned when a mission has no departure time.
var ErrNoDeparture = errors.New("departure time is required")

const (
	dayEnd   = 23 * time.Hour
	dayStart = 8 * time.Hour
)

// BaseSampler draws a single time at base, in minutes.
type BaseSampler interface {
	Trial(r *rand.Rand, hour, trucks int, segment string) float64
}

// Request describes one mission.
type Request struct {
	Departure time.Time
	// DistanceKm is the road distance to the base.
	DistanceKm float64
	// ReturnKm is the distance driven after leaving the base. Zero means
	// the truck comes back the way it went.
	ReturnKm float64
	Segment  string
	Trials   int
}

// Result summarises the simulated missions.
type Result struct {
	Outbound  time.Duration `json:"outbound"`
	Return    time.Duration `json:"return"`
	ArrivalAt time.Time     `json:"arrival_at_base"`
	// MeanTrucks is the average number of trucks found at the base.
	MeanTrucks float64       `json:"mean_trucks"`
	P5         time.Duration `json:"p5"`
	P50        time.Duration `json:"p50"`
	P95        time.Duration `json:"p95"`
	Mean       time.Duration `json:"mean"`
	StdDev     time.Duration `json:"std_dev"`
	// EarliestEnd, MedianEnd and LatestEnd are the mission end times for the
	// P5, P50 and P95 durations after the overnight rollover.
	EarliestEnd time.Time `json:"earliest_end"`
	MedianEnd   time.Time `json:"median_end"`
	LatestEnd   time.Time `json:"latest_end"`
	Trials      int       `json:"trials"`
	Excluded    int       `json:"excluded"`
}

// Planner runs mission simulations.
type Planner struct {
	base      BaseSampler
	occupancy *ratetable.OccupancyTable
	travel    Travel
	rng       *rand.Rand
	log       logger.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithTravel overrides the road model.
func WithTravel(t Travel) Option {
	return func(p *Planner) { p.travel = t }
}

// WithLogger sets the planner logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// NewPlanner returns a planner. occupancy may be nil, in which case the base
// is always considered empty.
func NewPlanner(base BaseSampler, occupancy *ratetable.OccupancyTable, rng *rand.Rand, opts ...Option) (*Planner, error) {
	if base == nil {
		return nil, fmt.Errorf("mission: base sampler is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("mission: random source is required")
	}
	p := &Planner{base: base, occupancy: occupancy, travel: DefaultTravel(), rng: rng, log: logger.NopLogger{}}
	for _, o := range opts {
		o(p)
	}
	if err := p.travel.Validate(); err != nil {
		return nil, fmt.Errorf("mission: %w", err)
	}
	return p, nil
}

// Simulate runs req.Trials missions.
func (p *Planner) Simulate(ctx context.Context, req Request) (Result, error) {
	if req.Trials <= 0 {
		return Result{}, fmt.Errorf("trial count must be positive, got %d", req.Trials)
	}
	if req.DistanceKm < 0 || req.ReturnKm < 0 {
		return Result{}, fmt.Errorf("distances must not be negative")
	}
	if req.Departure.IsZero() {
		return Result{}, ErrNoDeparture
	}
	returnKm := req.ReturnKm
	if returnKm == 0 {
		returnKm = req.DistanceKm
	}
	res := Result{
		Outbound: p.travel.Duration(req.DistanceKm),
		Return:   p.travel.Duration(returnKm),
	}
	res.ArrivalAt = req.Departure.Add(res.Outbound)
	hour := res.ArrivalAt.Hour()
	occ, hasOcc := p.occupancy.Lookup(hour, ratetable.AllSegments)
	if !hasOcc {
		p.log.Warnf("no occupancy data for hour %d, assuming an empty base", hour)
	}

	road := (res.Outbound + res.Return).Minutes()
	totals := make([]float64, 0, req.Trials)
	var trucksSum float64
	for i := 0; i < req.Trials; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		trucks := 0
		if hasOcc {
			n := distuv.Normal{Mu: occ.Mean, Sigma: occ.StdDev, Src: p.rng}.Rand()
			trucks = max(0, int(n))
		}
		trucksSum += float64(trucks)
		total := road + p.base.Trial(p.rng, hour, trucks, req.Segment)
		if math.IsNaN(total) || math.IsInf(total, 0) {
			res.Excluded++
			continue
		}
		totals = append(totals, total)
	}
	if res.Excluded > 0 {
		p.log.Warnf("excluded %d of %d mission trials with a non-finite duration", res.Excluded, req.Trials)
	}
	if len(totals) == 0 {
		return Result{}, simulator.ErrNoValidTrials
	}
	res.Trials = len(totals)
	res.MeanTrucks = trucksSum / float64(req.Trials)

	mean, std := stat.PopMeanStdDev(totals, nil)
	res.Mean = minutes(mean)
	res.StdDev = minutes(std)
	res.P5 = minutes(simulator.Percentile(totals, 0.05))
	res.P50 = minutes(simulator.Percentile(totals, 0.50))
	res.P95 = minutes(simulator.Percentile(totals, 0.95))
	res.EarliestEnd = Rollover(res.ArrivalAt, req.Departure.Add(res.P5))
	res.MedianEnd = Rollover(res.ArrivalAt, req.Departure.Add(res.P50))
	res.LatestEnd = Rollover(res.ArrivalAt, req.Departure.Add(res.P95))
	return res, nil
}

// ParseDeparture parses "YYYY-MM-DD HH:MM" in loc.
func ParseDeparture(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrNoDeparture
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse departure %q: %w", s, err)
	}
	return t, nil
}

// Rollover moves an end time past 23:00 of the arrival day to the next
// morning: driving resumes at 08:00 and the overflow is added from there.
func Rollover(arrival, end time.Time) time.Time {
	y, m, d := arrival.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, arrival.Location())
	cutoff := day.Add(dayEnd)
	if !end.After(cutoff) {
		return end
	}
	return day.AddDate(0, 0, 1).Add(dayStart).Add(end.Sub(cutoff))
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute)).Round(time.Second)
}
