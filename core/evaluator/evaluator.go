// Package evaluator turns a schedule into its objective score by running the
// base-time simulator for every truck, segment by segment, while modelling
// congestion spillover: a truck whose processing time runs past later
// segment starts raises the occupancy seen by trucks in those segments.
package evaluator

import (
	"context"
	"fmt"

	"github.com/kilianp07/slotplan/core/model"
	"github.com/kilianp07/slotplan/core/simulator"
)

// Estimator is the part of the simulator used by the evaluator.
type Estimator interface {
	Estimate(ctx context.Context, hour, trucks int, segment string, trials int) (simulator.Estimate, error)
}

// Evaluator scores schedules over a fixed window.
type Evaluator struct {
	sim    Estimator
	window model.Window
	trials int
}

// New returns an evaluator running trials simulations per truck.
func New(sim Estimator, window model.Window, trials int) (*Evaluator, error) {
	if sim == nil {
		return nil, fmt.Errorf("evaluator: estimator is required")
	}
	if window.Len() == 0 {
		return nil, model.ErrEmptyWindow
	}
	if trials <= 0 {
		return nil, fmt.Errorf("evaluator: trial count must be positive, got %d", trials)
	}
	return &Evaluator{sim: sim, window: window, trials: trials}, nil
}

// Window returns the segments the evaluator works on.
func (e *Evaluator) Window() model.Window { return e.window }

// Evaluation is the detailed outcome of one evaluation pass.
type Evaluation struct {
	Score model.Score
	// Processing holds the simulated minutes of each truck, in schedule
	// order.
	Processing []float64
	// Occupancy is the per-segment tally at the end of the pass, including
	// spillover.
	Occupancy []int
}

// Evaluate returns the score of s.
func (e *Evaluator) Evaluate(ctx context.Context, s model.Schedule) (model.Score, error) {
	ev, err := e.Run(ctx, s)
	if err != nil {
		return model.Score{}, err
	}
	return ev.Score, nil
}

// Run evaluates s and keeps per-truck details. The occupancy tally is local
// to the call and s is never modified.
func (e *Evaluator) Run(ctx context.Context, s model.Schedule) (Evaluation, error) {
	n := e.window.Len()
	occupancy := s.Counts(n)
	groups := s.BySegment(n)
	res := Evaluation{Processing: make([]float64, s.Len())}

	for idx := 0; idx < n; idx++ {
		seg := e.window.Segment(idx)
		for _, ti := range groups[idx] {
			truck := s.Truck(ti)
			est, err := e.sim.Estimate(ctx, seg.Hour(), occupancy[idx], truck.Segment, e.trials)
			if err != nil {
				return Evaluation{}, fmt.Errorf("truck %s at %s: %w", truck.ID, seg, err)
			}
			processing := est.Median
			res.Processing[ti] = processing
			res.Score.Total += processing
			e.spill(occupancy, seg, processing)
			res.Score.Finish = seg
		}
	}
	res.Occupancy = occupancy
	return res, nil
}

// spill increments every later segment whose start falls in
// (seg.Start, seg.Start+processing].
func (e *Evaluator) spill(occupancy []int, seg model.TimeSegment, processing float64) {
	limit := float64(seg.Start) + processing
	for j := seg.Index + 1; j < e.window.Len(); j++ {
		start := e.window.Segment(j).Start
		if float64(start) > limit {
			break
		}
		occupancy[j]++
	}
}
