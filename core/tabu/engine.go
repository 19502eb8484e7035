package tabu

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/kilianp07/slotplan/core/logger"
	"github.com/kilianp07/slotplan/core/metrics"
	"github.com/kilianp07/slotplan/core/model"
)

// Objective scores a schedule. *evaluator.Evaluator satisfies it.
type Objective interface {
	Evaluate(ctx context.Context, s model.Schedule) (model.Score, error)
}

// Result is the outcome of a search.
type Result struct {
	Best      model.Schedule
	BestScore model.Score
	// Iterations is the number of completed iterations.
	Iterations int
	// Accepted counts iterations where a non-tabu neighbour was accepted.
	Accepted int
	// TabuHits counts candidates skipped because they were in memory.
	TabuHits int
	Duration time.Duration
}

// Engine runs tabu searches. An Engine owns its random source and must not
// run two searches concurrently.
type Engine struct {
	cfg    Config
	obj    Objective
	window model.Window
	rng    *rand.Rand
	sink   metrics.SearchSink
	log    logger.Logger
	runID  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink records iterations and the run summary on s.
func WithSink(s metrics.SearchSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRunID tags recorded events with id.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// NewEngine validates cfg and returns an engine. When rng is nil a PCG
// source seeded from cfg.Seed is used.
func NewEngine(cfg Config, obj Objective, window model.Window, rng *rand.Rand, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("tabu: objective is required")
	}
	if window.Len() == 0 {
		return nil, model.ErrEmptyWindow
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(cfg.Seed, 1))
	}
	e := &Engine{
		cfg:    cfg,
		obj:    obj,
		window: window,
		rng:    rng,
		sink:   metrics.NopSink{},
		log:    logger.NopLogger{},
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

type candidate struct {
	schedule model.Schedule
	score    model.Score
}

// Search optimises the assignment of trucks over the engine window. On
// cancellation the best schedule found so far is returned together with
// ctx.Err().
func (e *Engine) Search(ctx context.Context, trucks []model.Truck) (Result, error) {
	if err := model.ValidateTrucks(trucks); err != nil {
		return Result{}, err
	}
	started := time.Now()

	current, err := model.NewRandomSchedule(trucks, e.window, e.rng)
	if err != nil {
		return Result{}, err
	}
	currentScore, err := e.obj.Evaluate(ctx, current)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate solution zero: %w", err)
	}
	res := Result{Best: current, BestScore: currentScore}
	memory := NewMemory(e.cfg.TabuTenure)
	e.log.Infof("tabu search %s: %d trucks over %d segments, solution zero %.2f min", e.runID, len(trucks), e.window.Len(), currentScore.Total)

	var searchErr error
	for it := 0; it < e.cfg.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			searchErr = err
			break
		}
		evalStart := time.Now()
		hood, err := e.neighbourhood(ctx, current)
		if err != nil {
			searchErr = fmt.Errorf("iteration %d: %w", it, err)
			break
		}
		ev := metrics.IterationEvent{
			RunID:      e.runID,
			Iteration:  it,
			Candidates: len(hood),
			EvalTime:   time.Since(evalStart),
		}
		for _, c := range hood {
			if memory.Contains(c.schedule) {
				ev.TabuHits++
				continue
			}
			current, currentScore = c.schedule, c.score
			ev.Accepted = true
			if currentScore.Better(res.BestScore) {
				res.Best, res.BestScore = current, currentScore
				ev.Improved = true
				e.log.Debugf("iteration %d: new best %.2f min, finish %s", it, currentScore.Total, currentScore.Finish)
			}
			memory.Add(current)
			break
		}
		res.Iterations++
		res.TabuHits += ev.TabuHits
		if ev.Accepted {
			res.Accepted++
		}
		ev.CurrentTotal = currentScore.Total
		ev.BestTotal = res.BestScore.Total
		ev.BestFinish = res.BestScore.Finish.Start
		ev.Time = time.Now()
		if err := e.sink.RecordIteration(ev); err != nil {
			e.log.Warnf("record iteration %d: %v", it, err)
		}
	}
	res.Duration = time.Since(started)

	sum := metrics.RunSummary{
		RunID:      e.runID,
		Trucks:     len(trucks),
		Segments:   e.window.Len(),
		Iterations: res.Iterations,
		Accepted:   res.Accepted,
		TabuHits:   res.TabuHits,
		BestTotal:  res.BestScore.Total,
		BestFinish: res.BestScore.Finish.Start,
		Duration:   res.Duration,
		Canceled:   searchErr != nil && ctx.Err() != nil,
		Time:       time.Now(),
	}
	if err := e.sink.RecordRun(sum); err != nil {
		e.log.Warnf("record run: %v", err)
	}
	if searchErr != nil {
		e.log.Warnf("tabu search %s stopped after %d iterations: %v", e.runID, res.Iterations, searchErr)
		return res, searchErr
	}
	e.log.Infof("tabu search %s done: best %.2f min, finish %s, %d accepted, %d tabu hits",
		e.runID, res.BestScore.Total, res.BestScore.Finish, res.Accepted, res.TabuHits)
	return res, nil
}

// neighbourhood draws and scores the configured number of neighbours,
// ordered best first.
func (e *Engine) neighbourhood(ctx context.Context, current model.Schedule) ([]candidate, error) {
	hood := make([]candidate, 0, e.cfg.NeighborsPerIteration)
	for i := 0; i < e.cfg.NeighborsPerIteration; i++ {
		n, _ := current.Neighbor(e.window.Len(), e.rng)
		sc, err := e.obj.Evaluate(ctx, n)
		if err != nil {
			return nil, err
		}
		hood = append(hood, candidate{schedule: n, score: sc})
	}
	sort.SliceStable(hood, func(i, j int) bool { return hood[i].score.Better(hood[j].score) })
	return hood, nil
}
