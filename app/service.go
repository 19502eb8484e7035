// Package app wires configuration, inputs and the core packages into the
// operations exposed by the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/slotplan/config"
	"github.com/kilianp07/slotplan/core/delay"
	"github.com/kilianp07/slotplan/core/evaluator"
	coremetrics "github.com/kilianp07/slotplan/core/metrics"
	"github.com/kilianp07/slotplan/core/mission"
	"github.com/kilianp07/slotplan/core/model"
	"github.com/kilianp07/slotplan/core/ratetable"
	"github.com/kilianp07/slotplan/core/simulator"
	"github.com/kilianp07/slotplan/core/tabu"
	"github.com/kilianp07/slotplan/infra/dataset"
	"github.com/kilianp07/slotplan/infra/logger"
	"github.com/kilianp07/slotplan/infra/metrics"
	"github.com/kilianp07/slotplan/infra/runstore"
)

// Service holds the validated configuration and the loaded inputs.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	window    model.Window
	catalog   *delay.Catalog
	occupancy *ratetable.OccupancyTable
	tools     *ratetable.ToolWaitTable
	sink      coremetrics.SearchSink
	store     runstore.Store
}

// New creates a Service from the configuration. Rate tables are loaded
// when their paths are configured; a missing table makes every lookup miss.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	window, err := cfg.Window.Build()
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	svc := &Service{cfg: cfg, log: logg, window: window, catalog: catalog}
	if p := cfg.Inputs.Occupancy; p != "" {
		if svc.occupancy, err = dataset.LoadOccupancy(p); err != nil {
			return nil, fmt.Errorf("occupancy table: %w", err)
		}
	}
	if p := cfg.Inputs.ToolWait; p != "" {
		if svc.tools, err = dataset.LoadToolWait(p); err != nil {
			return nil, fmt.Errorf("tool-wait table: %w", err)
		}
	} else {
		logg.Warnf("no tool-wait table configured, tool waiting will be zero")
	}
	if svc.sink, err = coremetrics.NewSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if svc.store, err = runstore.New(cfg.Store); err != nil {
		return nil, fmt.Errorf("run store: %w", err)
	}
	return svc, nil
}

// Window returns the configured operating window.
func (s *Service) Window() model.Window { return s.window }

// Catalog returns the delay catalog in use.
func (s *Service) Catalog() *delay.Catalog { return s.catalog }

// LoadTrucks reads the configured truck list, or path when not empty.
func (s *Service) LoadTrucks(path string) ([]model.Truck, error) {
	if path == "" {
		path = s.cfg.Inputs.Trucks
	}
	if path == "" {
		return nil, errors.New("no truck list configured (inputs.trucks)")
	}
	return dataset.LoadTrucks(path)
}

// seed returns the configured seed, or a time based one when unset.
func (s *Service) seed() uint64 {
	if s.cfg.Search.Seed != 0 {
		return s.cfg.Search.Seed
	}
	return uint64(time.Now().UnixNano())
}

func (s *Service) simulator(seed uint64) (*simulator.Simulator, error) {
	return simulator.New(s.catalog, s.tools, rand.New(rand.NewPCG(seed, 2)),
		simulator.WithConfig(s.cfg.Simulation),
		simulator.WithLogger(logger.New("simulator")))
}

// Outcome is the result of one optimisation run.
type Outcome struct {
	RunID       string
	Seed        uint64
	StartedAt   time.Time
	Result      tabu.Result
	Assignments []model.Assignment
}

// Optimize searches the best schedule for trucks and records the run. On
// cancellation the best schedule found so far is returned with the context
// error.
func (s *Service) Optimize(ctx context.Context, trucks []model.Truck) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString(), Seed: s.seed(), StartedAt: time.Now()}
	sim, err := s.simulator(out.Seed)
	if err != nil {
		return out, err
	}
	ev, err := evaluator.New(sim, s.window, s.cfg.Simulation.TrialCount)
	if err != nil {
		return out, err
	}
	searchCfg := s.cfg.Search
	searchCfg.Seed = out.Seed
	engine, err := tabu.NewEngine(searchCfg, ev, s.window, nil,
		tabu.WithSink(s.sink),
		tabu.WithLogger(logger.New("tabu")),
		tabu.WithRunID(out.RunID))
	if err != nil {
		return out, err
	}
	s.log.Infof("run %s: seed %d, %d trucks, %d trials per estimate", out.RunID, out.Seed, len(trucks), s.cfg.Simulation.TrialCount)

	res, searchErr := engine.Search(ctx, trucks)
	out.Result = res
	if res.Best.Len() == 0 {
		return out, searchErr
	}
	out.Assignments = res.Best.Assignments(s.window)

	rec := runstore.RunRecord{
		ID:            out.RunID,
		StartedAt:     out.StartedAt,
		DurationSec:   res.Duration.Seconds(),
		Trucks:        len(trucks),
		Segments:      s.window.Len(),
		MaxIterations: searchCfg.MaxIterations,
		TabuTenure:    searchCfg.TabuTenure,
		TrialCount:    s.cfg.Simulation.TrialCount,
		Seed:          out.Seed,
		Iterations:    res.Iterations,
		Accepted:      res.Accepted,
		TabuHits:      res.TabuHits,
		BestTotal:     res.BestScore.Total,
		Finish:        res.BestScore.Finish.String(),
		Canceled:      searchErr != nil,
		Assignments:   out.Assignments,
	}
	// The record is kept even when the search was interrupted.
	if err := s.store.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Errorf("store run %s: %v", out.RunID, err)
	}
	return out, searchErr
}

// Estimate runs one simulator estimate and records it on sinks supporting
// estimate events.
func (s *Service) Estimate(ctx context.Context, hour, trucks int, segment string, trials int) (simulator.Estimate, error) {
	if trials <= 0 {
		trials = s.cfg.Simulation.TrialCount
	}
	sim, err := s.simulator(s.seed())
	if err != nil {
		return simulator.Estimate{}, err
	}
	start := time.Now()
	est, err := sim.Estimate(ctx, hour, trucks, segment, trials)
	if err != nil {
		return simulator.Estimate{}, err
	}
	if rec, ok := s.sink.(coremetrics.EstimateRecorder); ok {
		ev := coremetrics.EstimateEvent{
			Hour:     hour,
			Trucks:   trucks,
			Segment:  segment,
			Trials:   est.Trials,
			Excluded: est.Excluded,
			Median:   est.Median,
			StdDev:   est.StdDev,
			Duration: time.Since(start),
		}
		if err := rec.RecordEstimate(ev); err != nil {
			s.log.Warnf("record estimate: %v", err)
		}
	}
	return est, nil
}

// Mission simulates a full mission. A zero trial count uses the configured
// default.
func (s *Service) Mission(ctx context.Context, req mission.Request) (mission.Result, error) {
	if req.Trials <= 0 {
		req.Trials = s.cfg.Mission.Trials
	}
	seed := s.seed()
	sim, err := s.simulator(seed)
	if err != nil {
		return mission.Result{}, err
	}
	p, err := mission.NewPlanner(sim, s.occupancy, rand.New(rand.NewPCG(seed, 3)),
		mission.WithTravel(s.cfg.Mission.Travel()),
		mission.WithLogger(logger.New("mission")))
	if err != nil {
		return mission.Result{}, err
	}
	return p.Simulate(ctx, req)
}

// Runs lists stored runs.
func (s *Service) Runs(ctx context.Context, q runstore.Query) ([]runstore.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// ServeMetrics exposes Prometheus metrics until ctx is done when
// metrics.listen_addr is set.
func (s *Service) ServeMetrics(ctx context.Context) {
	addr := s.cfg.Metrics.ListenAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}
