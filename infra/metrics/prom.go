package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/slotplan/core/metrics"
)

// PromSink records search progress in Prometheus metrics.
type PromSink struct {
	iterations   prometheus.Counter
	moves        *prometheus.CounterVec
	improvements prometheus.Counter
	best         prometheus.Gauge
	current      prometheus.Gauge
	evaluation   prometheus.Histogram
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	estimates    *prometheus.CounterVec
	estimateTime prometheus.Histogram
}

// NewPromSink registers search metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.iterations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slotplan_search_iterations_total",
		Help: "Total number of tabu search iterations",
	})); err != nil {
		return nil, err
	}
	if s.moves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slotplan_search_moves_total",
		Help: "Neighbour candidates by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.improvements, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slotplan_search_improvements_total",
		Help: "Number of times the best schedule improved",
	})); err != nil {
		return nil, err
	}
	if s.best, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "slotplan_search_best_total_minutes",
		Help: "Total simulated time of the best schedule",
	})); err != nil {
		return nil, err
	}
	if s.current, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "slotplan_search_current_total_minutes",
		Help: "Total simulated time of the current schedule",
	})); err != nil {
		return nil, err
	}
	if s.evaluation, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slotplan_search_neighbourhood_seconds",
		Help:    "Time spent generating and scoring the neighbourhood of one iteration",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slotplan_search_runs_total",
		Help: "Completed searches",
	}, []string{"canceled"})); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slotplan_search_run_seconds",
		Help:    "Wall time of a complete search",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	})); err != nil {
		return nil, err
	}
	if s.estimates, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slotplan_simulator_estimates_total",
		Help: "Simulator estimates by truck segment",
	}, []string{"segment"})); err != nil {
		return nil, err
	}
	if s.estimateTime, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slotplan_simulator_estimate_seconds",
		Help:    "Time spent in one simulator estimate",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when an identical one
// exists, so several sinks may share a registerer.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordIteration updates the iteration counters and score gauges.
func (s *PromSink) RecordIteration(ev coremetrics.IterationEvent) error {
	s.iterations.Inc()
	if ev.Accepted {
		s.moves.WithLabelValues("accepted").Inc()
	}
	if ev.TabuHits > 0 {
		s.moves.WithLabelValues("tabu").Add(float64(ev.TabuHits))
	}
	if ev.Improved {
		s.improvements.Inc()
	}
	s.best.Set(ev.BestTotal)
	s.current.Set(ev.CurrentTotal)
	s.evaluation.Observe(ev.EvalTime.Seconds())
	return nil
}

// RecordRun counts the finished search.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	s.runs.WithLabelValues(strconv.FormatBool(sum.Canceled)).Inc()
	s.runDuration.Observe(sum.Duration.Seconds())
	s.best.Set(sum.BestTotal)
	return nil
}

// RecordEstimate counts a simulator estimate.
func (s *PromSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	s.estimates.WithLabelValues(ev.Segment).Inc()
	s.estimateTime.Observe(ev.Duration.Seconds())
	return nil
}
