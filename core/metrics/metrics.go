package metrics

import (
	"errors"
	"time"
)

// IterationEvent describes one tabu search iteration.
type IterationEvent struct {
	RunID     string
	Iteration int
	// Candidates is the number of neighbours evaluated this iteration.
	Candidates int
	// Accepted is true when a non-tabu neighbour became the current schedule.
	Accepted bool
	// TabuHits counts candidates rejected because they were in memory.
	TabuHits int
	// Improved is true when the best schedule changed.
	Improved     bool
	CurrentTotal float64
	BestTotal    float64
	// BestFinish is the start minute of the best schedule's last segment.
	BestFinish int
	EvalTime   time.Duration
	Time       time.Time
}

// RunSummary is recorded once a search terminates.
type RunSummary struct {
	RunID      string
	Trucks     int
	Segments   int
	Iterations int
	Accepted   int
	TabuHits   int
	BestTotal  float64
	BestFinish int
	Duration   time.Duration
	Canceled   bool
	Time       time.Time
}

// SearchSink records search progress for observability purposes.
type SearchSink interface {
	RecordIteration(ev IterationEvent) error
	RecordRun(sum RunSummary) error
}

// EstimateEvent captures one simulator estimate.
type EstimateEvent struct {
	Hour     int
	Trucks   int
	Segment  string
	Trials   int
	Excluded int
	Median   float64
	StdDev   float64
	Duration time.Duration
}

// EstimateRecorder is implemented by sinks able to record simulator
// estimates.
type EstimateRecorder interface {
	RecordEstimate(ev EstimateEvent) error
}

// Closer is implemented by sinks holding resources such as HTTP clients.
type Closer interface {
	Close() error
}

// NopSink implements SearchSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordIteration(IterationEvent) error { return nil }
func (NopSink) RecordRun(RunSummary) error           { return nil }
func (NopSink) RecordEstimate(EstimateEvent) error   { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []SearchSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...SearchSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordIteration forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordIteration(ev IterationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordIteration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards the summary to all sinks.
func (m *MultiSink) RecordRun(sum RunSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(sum); err != nil {
			return err
		}
	}
	return nil
}

// RecordEstimate forwards to sinks implementing EstimateRecorder.
func (m *MultiSink) RecordEstimate(ev EstimateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EstimateRecorder); ok {
			if err := rec.RecordEstimate(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink implementing Closer and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
