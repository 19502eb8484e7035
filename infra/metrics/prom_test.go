package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/slotplan/core/metrics"
)

func TestPromSink_RecordIteration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	events := []coremetrics.IterationEvent{
		{Iteration: 0, Candidates: 1, Accepted: true, Improved: true, CurrentTotal: 120, BestTotal: 120, EvalTime: 3 * time.Millisecond},
		{Iteration: 1, Candidates: 3, Accepted: true, TabuHits: 2, CurrentTotal: 130, BestTotal: 120, EvalTime: 2 * time.Millisecond},
		{Iteration: 2, Candidates: 1, TabuHits: 1, CurrentTotal: 130, BestTotal: 120, EvalTime: time.Millisecond},
	}
	for _, ev := range events {
		if err := sink.RecordIteration(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	expected := `
# HELP slotplan_search_moves_total Neighbour candidates by outcome
# TYPE slotplan_search_moves_total counter
slotplan_search_moves_total{outcome="accepted"} 2
slotplan_search_moves_total{outcome="tabu"} 3
`
	if err := testutil.CollectAndCompare(sink.moves, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.iterations); v != 3 {
		t.Errorf("iterations = %v", v)
	}
	if v := testutil.ToFloat64(sink.improvements); v != 1 {
		t.Errorf("improvements = %v", v)
	}
	if v := testutil.ToFloat64(sink.best); v != 120 {
		t.Errorf("best = %v", v)
	}
	if v := testutil.ToFloat64(sink.current); v != 130 {
		t.Errorf("current = %v", v)
	}
	if c := testutil.CollectAndCount(sink.evaluation); c == 0 {
		t.Errorf("evaluation latency not recorded")
	}
}

func TestPromSink_RecordRunAndEstimate(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunSummary{BestTotal: 99, Duration: time.Second, Canceled: true}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := sink.RecordEstimate(coremetrics.EstimateEvent{Segment: "WL", Duration: time.Millisecond}); err != nil {
		t.Fatalf("record estimate: %v", err)
	}
	if v := testutil.ToFloat64(sink.runs.WithLabelValues("true")); v != 1 {
		t.Errorf("canceled runs = %v", v)
	}
	if v := testutil.ToFloat64(sink.best); v != 99 {
		t.Errorf("best = %v", v)
	}
	if v := testutil.ToFloat64(sink.estimates.WithLabelValues("WL")); v != 1 {
		t.Errorf("estimates = %v", v)
	}
}

func TestPromSink_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	if err := a.RecordIteration(coremetrics.IterationEvent{}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordIteration(coremetrics.IterationEvent{}); err != nil {
		t.Fatal(err)
	}
	if v := testutil.ToFloat64(a.iterations); v != 2 {
		t.Errorf("collectors not shared: %v", v)
	}
}
