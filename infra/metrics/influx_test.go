package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/slotplan/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordIteration(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.IterationEvent{
		RunID:        "run1",
		Iteration:    4,
		Candidates:   2,
		TabuHits:     1,
		Accepted:     true,
		Improved:     false,
		CurrentTotal: 123.4567,
		BestTotal:    120,
		BestFinish:   600,
		EvalTime:     1500 * time.Microsecond,
		Time:         now,
	}
	if err := sink.RecordIteration(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("tabu_iteration").
		AddTag("run_id", "run1").
		AddField("iteration", 4).
		AddField("candidates", 2).
		AddField("tabu_hits", 1).
		AddField("accepted", true).
		AddField("improved", false).
		AddField("current_total", 123.457).
		AddField("best_total", 120.0).
		AddField("best_finish", 600).
		AddField("eval_ms", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_IterationSampling(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	sink.SetIterationEvery(10)
	for i := 0; i < 25; i++ {
		if err := sink.RecordIteration(coremetrics.IterationEvent{Iteration: i, Time: time.Now()}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if len(rec.bodies) != 3 {
		t.Errorf("expected 3 points, got %d", len(rec.bodies))
	}
}

func TestInfluxSink_RecordRun(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	sum := coremetrics.RunSummary{
		RunID:      "run1",
		Trucks:     5,
		Segments:   3,
		Iterations: 50,
		Accepted:   45,
		TabuHits:   5,
		BestTotal:  512.25,
		BestFinish: 510,
		Duration:   2 * time.Second,
		Time:       now,
	}
	if err := sink.RecordRun(sum); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("tabu_run").
		AddTag("run_id", "run1").
		AddTag("canceled", "false").
		AddField("trucks", 5).
		AddField("segments", 3).
		AddField("iterations", 50).
		AddField("accepted", 45).
		AddField("tabu_hits", 5).
		AddField("best_total", 512.25).
		AddField("best_finish", 510).
		AddField("duration_s", 2.0).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(rec.bodies) != 1 || rec.bodies[0] != exp {
		t.Errorf("bodies: %#v", rec.bodies)
	}
}

func TestInfluxSink_RecordEstimate(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	if err := sink.RecordEstimate(coremetrics.EstimateEvent{Hour: 9, Trucks: 3, Segment: "WL", Trials: 100, Median: 42}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(rec.bodies) != 1 || !strings.HasPrefix(rec.bodies[0], "simulator_estimate,segment=WL ") {
		t.Errorf("bodies: %#v", rec.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
