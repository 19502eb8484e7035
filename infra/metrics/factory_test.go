package metrics

import (
	"testing"

	"github.com/kilianp07/slotplan/core/factory"
	coremetrics "github.com/kilianp07/slotplan/core/metrics"
)

func TestFactory_InfluxFallsBackToNop(t *testing.T) {
	// Nothing listens on this port, the health check fails.
	s, err := coremetrics.NewSink([]factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": "http://127.0.0.1:1", "bucket": "b", "iteration_every": "5"},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
}

func TestFactory_Prometheus(t *testing.T) {
	s, err := coremetrics.NewSink([]factory.ModuleConfig{{Type: "prometheus"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(*PromSink); !ok {
		t.Fatalf("expected PromSink, got %T", s)
	}
}
