package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/slotplan/core/factory"
	coremetrics "github.com/kilianp07/slotplan/core/metrics"
)

// init registers built-in search sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.SearchSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.SearchSink, error) {
		// The /metrics endpoint is configured with metrics.listen_addr.
		s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.SearchSink, error) {
		var c struct {
			URL            string `json:"url"`
			Token          string `json:"token"`
			Org            string `json:"org"`
			Bucket         string `json:"bucket"`
			IterationEvery int    `json:"iteration_every"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		sink := NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket)
		if is, ok := sink.(*InfluxSink); ok {
			is.SetIterationEvery(c.IterationEvery)
		}
		return sink, nil
	})
}
