package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/slotplan/core/metrics"
	"github.com/kilianp07/slotplan/infra/logger"
)

// InfluxSink writes search progress to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	// every keeps one iteration point out of every iterations.
	every int
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		every:    1,
	}
}

// SetIterationEvery keeps one iteration point out of n. The run summary is
// always written.
func (s *InfluxSink) SetIterationEvery(n int) {
	if n > 0 {
		s.every = n
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.SearchSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordIteration writes a tabu_iteration point.
func (s *InfluxSink) RecordIteration(ev coremetrics.IterationEvent) error {
	if ev.Iteration%s.every != 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("tabu_iteration").
		AddTag("run_id", ev.RunID).
		AddField("iteration", ev.Iteration).
		AddField("candidates", ev.Candidates).
		AddField("tabu_hits", ev.TabuHits).
		AddField("accepted", ev.Accepted).
		AddField("improved", ev.Improved).
		AddField("current_total", round3(ev.CurrentTotal)).
		AddField("best_total", round3(ev.BestTotal)).
		AddField("best_finish", ev.BestFinish).
		AddField("eval_ms", round3(ev.EvalTime.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes a tabu_run point.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("tabu_run").
		AddTag("run_id", sum.RunID).
		AddTag("canceled", strconv.FormatBool(sum.Canceled)).
		AddField("trucks", sum.Trucks).
		AddField("segments", sum.Segments).
		AddField("iterations", sum.Iterations).
		AddField("accepted", sum.Accepted).
		AddField("tabu_hits", sum.TabuHits).
		AddField("best_total", round3(sum.BestTotal)).
		AddField("best_finish", sum.BestFinish).
		AddField("duration_s", round3(sum.Duration.Seconds())).
		SetTime(sum.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEstimate writes a simulator_estimate point.
func (s *InfluxSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulator_estimate").
		AddTag("segment", ev.Segment).
		AddField("hour", ev.Hour).
		AddField("trucks", ev.Trucks).
		AddField("trials", ev.Trials).
		AddField("excluded", ev.Excluded).
		AddField("median", round3(ev.Median)).
		AddField("std_dev", round3(ev.StdDev)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
