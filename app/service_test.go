package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/slotplan/config"
	"github.com/kilianp07/slotplan/core/mission"
	"github.com/kilianp07/slotplan/infra/runstore"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Search.MaxIterations = 20
	cfg.Search.TabuTenure = 5
	cfg.Search.Seed = 11
	cfg.Simulation.TrialCount = 100
	cfg.Window = config.WindowConfig{Start: "08:00", End: "09:30", SegmentMinutes: 30}
	cfg.Inputs = config.InputsConfig{
		Trucks:    writeFile(t, dir, "trucks.csv", "truck_id,BL\nT1,WL\nT2,WL\nT3,DNM\n"),
		Occupancy: writeFile(t, dir, "occ.csv", "Hour,Segment,Average,Median,StdDev\n8,All,2,2,0\n9,All,4,4,1\n"),
		ToolWait:  writeFile(t, dir, "tool.csv", "Hour,Segment,Average,StdDev\n8,WL,10,2\n"),
	}
	cfg.Store = runstore.Config{Backend: "jsonl", Path: filepath.Join(dir, "runs.jsonl")}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestOptimizeRecordsRun(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	trucks, err := svc.LoadTrucks("")
	require.NoError(t, err)
	out, err := svc.Optimize(context.Background(), trucks)
	require.NoError(t, err)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, uint64(11), out.Seed)
	assert.Equal(t, 20, out.Result.Iterations)
	require.Len(t, out.Assignments, 3)
	assert.Equal(t, "T1", out.Assignments[0].TruckID)

	runs, err := svc.Runs(context.Background(), runstore.Query{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].ID)
	assert.Equal(t, out.Result.BestScore.Total, runs[0].BestTotal)
	assert.False(t, runs[0].Canceled)
}

func TestOptimizeIsReproducible(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	trucks, err := a.LoadTrucks("")
	require.NoError(t, err)

	first, err := a.Optimize(context.Background(), trucks)
	require.NoError(t, err)
	second, err := a.Optimize(context.Background(), trucks)
	require.NoError(t, err)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Result.BestScore, second.Result.BestScore)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestOptimizeCanceled(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	trucks, err := svc.LoadTrucks("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Optimize(ctx, trucks)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimateAllSourcesDisabled(t *testing.T) {
	cfg := testConfig(t)
	p := 0.0
	cfg.Catalog.ForceProbability = &p
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	est, err := svc.Estimate(context.Background(), 8, 2, "WL", 500)
	require.NoError(t, err)
	assert.Equal(t, 0.0, est.Median)
	assert.Equal(t, 500, est.Trials)
}

func TestMission(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	dep := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	res, err := svc.Mission(context.Background(), mission.Request{Departure: dep, DistanceKm: 80, Segment: "WL", Trials: 300})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, res.Outbound)
	assert.Equal(t, 300, res.Trials)
	assert.InDelta(t, 2.0, res.MeanTrucks, 1e-9)
	assert.GreaterOrEqual(t, res.P50, 2*time.Hour)
}

func TestLoadTrucksRequiresPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.Trucks = ""
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	_, err = svc.LoadTrucks("")
	assert.Error(t, err)
}

func TestNewFailsOnBadInputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.Occupancy = filepath.Join(t.TempDir(), "missing.csv")
	_, err := New(cfg)
	assert.Error(t, err)
}
