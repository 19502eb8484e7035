package mission

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/slotplan/core/delay"
	"github.com/kilianp07/slotplan/core/ratetable"
	"github.com/kilianp07/slotplan/core/simulator"
)

type fixedBase struct {
	minutes float64
	trucks  []int
	hours   []int
}

func (f *fixedBase) Trial(_ *rand.Rand, hour, trucks int, _ string) float64 {
	f.trucks = append(f.trucks, trucks)
	f.hours = append(f.hours, hour)
	return f.minutes
}

func occupancy(t *testing.T, entries ...ratetable.OccupancyEntry) *ratetable.OccupancyTable {
	t.Helper()
	tbl, err := ratetable.NewOccupancyTable(entries)
	require.NoError(t, err)
	return tbl
}

func TestTravelDuration(t *testing.T) {
	tr := DefaultTravel()
	assert.Equal(t, time.Duration(0), tr.Duration(0))
	assert.Equal(t, 75*time.Minute, tr.Duration(100))
	assert.Equal(t, 2*time.Hour+15*time.Minute, tr.Duration(160))
	assert.Equal(t, 5*time.Hour+30*time.Minute, tr.Duration(400))
}

func TestTravelValidate(t *testing.T) {
	assert.NoError(t, DefaultTravel().Validate())
	assert.Error(t, Travel{SpeedKph: 0, PauseEvery: time.Hour}.Validate())
	assert.Error(t, Travel{SpeedKph: 80}.Validate())
	assert.Error(t, Travel{SpeedKph: 80, PauseEvery: time.Hour, PauseFor: -time.Minute}.Validate())
}

func TestSimulateDeterministicMission(t *testing.T) {
	base := &fixedBase{minutes: 30}
	occ := occupancy(t, ratetable.OccupancyEntry{Hour: 8, Segment: "All", Mean: 3, Median: 3, StdDev: 0})
	p, err := NewPlanner(base, occ, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	dep := time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)
	res, err := p.Simulate(context.Background(), Request{Departure: dep, DistanceKm: 160, Segment: "WL", Trials: 200})
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour+15*time.Minute, res.Outbound)
	assert.Equal(t, res.Outbound, res.Return)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 15, 0, 0, time.UTC), res.ArrivalAt)
	assert.Equal(t, 300*time.Minute, res.P5)
	assert.Equal(t, 300*time.Minute, res.P50)
	assert.Equal(t, 300*time.Minute, res.P95)
	assert.Equal(t, 300*time.Minute, res.Mean)
	assert.Equal(t, time.Duration(0), res.StdDev)
	assert.Equal(t, time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC), res.MedianEnd)
	assert.Equal(t, 200, res.Trials)
	assert.InDelta(t, 3.0, res.MeanTrucks, 1e-9)
	for i := range base.trucks {
		assert.Equal(t, 3, base.trucks[i])
		assert.Equal(t, 8, base.hours[i])
	}
}

func TestSimulateSeparateReturnDistance(t *testing.T) {
	p, err := NewPlanner(&fixedBase{}, nil, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	dep := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	res, err := p.Simulate(context.Background(), Request{Departure: dep, DistanceKm: 80, ReturnKm: 40, Segment: "DNM", Trials: 10})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, res.Outbound)
	assert.Equal(t, 30*time.Minute, res.Return)
	assert.Equal(t, 90*time.Minute, res.P50)
}

func TestSimulateMissingOccupancyAssumesEmptyBase(t *testing.T) {
	base := &fixedBase{minutes: 10}
	occ := occupancy(t, ratetable.OccupancyEntry{Hour: 14, Segment: "All", Mean: 5, Median: 5, StdDev: 1})
	p, err := NewPlanner(base, occ, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	dep := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	_, err = p.Simulate(context.Background(), Request{Departure: dep, DistanceKm: 10, Trials: 50})
	require.NoError(t, err)
	for _, n := range base.trucks {
		assert.Zero(t, n)
	}
}

func TestSimulateTruckCountNeverNegative(t *testing.T) {
	base := &fixedBase{minutes: 10}
	occ := occupancy(t, ratetable.OccupancyEntry{Hour: 9, Segment: "ALL", Mean: 0.5, Median: 0, StdDev: 4})
	p, err := NewPlanner(base, occ, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	dep := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	_, err = p.Simulate(context.Background(), Request{Departure: dep, Trials: 2000})
	require.NoError(t, err)
	for _, n := range base.trucks {
		assert.GreaterOrEqual(t, n, 0)
	}
}

func TestSimulateWithCatalog(t *testing.T) {
	cat, err := delay.Default().Only("Load/unloading time")
	require.NoError(t, err)
	sim, err := simulator.New(cat, nil, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	p, err := NewPlanner(sim, nil, rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)

	dep := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	res, err := p.Simulate(context.Background(), Request{Departure: dep, DistanceKm: 40, Segment: "WL", Trials: 20000})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.P5, res.P50)
	assert.LessOrEqual(t, res.P50, res.P95)
	// Road time is 60 minutes; loading adds 1 + Exp(10.91) minutes.
	want := 60 + 1 + 10.91*math.Ln2
	assert.InDelta(t, want, res.P50.Minutes(), 0.05*want)
	assert.Greater(t, res.StdDev, time.Duration(0))
}

func TestSimulateValidation(t *testing.T) {
	p, err := NewPlanner(&fixedBase{}, nil, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	dep := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, err = p.Simulate(ctx, Request{Departure: dep, Trials: 0})
	assert.Error(t, err)
	_, err = p.Simulate(ctx, Request{Departure: dep, DistanceKm: -1, Trials: 1})
	assert.Error(t, err)
	_, err = p.Simulate(ctx, Request{Trials: 1})
	assert.ErrorIs(t, err, ErrNoDeparture)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Simulate(cctx, Request{Departure: dep, Trials: 10})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewPlanner(nil, nil, rand.New(rand.NewPCG(1, 2)))
	assert.Error(t, err)
	_, err = NewPlanner(&fixedBase{}, nil, nil)
	assert.Error(t, err)
	_, err = NewPlanner(&fixedBase{}, nil, rand.New(rand.NewPCG(1, 2)), WithTravel(Travel{}))
	assert.Error(t, err)
}

func TestSimulateNonFiniteBase(t *testing.T) {
	p, err := NewPlanner(&fixedBase{minutes: math.Inf(1)}, nil, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	dep := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	_, err = p.Simulate(context.Background(), Request{Departure: dep, Trials: 5})
	assert.ErrorIs(t, err, simulator.ErrNoValidTrials)
}

func TestRollover(t *testing.T) {
	arrival := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	early := time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, early, Rollover(arrival, early))

	cutoff := time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, cutoff, Rollover(arrival, cutoff))

	late := time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC), Rollover(arrival, late))

	overnight := time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), Rollover(arrival, overnight))
}

func TestParseDeparture(t *testing.T) {
	got, err := ParseDeparture("2024-03-04 06:45", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 6, 45, 0, 0, time.UTC), got)

	_, err = ParseDeparture("", time.UTC)
	assert.ErrorIs(t, err, ErrNoDeparture)
	_, err = ParseDeparture("04/03/2024", time.UTC)
	assert.Error(t, err)
}
