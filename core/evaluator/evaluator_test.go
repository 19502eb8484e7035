package evaluator

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/slotplan/core/delay"
	"github.com/kilianp07/slotplan/core/model"
	"github.com/kilianp07/slotplan/core/simulator"
)

type call struct {
	hour    int
	trucks  int
	segment string
}

// stubSim returns fixed medians and records the occupancy seen by each call.
type stubSim struct {
	minutes []float64
	calls   []call
	err     error
}

func (s *stubSim) Estimate(_ context.Context, hour, trucks int, segment string, _ int) (simulator.Estimate, error) {
	if s.err != nil {
		return simulator.Estimate{}, s.err
	}
	m := s.minutes[len(s.calls)%len(s.minutes)]
	s.calls = append(s.calls, call{hour: hour, trucks: trucks, segment: segment})
	return simulator.Estimate{Median: m, StdDev: 1}, nil
}

func threeSegments(t *testing.T) model.Window {
	t.Helper()
	w, err := model.NewWindow(8*60, 9*60+30, 30)
	require.NoError(t, err)
	return w
}

func trucks(ids ...string) []model.Truck {
	out := make([]model.Truck, len(ids))
	for i, id := range ids {
		out[i] = model.Truck{ID: id, Segment: "WL"}
	}
	return out
}

func TestCongestionSpillover(t *testing.T) {
	w := threeSegments(t)
	// a and b overrun the first segment by 15 minutes; c and d are in the
	// second and third segments.
	s, err := model.NewSchedule(trucks("a", "b", "c", "d"), []int{0, 0, 1, 2}, w)
	require.NoError(t, err)
	sim := &stubSim{minutes: []float64{45}}
	e, err := New(sim, w, 10)
	require.NoError(t, err)

	ev, err := e.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, sim.calls, 4)
	assert.Equal(t, 2, sim.calls[0].trucks)
	assert.Equal(t, 2, sim.calls[1].trucks)
	// each overflowing truck adds exactly one to the next segment
	assert.Equal(t, 1+2, sim.calls[2].trucks)
	// 08:00+45 stops before 09:00, only c (08:30+45) reaches the third one
	assert.Equal(t, 1+1, sim.calls[3].trucks)
	assert.Equal(t, []int{2, 3, 2}, ev.Occupancy)
	assert.Equal(t, []float64{45, 45, 45, 45}, ev.Processing)
	assert.Equal(t, 180.0, ev.Score.Total)
	assert.Equal(t, w.Segment(2), ev.Score.Finish)
}

func TestSpilloverBoundaryIsInclusive(t *testing.T) {
	w := threeSegments(t)
	s, err := model.NewSchedule(trucks("a", "b"), []int{0, 1}, w)
	require.NoError(t, err)
	sim := &stubSim{minutes: []float64{30, 1}}
	e, err := New(sim, w, 1)
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), s)
	require.NoError(t, err)
	// a ends exactly at 08:30, which still counts as reaching the segment
	assert.Equal(t, 2, sim.calls[1].trucks)
}

func TestNoSpilloverIntoOwnSegment(t *testing.T) {
	w := threeSegments(t)
	s, err := model.NewSchedule(trucks("a", "b"), []int{1, 1}, w)
	require.NoError(t, err)
	sim := &stubSim{minutes: []float64{10}}
	e, err := New(sim, w, 1)
	require.NoError(t, err)
	ev, err := e.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 0}, ev.Occupancy)
	assert.Equal(t, 8, sim.calls[0].hour)
}

func TestFinishIsLastNonEmptySegment(t *testing.T) {
	w := threeSegments(t)
	s, err := model.NewSchedule(trucks("a", "b"), []int{1, 0}, w)
	require.NoError(t, err)
	e, err := New(&stubSim{minutes: []float64{5}}, w, 1)
	require.NoError(t, err)
	score, err := e.Evaluate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, w.Segment(1), score.Finish)
	assert.Equal(t, 10.0, score.Total)
}

func TestEvaluateDoesNotMutateSchedule(t *testing.T) {
	w := threeSegments(t)
	s, err := model.NewSchedule(trucks("a", "b", "c"), []int{0, 0, 2}, w)
	require.NoError(t, err)
	before := s.Slots()
	e, err := New(&stubSim{minutes: []float64{90}}, w, 1)
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, before, s.Slots())
}

func TestEvaluateIdempotentWithSameSeed(t *testing.T) {
	w := threeSegments(t)
	s, err := model.NewSchedule(trucks("a", "b", "c", "d", "e"), []int{0, 1, 1, 2, 0}, w)
	require.NoError(t, err)
	score := func() model.Score {
		sim, err := simulator.New(delay.Default(), nil, rand.New(rand.NewPCG(17, 71)))
		require.NoError(t, err)
		e, err := New(sim, w, 300)
		require.NoError(t, err)
		sc, err := e.Evaluate(context.Background(), s)
		require.NoError(t, err)
		return sc
	}
	assert.Equal(t, score(), score())
}

func TestEvaluatePropagatesErrors(t *testing.T) {
	w := threeSegments(t)
	s, err := model.NewSchedule(trucks("a"), []int{0}, w)
	require.NoError(t, err)
	e, err := New(&stubSim{err: simulator.ErrNoValidTrials}, w, 1)
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), s)
	assert.True(t, errors.Is(err, simulator.ErrNoValidTrials))
}

func TestNewValidation(t *testing.T) {
	w := threeSegments(t)
	_, err := New(nil, w, 1)
	assert.Error(t, err)
	_, err = New(&stubSim{}, model.Window{}, 1)
	assert.ErrorIs(t, err, model.ErrEmptyWindow)
	_, err = New(&stubSim{}, w, 0)
	assert.Error(t, err)
}
