package model

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Schedule assigns every truck to exactly one segment of a Window. Values
// are never modified in place: neighbours are built from a copy.
type Schedule struct {
	trucks []Truck
	slots  []int
}

// NewSchedule builds a schedule from explicit segment indices.
func NewSchedule(trucks []Truck, slots []int, w Window) (Schedule, error) {
	if len(trucks) == 0 {
		return Schedule{}, ErrNoTrucks
	}
	if len(trucks) != len(slots) {
		return Schedule{}, fmt.Errorf("schedule: %d trucks but %d slots", len(trucks), len(slots))
	}
	for i, s := range slots {
		if s < 0 || s >= w.Len() {
			return Schedule{}, fmt.Errorf("schedule: truck %s assigned to segment %d outside window", trucks[i].ID, s)
		}
	}
	return Schedule{trucks: slices.Clone(trucks), slots: slices.Clone(slots)}, nil
}

// NewRandomSchedule assigns each truck an independently and uniformly chosen
// segment (solution zero).
func NewRandomSchedule(trucks []Truck, w Window, r *rand.Rand) (Schedule, error) {
	if len(trucks) == 0 {
		return Schedule{}, ErrNoTrucks
	}
	if w.Len() == 0 {
		return Schedule{}, ErrEmptyWindow
	}
	slots := make([]int, len(trucks))
	for i := range slots {
		slots[i] = r.IntN(w.Len())
	}
	return Schedule{trucks: slices.Clone(trucks), slots: slots}, nil
}

// Move describes a single reassignment.
type Move struct {
	Truck int
	From  int
	To    int
}

// Neighbor returns a copy of s with one uniformly chosen truck moved to a
// uniformly chosen segment. The new segment may equal the old one.
func (s Schedule) Neighbor(segments int, r *rand.Rand) (Schedule, Move) {
	i := r.IntN(len(s.slots))
	to := r.IntN(segments)
	mv := Move{Truck: i, From: s.slots[i], To: to}
	return s.With(i, to), mv
}

// With returns a copy of s where truck i is assigned to slot.
func (s Schedule) With(i, slot int) Schedule {
	slots := slices.Clone(s.slots)
	slots[i] = slot
	return Schedule{trucks: s.trucks, slots: slots}
}

// Len returns the number of trucks.
func (s Schedule) Len() int { return len(s.trucks) }

// Truck returns the i-th truck.
func (s Schedule) Truck(i int) Truck { return s.trucks[i] }

// Slot returns the segment index of the i-th truck.
func (s Schedule) Slot(i int) int { return s.slots[i] }

// Trucks returns a copy of the scheduled trucks.
func (s Schedule) Trucks() []Truck { return slices.Clone(s.trucks) }

// Slots returns a copy of the segment indices, aligned with Trucks.
func (s Schedule) Slots() []int { return slices.Clone(s.slots) }

// Equal reports whether both schedules assign the same trucks to the same
// segments.
func (s Schedule) Equal(o Schedule) bool {
	return slices.Equal(s.slots, o.slots) && slices.Equal(s.trucks, o.trucks)
}

// Counts returns the number of trucks per segment.
func (s Schedule) Counts(segments int) []int {
	counts := make([]int, segments)
	for _, slot := range s.slots {
		counts[slot]++
	}
	return counts
}

// BySegment groups truck indices by segment, preserving truck order.
func (s Schedule) BySegment(segments int) [][]int {
	groups := make([][]int, segments)
	for i, slot := range s.slots {
		groups[slot] = append(groups[slot], i)
	}
	return groups
}

// Assignment is one output row of a schedule.
type Assignment struct {
	TruckID      string `json:"truck_id"`
	Segment      string `json:"segment"`
	SegmentStart string `json:"segment_start"`
	SegmentEnd   string `json:"segment_end"`
}

// Assignments renders the schedule as rows in truck order.
func (s Schedule) Assignments(w Window) []Assignment {
	rows := make([]Assignment, len(s.trucks))
	for i, t := range s.trucks {
		seg := w.Segment(s.slots[i])
		rows[i] = Assignment{
			TruckID:      t.ID,
			Segment:      t.Segment,
			SegmentStart: FormatClock(seg.Start),
			SegmentEnd:   FormatClock(seg.End()),
		}
	}
	return rows
}
