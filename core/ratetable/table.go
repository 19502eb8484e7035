package ratetable

import (
	"fmt"
	"math"
	"strings"
)

// AllSegments is the pseudo segment label aggregating every business line.
const AllSegments = "All"

// OccupancyEntry describes the number of trucks at the base for one hour.
type OccupancyEntry struct {
	Hour    int     `json:"hour"`
	Segment string  `json:"segment"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
}

// ToolWaitEntry describes tool-wait minutes for one hour and segment.
type ToolWaitEntry struct {
	Hour    int     `json:"hour"`
	Segment string  `json:"segment"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
}

type key struct {
	hour    int
	segment string
}

func newKey(hour int, segment string) key {
	return key{hour: hour, segment: strings.ToUpper(strings.TrimSpace(segment))}
}

func checkStats(hour int, segment string, values ...float64) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d out of range [0,23]", hour)
	}
	if strings.TrimSpace(segment) == "" {
		return fmt.Errorf("segment label is required")
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite statistic for hour %d segment %s", hour, segment)
		}
	}
	return nil
}

// OccupancyTable indexes occupancy statistics by hour and segment.
type OccupancyTable struct {
	entries map[key]OccupancyEntry
}

// NewOccupancyTable validates entries and builds the index. Duplicate
// (hour, segment) pairs are rejected.
func NewOccupancyTable(entries []OccupancyEntry) (*OccupancyTable, error) {
	t := &OccupancyTable{entries: make(map[key]OccupancyEntry, len(entries))}
	for i, e := range entries {
		if err := checkStats(e.Hour, e.Segment, e.Mean, e.Median, e.StdDev); err != nil {
			return nil, fmt.Errorf("occupancy entry %d: %w", i, err)
		}
		if e.StdDev < 0 {
			return nil, fmt.Errorf("occupancy entry %d: negative std dev %.3f", i, e.StdDev)
		}
		k := newKey(e.Hour, e.Segment)
		if _, ok := t.entries[k]; ok {
			return nil, fmt.Errorf("occupancy entry %d: duplicate hour %d segment %s", i, e.Hour, e.Segment)
		}
		t.entries[k] = e
	}
	return t, nil
}

// Lookup returns the entry for hour and segment. ok is false when the
// table has no such row, in which case the zero entry is returned.
func (t *OccupancyTable) Lookup(hour int, segment string) (OccupancyEntry, bool) {
	if t == nil {
		return OccupancyEntry{}, false
	}
	e, ok := t.entries[newKey(hour, segment)]
	return e, ok
}

// Len returns the number of rows.
func (t *OccupancyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ToolWaitTable indexes tool-wait statistics by hour and segment.
type ToolWaitTable struct {
	entries map[key]ToolWaitEntry
}

// NewToolWaitTable validates entries and builds the index.
func NewToolWaitTable(entries []ToolWaitEntry) (*ToolWaitTable, error) {
	t := &ToolWaitTable{entries: make(map[key]ToolWaitEntry, len(entries))}
	for i, e := range entries {
		if err := checkStats(e.Hour, e.Segment, e.Mean, e.StdDev); err != nil {
			return nil, fmt.Errorf("tool-wait entry %d: %w", i, err)
		}
		if e.StdDev < 0 {
			return nil, fmt.Errorf("tool-wait entry %d: negative std dev %.3f", i, e.StdDev)
		}
		k := newKey(e.Hour, e.Segment)
		if _, ok := t.entries[k]; ok {
			return nil, fmt.Errorf("tool-wait entry %d: duplicate hour %d segment %s", i, e.Hour, e.Segment)
		}
		t.entries[k] = e
	}
	return t, nil
}

// Lookup returns the entry for hour and segment, or ok=false on a miss.
func (t *ToolWaitTable) Lookup(hour int, segment string) (ToolWaitEntry, bool) {
	if t == nil {
		return ToolWaitEntry{}, false
	}
	e, ok := t.entries[newKey(hour, segment)]
	return e, ok
}

// Len returns the number of rows.
func (t *ToolWaitTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
