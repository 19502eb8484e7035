package tabu

import "github.com/kilianp07/slotplan/core/model"

// Memory is a bounded FIFO of visited schedules.
type Memory struct {
	tenure  int
	entries []model.Schedule
}

// NewMemory returns an empty memory holding at most tenure schedules.
func NewMemory(tenure int) *Memory {
	return &Memory{tenure: tenure, entries: make([]model.Schedule, 0, tenure+1)}
}

// Contains reports whether a schedule with the same assignment is stored.
func (m *Memory) Contains(s model.Schedule) bool {
	for _, e := range m.entries {
		if e.Equal(s) {
			return true
		}
	}
	return false
}

// Add appends s and evicts the oldest entry once the tenure is exceeded.
func (m *Memory) Add(s model.Schedule) {
	m.entries = append(m.entries, s)
	if len(m.entries) > m.tenure {
		m.entries = m.entries[1:]
	}
}

// Len returns the number of stored schedules.
func (m *Memory) Len() int { return len(m.entries) }

// Entries returns the stored schedules from oldest to newest.
func (m *Memory) Entries() []model.Schedule {
	out := make([]model.Schedule, len(m.entries))
	copy(out, m.entries)
	return out
}
