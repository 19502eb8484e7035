package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyWindow indicates an operating window that yields no time segment.
var ErrEmptyWindow = errors.New("operating window contains no time segment")

const minutesPerDay = 24 * 60

// TimeSegment is the half-open interval [Start, Start+Length) expressed in
// minutes from midnight.
type TimeSegment struct {
	Index  int `json:"index"`
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the first minute after the segment.
func (s TimeSegment) End() int { return s.Start + s.Length }

// Hour returns the hour of day the segment starts in.
func (s TimeSegment) Hour() int { return s.Start / 60 }

// Contains reports whether minute falls inside the segment.
func (s TimeSegment) Contains(minute int) bool {
	return minute >= s.Start && minute < s.End()
}

func (s TimeSegment) String() string {
	return FormatClock(s.Start) + "-" + FormatClock(s.End())
}

// Window is the ordered, immutable list of time segments of a working day.
// Every schedule of a run shares the same window.
type Window struct {
	segments []TimeSegment
}

// NewWindow splits [start, end) into segments of length minutes. Like the
// historical planning sheets, a segment is created for every start strictly
// before end, so the last one may run past end when the window is not a
// multiple of length.
func NewWindow(start, end, length int) (Window, error) {
	if length <= 0 {
		return Window{}, fmt.Errorf("segment length must be positive, got %d", length)
	}
	if start < 0 || end > minutesPerDay {
		return Window{}, fmt.Errorf("window %d-%d outside of day", start, end)
	}
	if end <= start {
		return Window{}, ErrEmptyWindow
	}
	var segs []TimeSegment
	for m := start; m < end; m += length {
		segs = append(segs, TimeSegment{Index: len(segs), Start: m, Length: length})
	}
	return Window{segments: segs}, nil
}

// DefaultWindow returns the 08:00-16:30 window split into 30 minute segments.
func DefaultWindow() Window {
	w, _ := NewWindow(8*60, 16*60+30, 30)
	return w
}

// Len returns the number of segments.
func (w Window) Len() int { return len(w.segments) }

// Segment returns the i-th segment in chronological order.
func (w Window) Segment(i int) TimeSegment { return w.segments[i] }

// Segments returns a copy of the ordered segments.
func (w Window) Segments() []TimeSegment {
	out := make([]TimeSegment, len(w.segments))
	copy(out, w.segments)
	return out
}

// Start returns the first minute of the window.
func (w Window) Start() int {
	if len(w.segments) == 0 {
		return 0
	}
	return w.segments[0].Start
}

// End returns the end of the last segment.
func (w Window) End() int {
	if len(w.segments) == 0 {
		return 0
	}
	return w.segments[len(w.segments)-1].End()
}

// ParseClock converts "HH:MM" to minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
