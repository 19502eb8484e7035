package model

// Score is the objective of a schedule. Total is the sum of simulated
// processing minutes (primary, minimised). Finish is the last segment that
// received a truck (secondary, earlier wins).
type Score struct {
	Total  float64     `json:"total_minutes"`
	Finish TimeSegment `json:"finish"`
}

// Better reports whether s strictly improves on o: a lower total, or an
// equal total with an earlier finishing segment.
func (s Score) Better(o Score) bool {
	if s.Total != o.Total {
		return s.Total < o.Total
	}
	return s.Finish.Start < o.Finish.Start
}
