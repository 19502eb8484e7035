package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/slotplan/core/model"
)

// Report is the JSON document describing the best schedule of a run.
type Report struct {
	RunID         string             `json:"run_id,omitempty"`
	BestTotal     float64            `json:"best_total_minutes"`
	FinishSegment string             `json:"finish_segment"`
	Assignments   []model.Assignment `json:"assignments"`
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per truck to w.
func WriteCSV(w io.Writer, rows []model.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"truck_id", "segment", "segment_start", "segment_end"}); err != nil {
		return err
	}
	for _, a := range rows {
		if err := cw.Write([]string{a.TruckID, a.Segment, a.SegmentStart, a.SegmentEnd}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path, choosing the format from the file
// extension (.csv or .json).
func WriteFile(path string, r Report) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".json" {
		return fmt.Errorf("unsupported export format %q", ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if ext == ".csv" {
		return WriteCSV(f, r.Assignments)
	}
	return WriteJSON(f, r)
}
