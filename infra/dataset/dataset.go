// Package dataset reads the CSV inputs of an optimisation run: the daily
// truck list and the historical occupancy and tool-wait tables.
//
// Headers are matched case-insensitively and extra columns are ignored.
// A malformed row fails the whole load with a *RowError naming the file and
// line; rows are never skipped.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// RowError reports a malformed input row.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ErrMissingColumn is wrapped when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// table is a CSV file with its header resolved to column indexes.
type table struct {
	name    string
	reader  *csv.Reader
	columns map[string]int
}

func openTable(r io.Reader, name string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &RowError{File: name, Line: 1, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &RowError{File: name, Line: 1, Err: err}
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return &table{name: name, reader: cr, columns: cols}, nil
}

// index returns the column of the first matching alias.
func (t *table) index(aliases ...string) (int, error) {
	for _, a := range aliases {
		if i, ok := t.columns[strings.ToLower(a)]; ok {
			return i, nil
		}
	}
	return 0, &RowError{File: t.name, Line: 1, Err: fmt.Errorf("%w %q", ErrMissingColumn, aliases[0])}
}

// each calls fn for every data row. Errors are reported with the row line.
func (t *table) each(fn func(rec []string) error) error {
	for {
		rec, err := t.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return &RowError{File: t.name, Line: line, Err: err}
		}
		line, _ := t.reader.FieldPos(0)
		if err := fn(rec); err != nil {
			return &RowError{File: t.name, Line: line, Err: err}
		}
	}
}

func field(rec []string, i int, name string) (string, error) {
	if i >= len(rec) {
		return "", fmt.Errorf("missing value for %s", name)
	}
	return strings.TrimSpace(rec[i]), nil
}

func floatField(rec []string, i int, name string) (float64, error) {
	s, err := field(rec, i, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s %q", name, s)
	}
	return v, nil
}

// hourField accepts "9" as well as "9.0" as exported by spreadsheets.
func hourField(rec []string, i int) (int, error) {
	v, err := floatField(rec, i, "hour")
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("hour %v is not an integer", v)
	}
	return int(v), nil
}

func openFile(path string, read func(io.Reader, string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return read(f, path)
}
