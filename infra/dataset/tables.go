package dataset

import (
	"fmt"
	"io"

	"github.com/kilianp07/slotplan/core/ratetable"
)

// ReadOccupancy parses Hour, Segment, Average, Median and StdDev columns.
func ReadOccupancy(r io.Reader, name string) (*ratetable.OccupancyTable, error) {
	t, err := openTable(r, name)
	if err != nil {
		return nil, err
	}
	cols, err := indexes(t, []string{"hour"}, []string{"segment", "bl"}, []string{"average", "mean"}, []string{"median"}, []string{"stddev", "std_dev", "std"})
	if err != nil {
		return nil, err
	}
	var entries []ratetable.OccupancyEntry
	err = t.each(func(rec []string) error {
		e := ratetable.OccupancyEntry{}
		var err error
		if e.Hour, err = hourField(rec, cols[0]); err != nil {
			return err
		}
		if e.Segment, err = field(rec, cols[1], "segment"); err != nil {
			return err
		}
		if e.Mean, err = floatField(rec, cols[2], "average"); err != nil {
			return err
		}
		if e.Median, err = floatField(rec, cols[3], "median"); err != nil {
			return err
		}
		if e.StdDev, err = floatField(rec, cols[4], "stddev"); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tbl, err := ratetable.NewOccupancyTable(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tbl, nil
}

// ReadToolWait parses Hour, Segment, Average and StdDev columns.
func ReadToolWait(r io.Reader, name string) (*ratetable.ToolWaitTable, error) {
	t, err := openTable(r, name)
	if err != nil {
		return nil, err
	}
	cols, err := indexes(t, []string{"hour"}, []string{"segment", "bl"}, []string{"average", "mean"}, []string{"stddev", "std_dev", "std"})
	if err != nil {
		return nil, err
	}
	var entries []ratetable.ToolWaitEntry
	err = t.each(func(rec []string) error {
		e := ratetable.ToolWaitEntry{}
		var err error
		if e.Hour, err = hourField(rec, cols[0]); err != nil {
			return err
		}
		if e.Segment, err = field(rec, cols[1], "segment"); err != nil {
			return err
		}
		if e.Mean, err = floatField(rec, cols[2], "average"); err != nil {
			return err
		}
		if e.StdDev, err = floatField(rec, cols[3], "stddev"); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tbl, err := ratetable.NewToolWaitTable(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tbl, nil
}

// LoadOccupancy reads the occupancy table at path.
func LoadOccupancy(path string) (*ratetable.OccupancyTable, error) {
	var tbl *ratetable.OccupancyTable
	err := openFile(path, func(r io.Reader, name string) error {
		var err error
		tbl, err = ReadOccupancy(r, name)
		return err
	})
	return tbl, err
}

// LoadToolWait reads the tool-wait table at path.
func LoadToolWait(path string) (*ratetable.ToolWaitTable, error) {
	var tbl *ratetable.ToolWaitTable
	err := openFile(path, func(r io.Reader, name string) error {
		var err error
		tbl, err = ReadToolWait(r, name)
		return err
	})
	return tbl, err
}

func indexes(t *table, aliases ...[]string) ([]int, error) {
	out := make([]int, len(aliases))
	for i, a := range aliases {
		idx, err := t.index(a...)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}
