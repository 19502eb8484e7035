package dataset

import (
	"fmt"
	"io"

	"github.com/kilianp07/slotplan/core/model"
)

// ReadTrucks parses a truck list with truck_id and BL columns.
func ReadTrucks(r io.Reader, name string) ([]model.Truck, error) {
	t, err := openTable(r, name)
	if err != nil {
		return nil, err
	}
	idCol, err := t.index("truck_id", "id", "truck")
	if err != nil {
		return nil, err
	}
	segCol, err := t.index("bl", "segment")
	if err != nil {
		return nil, err
	}
	var trucks []model.Truck
	seen := make(map[string]bool)
	err = t.each(func(rec []string) error {
		id, err := field(rec, idCol, "truck_id")
		if err != nil {
			return err
		}
		seg, err := field(rec, segCol, "BL")
		if err != nil {
			return err
		}
		tr := model.Truck{ID: id, Segment: seg}
		if err := tr.Validate(); err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("duplicate truck id %q", id)
		}
		seen[id] = true
		trucks = append(trucks, tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(trucks) == 0 {
		return nil, fmt.Errorf("%s: %w", name, model.ErrNoTrucks)
	}
	return trucks, nil
}

// LoadTrucks reads the truck list at path.
func LoadTrucks(path string) ([]model.Truck, error) {
	var trucks []model.Truck
	err := openFile(path, func(r io.Reader, name string) error {
		var err error
		trucks, err = ReadTrucks(r, name)
		return err
	})
	return trucks, err
}
