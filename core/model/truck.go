package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTrucks is returned when a scheduling run receives an empty truck list.
var ErrNoTrucks = errors.New("truck list is empty")

// Truck is a vehicle expected at the base during the working day.
type Truck struct {
	ID string `json:"truck_id"`
	// Segment is the business line label (BL) used to look up tool-wait
	// statistics.
	Segment string `json:"segment"`
}

// Validate checks that the truck carries an identifier and a segment label.
func (t Truck) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("truck id is required")
	}
	if strings.TrimSpace(t.Segment) == "" {
		return fmt.Errorf("truck %s: segment label is required", t.ID)
	}
	return nil
}

// ValidateTrucks checks every truck and rejects empty lists and duplicate ids.
func ValidateTrucks(trucks []Truck) error {
	if len(trucks) == 0 {
		return ErrNoTrucks
	}
	seen := make(map[string]struct{}, len(trucks))
	for i, t := range trucks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("truck %d: %w", i, err)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("truck %d: duplicate id %s", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
