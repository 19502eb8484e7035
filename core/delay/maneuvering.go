package delay

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// LoadBucket is the fitted lognormal scale used when at least MinTrucks
// trucks are at the base.
type LoadBucket struct {
	MinTrucks int     `json:"min_trucks"`
	Scale     float64 `json:"scale"`
}

// Maneuvering models base maneuvering time as a lognormal distribution whose
// scale grows with the number of trucks present.
type Maneuvering struct {
	Shape   float64      `json:"shape"`
	Loc     float64      `json:"loc"`
	Buckets []LoadBucket `json:"buckets"`
}

// DefaultManeuvering returns the parameters fitted on the entry/exit logs
// for fewer than 2, 2-3, 4-5 and 6+ trucks.
func DefaultManeuvering() Maneuvering {
	return Maneuvering{
		Shape: 0.77,
		Loc:   0,
		Buckets: []LoadBucket{
			{MinTrucks: 0, Scale: 4.253023255813953},
			{MinTrucks: 2, Scale: 5.927441860465116},
			{MinTrucks: 4, Scale: 7.166511627906976},
			{MinTrucks: 6, Scale: 8.606511627906976},
		},
	}
}

// Validate checks the shape and that buckets are strictly ascending.
func (m Maneuvering) Validate() error {
	if !(m.Shape > 0) || math.IsInf(m.Shape, 0) {
		return fmt.Errorf("maneuvering: shape must be positive, got %.3f", m.Shape)
	}
	if len(m.Buckets) == 0 {
		return fmt.Errorf("maneuvering: at least one load bucket is required")
	}
	for i, b := range m.Buckets {
		if !(b.Scale > 0) || math.IsInf(b.Scale, 0) {
			return fmt.Errorf("maneuvering: bucket %d scale must be positive", i)
		}
		if i > 0 && b.MinTrucks <= m.Buckets[i-1].MinTrucks {
			return fmt.Errorf("maneuvering: bucket %d not in ascending order", i)
		}
	}
	return nil
}

// Scale returns the scale of the bucket matching trucks. Counts below the
// first threshold use the first bucket.
func (m Maneuvering) Scale(trucks int) float64 {
	scale := m.Buckets[0].Scale
	for _, b := range m.Buckets {
		if trucks >= b.MinTrucks {
			scale = b.Scale
		}
	}
	return scale
}

// Sample draws a maneuvering time for the given load.
func (m Maneuvering) Sample(trucks int, src rand.Source) float64 {
	return m.Loc + distuv.LogNormal{Mu: math.Log(m.Scale(trucks)), Sigma: m.Shape, Src: src}.Rand()
}
