package mission

import (
	"fmt"
	"math"
	"time"
)

// Travel models road time between two points.
type Travel struct {
	SpeedKph float64
	// PauseEvery is the driving time after which a pause is taken.
	PauseEvery time.Duration
	PauseFor   time.Duration
}

// DefaultTravel drives at 80 km/h and pauses 15 minutes every two hours.
func DefaultTravel() Travel {
	return Travel{SpeedKph: 80, PauseEvery: 2 * time.Hour, PauseFor: 15 * time.Minute}
}

// Validate checks the model parameters.
func (t Travel) Validate() error {
	if !(t.SpeedKph > 0) || math.IsInf(t.SpeedKph, 0) {
		return fmt.Errorf("speed_kph must be positive, got %v", t.SpeedKph)
	}
	if t.PauseEvery <= 0 {
		return fmt.Errorf("pause_every must be positive, got %s", t.PauseEvery)
	}
	if t.PauseFor < 0 {
		return fmt.Errorf("pause_for must not be negative, got %s", t.PauseFor)
	}
	return nil
}

// Duration returns the time needed to drive km kilometres, including one
// pause per full PauseEvery of driving.
func (t Travel) Duration(km float64) time.Duration {
	if km <= 0 {
		return 0
	}
	driving := time.Duration(km / t.SpeedKph * float64(time.Hour))
	pauses := driving / t.PauseEvery
	return driving + time.Duration(pauses)*t.PauseFor
}
