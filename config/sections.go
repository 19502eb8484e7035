package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/slotplan/core/delay"
	"github.com/kilianp07/slotplan/core/mission"
	"github.com/kilianp07/slotplan/core/model"
)

// WindowConfig defines the operating window split into segments.
type WindowConfig struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	SegmentMinutes int    `json:"segment_minutes"`
}

// SetDefaults applies the 08:00-16:30 window with 30 minute segments.
func (c *WindowConfig) SetDefaults() {
	if c.Start == "" {
		c.Start = "08:00"
	}
	if c.End == "" {
		c.End = "16:30"
	}
	if c.SegmentMinutes == 0 {
		c.SegmentMinutes = 30
	}
}

// Build returns the window described by c.
func (c WindowConfig) Build() (model.Window, error) {
	start, err := model.ParseClock(c.Start)
	if err != nil {
		return model.Window{}, err
	}
	end, err := model.ParseClock(c.End)
	if err != nil {
		return model.Window{}, err
	}
	return model.NewWindow(start, end, c.SegmentMinutes)
}

// InputsConfig locates the CSV inputs.
type InputsConfig struct {
	Trucks    string `json:"trucks"`
	Occupancy string `json:"occupancy"`
	ToolWait  string `json:"tool_wait"`
}

// CatalogConfig overrides the built-in delay catalog.
type CatalogConfig struct {
	// Sources replaces the built-in sources when not empty.
	Sources []delay.Source `json:"sources"`
	// ForceProbability activates every source with this probability.
	ForceProbability *float64 `json:"force_probability"`
}

// ManeuveringConfig overrides the load-dependent maneuvering model.
type ManeuveringConfig struct {
	Shape   float64            `json:"shape"`
	Loc     float64            `json:"loc"`
	Buckets []delay.LoadBucket `json:"buckets"`
}

// BuildCatalog returns the delay catalog after applying overrides.
func (c Config) BuildCatalog() (*delay.Catalog, error) {
	sources := delay.DefaultSources()
	if len(c.Catalog.Sources) > 0 {
		sources = c.Catalog.Sources
	}
	m := delay.DefaultManeuvering()
	if c.Maneuvering != nil {
		m = delay.Maneuvering{Shape: c.Maneuvering.Shape, Loc: c.Maneuvering.Loc, Buckets: c.Maneuvering.Buckets}
	}
	cat, err := delay.NewCatalog(sources, m)
	if err != nil {
		return nil, err
	}
	if p := c.Catalog.ForceProbability; p != nil {
		return cat.WithProbability(*p)
	}
	return cat, nil
}

// MissionConfig holds the road model and defaults of mission simulations.
type MissionConfig struct {
	SpeedKph          float64 `json:"speed_kph"`
	PauseEveryMinutes int     `json:"pause_every_minutes"`
	PauseMinutes      int     `json:"pause_minutes"`
	Trials            int     `json:"trials"`
}

// SetDefaults applies 80 km/h with a 15 minute pause every two hours.
func (c *MissionConfig) SetDefaults() {
	def := mission.DefaultTravel()
	if c.SpeedKph == 0 {
		c.SpeedKph = def.SpeedKph
	}
	if c.PauseEveryMinutes == 0 {
		c.PauseEveryMinutes = int(def.PauseEvery / time.Minute)
	}
	if c.PauseMinutes == 0 {
		c.PauseMinutes = int(def.PauseFor / time.Minute)
	}
	if c.Trials == 0 {
		c.Trials = 10000
	}
}

// Travel returns the road model.
func (c MissionConfig) Travel() mission.Travel {
	return mission.Travel{
		SpeedKph:   c.SpeedKph,
		PauseEvery: time.Duration(c.PauseEveryMinutes) * time.Minute,
		PauseFor:   time.Duration(c.PauseMinutes) * time.Minute,
	}
}

// Validate checks the road model and trial count.
func (c MissionConfig) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	return c.Travel().Validate()
}
