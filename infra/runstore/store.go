// Package runstore keeps the history of optimisation runs so past results
// can be listed and compared.
package runstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/slotplan/core/model"
)

// RunRecord captures one optimisation run and its best schedule.
type RunRecord struct {
	ID            string             `json:"id"`
	StartedAt     time.Time          `json:"started_at"`
	DurationSec   float64            `json:"duration_s"`
	Trucks        int                `json:"trucks"`
	Segments      int                `json:"segments"`
	MaxIterations int                `json:"max_iterations"`
	TabuTenure    int                `json:"tabu_tenure"`
	TrialCount    int                `json:"trial_count"`
	Seed          uint64             `json:"seed"`
	Iterations    int                `json:"iterations"`
	Accepted      int                `json:"accepted"`
	TabuHits      int                `json:"tabu_hits"`
	BestTotal     float64            `json:"best_total_minutes"`
	Finish        string             `json:"finish_segment"`
	Canceled      bool               `json:"canceled"`
	Assignments   []model.Assignment `json:"assignments"`
}

// Query defines filters for retrieving records. Zero values match
// everything; Limit keeps the most recent records.
type Query struct {
	Start time.Time
	End   time.Time
	ID    string
	Limit int
}

func (q Query) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.StartedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.StartedAt.After(q.End) {
		return false
	}
	return q.ID == "" || r.ID == q.ID
}

func (q Query) limit(res []RunRecord) []RunRecord {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// Config selects the store backend.
type Config struct {
	// Backend is "sqlite", "jsonl" or "none".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "sqlite"
	}
	if c.Path == "" {
		switch strings.ToLower(c.Backend) {
		case "sqlite":
			c.Path = "slotplan.db"
		case "jsonl":
			c.Path = "slotplan-runs.jsonl"
		}
	}
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "sqlite", "jsonl":
		if c.Path == "" {
			return fmt.Errorf("store path is required for backend %s", c.Backend)
		}
		return nil
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
}

// New opens the store described by cfg.
func New(cfg Config) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Backend) {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	default:
		return NopStore{}, nil
	}
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                      { return nil }
