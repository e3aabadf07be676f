// Package store provides data persistence implementations.
package store

import (
	"context"
	"time"

	"optionscout/internal/models"
)

// FilterPreset is a named, persisted set of liquidity filter thresholds.
type FilterPreset struct {
	Name            string  `json:"name"`
	MinOpenInterest int64   `json:"min_open_interest"`
	MaxSpreadPct    float64 `json:"max_spread_pct"`
	DTEMin          int     `json:"dte_min"`
	DTEMax          int     `json:"dte_max"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
}

// RunSummary is the journal view of one completed scan.
type RunSummary struct {
	ID           int64
	Timestamp    time.Time
	HorizonHours int
	Universe     []string
	Tier1Count   int
	Tier2Count   int
	WatchCount   int
	TotalScored  int
}

// DataStore is the persistence surface of the application: the scan journal,
// saved filter presets and named watchlists.
type DataStore interface {
	SaveRun(ctx context.Context, run models.RankedIdeas) (int64, error)
	GetRuns(ctx context.Context, limit int) ([]RunSummary, error)
	GetRunIdeas(ctx context.Context, runID int64) ([]models.ScoredIdea, error)

	SaveFilterPreset(ctx context.Context, preset FilterPreset) error
	GetFilterPreset(ctx context.Context, name string) (*FilterPreset, error)
	ListFilterPresets(ctx context.Context) ([]string, error)
	DeleteFilterPreset(ctx context.Context, name string) error

	AddToWatchlist(ctx context.Context, listName, symbol string) error
	RemoveFromWatchlist(ctx context.Context, listName, symbol string) error
	GetWatchlist(ctx context.Context, listName string) ([]string, error)

	Close() error
}
