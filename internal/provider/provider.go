// Package provider abstracts the market data sources the scanner reads from.
package provider

import (
	"context"
	"time"

	"optionscout/internal/models"
)

// ChainSnapshot is a raw option chain pull for one underlying, before any
// sanitization.
type ChainSnapshot struct {
	Symbol    string
	Spot      float64
	Rows      []models.OptionContract
	FetchedAt time.Time
}

// PriceHistoryProvider serves historical bars for an underlying.
type PriceHistoryProvider interface {
	PriceHistory(ctx context.Context, symbol, interval string, lookbackDays int) (models.PriceSeries, error)
}

// OptionChainProvider serves the current option chain for an underlying.
type OptionChainProvider interface {
	OptionChain(ctx context.Context, symbol string) (ChainSnapshot, error)
}

// MarketData is the full data surface the scanner requires.
type MarketData interface {
	PriceHistoryProvider
	OptionChainProvider
}
