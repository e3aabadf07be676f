// Package models provides domain models for the option scanning application.
package models

import (
	"math"
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// PriceSeries is an ordered sequence of candles for one symbol.
// Timestamps are strictly increasing, one candle per sampling interval.
type PriceSeries struct {
	Symbol   string
	Interval time.Duration
	Candles  []Candle
}

// Len returns the number of candles in the series.
func (s PriceSeries) Len() int {
	return len(s.Candles)
}

// LastClose returns the most recent usable close price, or 0 if none exists.
func (s PriceSeries) LastClose() float64 {
	for i := len(s.Candles) - 1; i >= 0; i-- {
		c := s.Candles[i].Close
		if c > 0 && !math.IsNaN(c) && !math.IsInf(c, 0) {
			return c
		}
	}
	return 0
}

// HoursPerBar returns the sampling interval expressed in hours.
func (s PriceSeries) HoursPerBar() float64 {
	if s.Interval <= 0 {
		return 1
	}
	return s.Interval.Hours()
}

// LogReturns derives the log-return series from consecutive closes.
// Candles with non-positive or non-finite closes are excluded, so the
// result may be shorter than Len()-1.
func (s PriceSeries) LogReturns() []float64 {
	returns := make([]float64, 0, len(s.Candles))
	prev := 0.0
	for _, c := range s.Candles {
		px := c.Close
		if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
			continue
		}
		if prev > 0 {
			returns = append(returns, math.Log(px/prev))
		}
		prev = px
	}
	return returns
}

// ForecastResult holds the expected underlying move and IV shift for one
// symbol over a horizon. It is computed fresh per run and never cached.
type ForecastResult struct {
	Symbol          string
	Spot            float64
	ExpDS           float64 // expected absolute dollar move over the horizon
	ExpDIVPts       float64 // expected implied-volatility shift in vol points
	HorizonHours    int
	EstimatorSource string
}

// Estimator source tags.
const (
	EstimatorRobust   = "robust"
	EstimatorRealized = "realized"
	EstimatorFallback = "fallback"
)

// Tier represents a conviction bucket for a scored idea.
type Tier string

const (
	TierOne    Tier = "tier1"
	TierTwo    Tier = "tier2"
	TierWatch  Tier = "watch"
	TierReject Tier = "reject"
)

// ScoredIdea is an option contract enriched with its expected change and ROI.
// It is created by the estimator and read-only afterwards.
type ScoredIdea struct {
	Contract  OptionContract
	ExpChange float64 // expected option price change in dollars
	ExpROI    float64 // expected return in percent of mid
	Tier      Tier
}

// RunMeta carries metadata about a completed scan.
type RunMeta struct {
	Timestamp    time.Time
	HorizonHours int
	Universe     []string
	MoneynessPct float64
	DTEMin       int
	DTEMax       int
}

// RankedIdeas is the result of a full scan across the universe.
type RankedIdeas struct {
	Tier1 []ScoredIdea
	Tier2 []ScoredIdea
	Watch []ScoredIdea
	All   []ScoredIdea
	Logs  []string
	Meta  RunMeta
}

// Empty reports whether the scan produced no actionable ideas at all.
func (r RankedIdeas) Empty() bool {
	return len(r.Tier1) == 0 && len(r.Tier2) == 0 && len(r.Watch) == 0
}
