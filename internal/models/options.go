package models

import (
	"math"
	"time"
)

// OptionType identifies a call or put contract.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Greeks represents the option price sensitivities in the units the
// estimator expects: theta per calendar day, vega per +1 vol point,
// rho per +1 percentage point of rate.
type Greeks struct {
	Delta           float64
	Gamma           float64
	ThetaPerDay     float64
	VegaPerVolPoint float64
	RhoPerPct       float64
}

// Finite reports whether every sensitivity is a usable number.
func (g Greeks) Finite() bool {
	for _, v := range []float64{g.Delta, g.Gamma, g.ThetaPerDay, g.VegaPerVolPoint, g.RhoPerPct} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// OptionContract represents a single row of an option chain snapshot.
// After sanitization: Bid <= Ask, Mid > 0 and SpreadPct is finite.
type OptionContract struct {
	Symbol       string
	Expiry       time.Time
	Type         OptionType
	Strike       float64
	Bid          float64
	Ask          float64
	Mid          float64
	SpreadPct    float64
	OpenInterest int64
	Volume       int64
	ImpliedVol   float64 // annualized, decimal (0.25 = 25%)
	HasGreeks    bool    // true when the chain snapshot supplied Greeks
	Greeks       Greeks
}

// DTE returns the whole days remaining to expiry as of now.
func (c OptionContract) DTE(now time.Time) int {
	d := c.Expiry.Sub(now)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// YearsToExpiry returns the ACT/365 time to expiry, floored at zero.
func (c OptionContract) YearsToExpiry(now time.Time) float64 {
	d := c.Expiry.Sub(now)
	if d < 0 {
		return 0
	}
	return d.Hours() / 24 / 365
}
