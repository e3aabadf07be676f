// Package estimate approximates the expected option price change over a
// horizon via a Taylor expansion in the forecasted move and IV shift.
package estimate

import (
	"math"

	"optionscout/internal/models"
)

// Direction selects how the unsigned forecast move is applied per contract.
type Direction string

const (
	// DirectionFavorable assigns +move to calls and -move to puts: each
	// contract is scored against the scenario that favors its own type.
	// This is an optimistic modeling choice, not a directional forecast.
	DirectionFavorable Direction = "favorable"
	// DirectionSigned applies the same signed move to calls and puts, so
	// ROI reflects a single scenario for the underlying.
	DirectionSigned Direction = "signed"
)

// Config holds estimator settings.
type Config struct {
	Direction Direction
}

// Result holds the expected dollar change and ROI for one contract.
type Result struct {
	ExpChange float64
	ExpROI    float64
}

// ExpectedChange applies a second-order expansion in spot and a first-order
// expansion in time and vol:
//
//	dP = delta*dS + 0.5*gamma*dS^2 + theta_day*(h/24) + vega_pt*dIV
//
// The gamma term uses the squared move regardless of sign, so convexity is
// never penalized; theta is a daily drag scaled to the fractional-day
// horizon. If mid or any input is unusable, the contract is returned with
// zero change and -Inf ROI so it sorts to the bottom instead of erroring.
func ExpectedChange(c models.OptionContract, f models.ForecastResult, horizonHours int, cfg Config) Result {
	if degenerate(c, f) {
		return Result{ExpChange: 0, ExpROI: math.Inf(-1)}
	}

	dS := signedMove(c.Type, f.ExpDS, cfg.Direction)

	expChange := c.Greeks.Delta*dS +
		0.5*c.Greeks.Gamma*dS*dS +
		c.Greeks.ThetaPerDay*(float64(horizonHours)/24) +
		c.Greeks.VegaPerVolPoint*f.ExpDIVPts

	return Result{
		ExpChange: expChange,
		ExpROI:    100 * expChange / c.Mid,
	}
}

// Score wraps ExpectedChange into a ScoredIdea with the tier left unset;
// the ranker assigns tiers after the cross-symbol sort.
func Score(c models.OptionContract, f models.ForecastResult, horizonHours int, cfg Config) models.ScoredIdea {
	r := ExpectedChange(c, f, horizonHours, cfg)
	return models.ScoredIdea{
		Contract:  c,
		ExpChange: r.ExpChange,
		ExpROI:    r.ExpROI,
		Tier:      models.TierReject,
	}
}

// signedMove resolves the direction convention. The forecaster produces an
// unsigned magnitude; direction is assigned per option type, never guessed
// from the forecast itself.
func signedMove(t models.OptionType, expDS float64, d Direction) float64 {
	if d == DirectionSigned {
		return expDS
	}
	if t == models.OptionPut {
		return -expDS
	}
	return expDS
}

func degenerate(c models.OptionContract, f models.ForecastResult) bool {
	if c.Mid <= 0 || math.IsNaN(c.Mid) || math.IsInf(c.Mid, 0) {
		return true
	}
	// Zero-valued Greeks on an unpriced contract are indistinguishable
	// from real ones, so absence of Greeks is degenerate on its own.
	if !c.HasGreeks || !c.Greeks.Finite() {
		return true
	}
	for _, v := range []float64{f.ExpDS, f.ExpDIVPts} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
