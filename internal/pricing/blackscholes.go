// Package pricing implements the Black-Scholes closed-form option pricer
// and Greeks engine.
package pricing

import (
	"math"

	"optionscout/internal/models"
)

// eps floors every input that appears in a division or logarithm, so the
// pricer never returns NaN or Inf.
const eps = 1e-12

// Input holds the parameters for a single contract valuation.
type Input struct {
	Spot         float64
	Strike       float64
	YearsToExp   float64
	RiskFreeRate float64
	ImpliedVol   float64 // annualized, decimal
	Type         models.OptionType
}

// Result holds the theoretical price and sensitivities.
//
// Unit conventions, which the expected-change estimator relies on:
//   - ThetaPerDay is the annualized theta divided by 365 (calendar days).
//   - VegaPerVolPoint is the annualized vega times 0.01 (per +1 vol point).
//   - RhoPerPct is the annualized rho times 0.01 (per +1 pct point of rate).
type Result struct {
	Price  float64
	Greeks models.Greeks
	D1     float64
	D2     float64
}

// PriceGreeks computes the Black-Scholes price and Greeks for one contract.
// Inputs are clamped to a positive floor, so the function is total: every
// finite input produces a finite output.
func PriceGreeks(in Input) Result {
	s := math.Max(in.Spot, eps)
	k := math.Max(in.Strike, eps)
	t := math.Max(in.YearsToExp, eps)
	sigma := math.Max(in.ImpliedVol, eps)
	r := in.RiskFreeRate

	sigSqrtT := sigma * math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / sigSqrtT
	d2 := d1 - sigSqrtT

	nd1 := normPDF(d1)
	disc := math.Exp(-r * t)

	var price, delta, rhoAnnual, thetaCarry float64
	if in.Type == models.OptionPut {
		price = k*disc*normCDF(-d2) - s*normCDF(-d1)
		delta = normCDF(d1) - 1
		rhoAnnual = -k * t * disc * normCDF(-d2)
		thetaCarry = r * k * disc * normCDF(-d2)
	} else {
		price = s*normCDF(d1) - k*disc*normCDF(d2)
		delta = normCDF(d1)
		rhoAnnual = k * t * disc * normCDF(d2)
		thetaCarry = -r * k * disc * normCDF(d2)
	}

	// Gamma and vega are identical for calls and puts.
	gamma := nd1 / (s * sigSqrtT)
	vegaAnnual := s * nd1 * math.Sqrt(t)
	thetaAnnual := -(s*nd1*sigma)/(2*math.Sqrt(t)) + thetaCarry

	return Result{
		Price: price,
		Greeks: models.Greeks{
			Delta:           delta,
			Gamma:           gamma,
			ThetaPerDay:     thetaAnnual / 365,
			VegaPerVolPoint: vegaAnnual * 0.01,
			RhoPerPct:       rhoAnnual * 0.01,
		},
		D1: d1,
		D2: d2,
	}
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// normCDF is the standard normal cumulative distribution, via erf.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
