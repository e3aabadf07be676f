package estimate

import (
	"math"
	"testing"
	"time"

	"optionscout/internal/models"
)

func idea(t models.OptionType) models.OptionContract {
	return models.OptionContract{
		Symbol: "SPY",
		Expiry: time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC),
		Type:   t,
		Strike: 450,
		Mid:       2.0,
		HasGreeks: true,
		Greeks: models.Greeks{
			Delta:           0.5,
			Gamma:           0.08,
			ThetaPerDay:     -0.05,
			VegaPerVolPoint: 0.12,
			RhoPerPct:       0.02,
		},
	}
}

func forecast(expDS, expDIV float64) models.ForecastResult {
	return models.ForecastResult{
		Symbol:          "SPY",
		Spot:            450,
		ExpDS:           expDS,
		ExpDIVPts:       expDIV,
		HorizonHours:    2,
		EstimatorSource: models.EstimatorRobust,
	}
}

func TestExpectedChange_CallTaylorTerms(t *testing.T) {
	c := idea(models.OptionCall)
	f := forecast(1.5, 0.5)

	got := ExpectedChange(c, f, 2, Config{Direction: DirectionFavorable})

	// delta*dS + 0.5*gamma*dS^2 + theta*(2/24) + vega*dIV
	want := 0.5*1.5 + 0.5*0.08*1.5*1.5 + (-0.05)*(2.0/24.0) + 0.12*0.5
	if math.Abs(got.ExpChange-want) > 1e-12 {
		t.Errorf("ExpChange = %v, want %v", got.ExpChange, want)
	}
	wantROI := 100 * want / 2.0
	if math.Abs(got.ExpROI-wantROI) > 1e-12 {
		t.Errorf("ExpROI = %v, want %v", got.ExpROI, wantROI)
	}
}

func TestExpectedChange_PutGetsDownMove(t *testing.T) {
	// Put delta is negative; with the favorable convention the move is
	// negative, so the delta term contributes positively.
	c := idea(models.OptionPut)
	c.Greeks.Delta = -0.5
	f := forecast(1.5, 0.5)

	got := ExpectedChange(c, f, 2, Config{Direction: DirectionFavorable})

	want := -0.5*(-1.5) + 0.5*0.08*1.5*1.5 + (-0.05)*(2.0/24.0) + 0.12*0.5
	if math.Abs(got.ExpChange-want) > 1e-12 {
		t.Errorf("ExpChange = %v, want %v", got.ExpChange, want)
	}
}

func TestExpectedChange_SignedDirectionSharesScenario(t *testing.T) {
	call := idea(models.OptionCall)
	put := idea(models.OptionPut)
	put.Greeks.Delta = -0.5
	f := forecast(1.5, 0)

	cfg := Config{Direction: DirectionSigned}
	callRes := ExpectedChange(call, f, 2, cfg)
	putRes := ExpectedChange(put, f, 2, cfg)

	// Same +1.5 scenario: the call's delta term gains, the put's loses.
	if callRes.ExpChange <= putRes.ExpChange {
		t.Errorf("signed direction: call %v should exceed put %v on an up move",
			callRes.ExpChange, putRes.ExpChange)
	}
}

func TestExpectedChange_GammaTermMonotonicInMove(t *testing.T) {
	c := idea(models.OptionCall)
	c.Greeks.Delta = 0 // isolate the gamma term
	c.Greeks.ThetaPerDay = 0
	c.Greeks.VegaPerVolPoint = 0

	prev := -1.0
	for _, dS := range []float64{0, 0.5, 1, 2, 4, 8} {
		got := ExpectedChange(c, forecast(dS, 0), 2, Config{Direction: DirectionFavorable})
		if math.Abs(got.ExpChange) < prev {
			t.Fatalf("gamma contribution decreased when move grew to %v", dS)
		}
		prev = math.Abs(got.ExpChange)
	}
}

func TestExpectedChange_DegenerateInputsSinkToBottom(t *testing.T) {
	f := forecast(1.5, 0.5)

	cases := []struct {
		name string
		mut  func(*models.OptionContract, *models.ForecastResult)
	}{
		{"zero_mid", func(c *models.OptionContract, _ *models.ForecastResult) { c.Mid = 0 }},
		{"negative_mid", func(c *models.OptionContract, _ *models.ForecastResult) { c.Mid = -1 }},
		{"nan_delta", func(c *models.OptionContract, _ *models.ForecastResult) { c.Greeks.Delta = math.NaN() }},
		{"no_greeks", func(c *models.OptionContract, _ *models.ForecastResult) {
			// Unpriced contract: zero Greeks look finite but carry no signal.
			c.HasGreeks = false
			c.Greeks = models.Greeks{}
		}},
		{"inf_gamma", func(c *models.OptionContract, _ *models.ForecastResult) { c.Greeks.Gamma = math.Inf(1) }},
		{"nan_move", func(_ *models.OptionContract, f *models.ForecastResult) { f.ExpDS = math.NaN() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := idea(models.OptionCall)
			fc := f
			tc.mut(&c, &fc)

			got := ExpectedChange(c, fc, 2, Config{Direction: DirectionFavorable})
			if got.ExpChange != 0 {
				t.Errorf("ExpChange = %v, want 0", got.ExpChange)
			}
			if !math.IsInf(got.ExpROI, -1) {
				t.Errorf("ExpROI = %v, want -Inf", got.ExpROI)
			}
		})
	}
}

func TestScore_LeavesTierUnassigned(t *testing.T) {
	s := Score(idea(models.OptionCall), forecast(1.5, 0.5), 2, Config{Direction: DirectionFavorable})
	if s.Tier != models.TierReject {
		t.Errorf("tier = %q, want %q before ranking", s.Tier, models.TierReject)
	}
	if s.Contract.Symbol != "SPY" {
		t.Errorf("contract not carried through: %+v", s.Contract)
	}
}
