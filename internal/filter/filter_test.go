package filter

import (
	"testing"
	"time"

	"optionscout/internal/models"
)

var now = time.Date(2024, 7, 1, 14, 0, 0, 0, time.UTC)

func baseConfig() Config {
	return Config{
		MinOpenInterest: 100,
		MaxSpreadPct:    40,
		DTEMin:          0,
		DTEMax:          14,
		MinPrice:        0.15,
		MaxPrice:        500,
		Now:             now,
	}
}

func contract(mut func(*models.OptionContract)) models.OptionContract {
	c := models.OptionContract{
		Symbol:       "SPY",
		Expiry:       now.AddDate(0, 0, 7),
		Type:         models.OptionCall,
		Strike:       450,
		Bid:          2.0,
		Ask:          2.2,
		Mid:          2.1,
		SpreadPct:    9.5,
		OpenInterest: 500,
		ImpliedVol:   0.22,
	}
	if mut != nil {
		mut(&c)
	}
	return c
}

func TestApply_HardPass(t *testing.T) {
	out := Apply([]models.OptionContract{contract(nil)}, baseConfig())
	if len(out.HardPass) != 1 || len(out.SoftPass) != 0 || out.Stats.Total() != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestApply_RejectionReasons(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*models.OptionContract)
		want func(Stats) int
	}{
		{"thin_oi", func(c *models.OptionContract) { c.OpenInterest = 3 }, func(s Stats) int { return s.ThinOI }},
		{"wide_spread", func(c *models.OptionContract) { c.SpreadPct = 95 }, func(s Stats) int { return s.WideSpread }},
		{"bad_dte", func(c *models.OptionContract) { c.Expiry = now.AddDate(0, 2, 0) }, func(s Stats) int { return s.BadDTE }},
		{"bad_price_low", func(c *models.OptionContract) { c.Mid = 0.05 }, func(s Stats) int { return s.BadPrice }},
		{"bad_price_high", func(c *models.OptionContract) { c.Mid = 900 }, func(s Stats) int { return s.BadPrice }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Apply([]models.OptionContract{contract(tc.mut)}, baseConfig())
			if len(out.HardPass) != 0 {
				t.Fatalf("contract passed hard filters: %+v", out.HardPass)
			}
			if len(out.SoftPass) != 0 {
				t.Fatalf("contract passed soft filters: %+v", out.SoftPass)
			}
			if got := tc.want(out.Stats); got != 1 {
				t.Errorf("reason counter = %d, want 1 (stats %+v)", got, out.Stats)
			}
		})
	}
}

func TestApply_SoftPassBand(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*models.OptionContract)
	}{
		// Inside spread x1.25 band: 40 < 45 <= 50.
		{"slightly_wide_spread", func(c *models.OptionContract) { c.SpreadPct = 45 }},
		// Inside OI x0.5 band: 50 <= 60 < 100.
		{"slightly_thin_oi", func(c *models.OptionContract) { c.OpenInterest = 60 }},
		// Inside price x0.75 band: 0.1125 <= 0.12 < 0.15.
		{"slightly_cheap", func(c *models.OptionContract) { c.Mid = 0.12 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Apply([]models.OptionContract{contract(tc.mut)}, baseConfig())
			if len(out.HardPass) != 0 {
				t.Fatalf("contract unexpectedly hard-passed")
			}
			if len(out.SoftPass) != 1 {
				t.Fatalf("contract not soft-passed: stats %+v", out.Stats)
			}
		})
	}
}

func TestApply_StrikeRange(t *testing.T) {
	cfg := baseConfig()
	cfg.StrikeLo = 440
	cfg.StrikeHi = 460

	inside := contract(nil)
	outside := contract(func(c *models.OptionContract) { c.Strike = 500 })

	out := Apply([]models.OptionContract{inside, outside}, cfg)
	if len(out.HardPass) != 1 {
		t.Fatalf("hard pass = %d, want 1", len(out.HardPass))
	}
	if out.Stats.OutOfRange != 1 {
		t.Errorf("out_of_range = %d, want 1", out.Stats.OutOfRange)
	}
}

func TestApply_EveryRowClassifiedOnce(t *testing.T) {
	rows := []models.OptionContract{
		contract(nil),
		contract(func(c *models.OptionContract) { c.OpenInterest = 60 }),
		contract(func(c *models.OptionContract) { c.OpenInterest = 0 }),
		contract(func(c *models.OptionContract) { c.SpreadPct = 200 }),
		contract(func(c *models.OptionContract) { c.Mid = 0.01 }),
	}

	out := Apply(rows, baseConfig())
	total := len(out.HardPass) + len(out.SoftPass) + out.Stats.Total()
	if total != len(rows) {
		t.Errorf("classified %d rows, want %d (outcome %+v)", total, len(rows), out)
	}
}
