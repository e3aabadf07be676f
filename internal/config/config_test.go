package config

import (
	"testing"

	apperrors "optionscout/internal/errors"
)

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Scan.Universe = []string{"RELIANCE"}
	return cfg
}

func TestValidateWrapsErrConfigInvalid(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"bad_horizon", func(c *Config) { c.Scan.HorizonHours = -1 }},
		{"bad_moneyness", func(c *Config) { c.Scan.MoneynessPct = 150 }},
		{"inverted_dte", func(c *Config) { c.Filter.DTEMin = 10; c.Filter.DTEMax = 5 }},
		{"inverted_tiers", func(c *Config) { c.Tiers.Tier1ROIMin = 1; c.Tiers.Tier2ROIMin = 5 }},
		{"bad_direction", func(c *Config) { c.Estimator.Direction = "sideways" }},
		{"ladder_mismatch", func(c *Config) { c.Forecast.IVLadderShift = []float64{0.5} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mut(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !apperrors.Is(err, apperrors.ErrConfigInvalid) {
				t.Errorf("err = %v, want ErrConfigInvalid", err)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestTemplateLoadsAsValidNSEConfig(t *testing.T) {
	dir := t.TempDir()
	if err := createTemplateConfig(dir); err != nil {
		t.Fatalf("createTemplateConfig: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Scan.Universe) == 0 {
		t.Fatal("template universe is empty")
	}
	// The only provider speaks NSE, so the out-of-box universe must too.
	nse := map[string]bool{"RELIANCE": true, "TCS": true, "HDFCBANK": true, "INFY": true, "SBIN": true}
	for _, sym := range cfg.Scan.Universe {
		if !nse[sym] {
			t.Errorf("template universe contains non-NSE symbol %q", sym)
		}
	}
	if cfg.Scan.Interval != "60minute" {
		t.Errorf("template interval = %q, want 60minute", cfg.Scan.Interval)
	}
}
