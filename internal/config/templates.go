package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Option Scout Configuration

[scan]
# Symbols to scan
universe = ["RELIANCE", "TCS", "HDFCBANK", "INFY", "SBIN"]
# Forecast horizon in hours
horizon_hours = 2
# Bar interval for price history
interval = "60minute"
# Days of price history to fetch
lookback_days = 15
# Strike window around spot, percent
moneyness_pct = 8.0
# Annualized risk-free rate, decimal
risk_free_rate = 0.03
# Parallel symbol workers
concurrency = 4

[forecast]
# Minimum bars required for a forecast
min_bars = 10
# Trailing window (bars) for the volatility estimate
window_bars = 7
# Percentile cutpoints of the recent absolute-return distribution
iv_ladder_pcts = [50.0, 80.0]
# Vol-point IV shift for each ladder rung (one more entry than cutpoints)
iv_ladder_shifts = [0.25, 0.5, 1.0]

[filter]
min_open_interest = 50
# Maximum spread as percent of mid
max_spread_pct = 40.0
dte_min = 0
dte_max = 14
min_price = 0.15
max_price = 500.0

[tiers]
# Minimum expected ROI (percent) for each tier
tier1_roi_min = 12.0
tier2_roi_min = 5.0
# Watchlist size when both tiers are empty
watch_top_n = 5

[estimator]
# "favorable": +move for calls, -move for puts. "signed": same move for both.
direction = "favorable"

[notifications]
enabled = false

[notifications.email]
enabled = false
smtp_host = "smtp.gmail.com"
smtp_port = 587
username = ""
password = ""
from = ""
to = ""
`

const credentialsTemplate = `# Option Scout Credentials
# Keep this file private (chmod 600).

[kite]
api_key = ""
access_token = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}
	return nil
}
