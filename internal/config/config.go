// Package config provides configuration management for the option scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "optionscout/internal/errors"
)

// Config holds all application configuration. It is loaded once at startup
// and passed into components as an immutable value; no component reads
// process-wide state.
type Config struct {
	Scan          ScanConfig         `mapstructure:"scan"`
	Forecast      ForecastConfig     `mapstructure:"forecast"`
	Filter        FilterConfig       `mapstructure:"filter"`
	Tiers         TierConfig         `mapstructure:"tiers"`
	Estimator     EstimatorConfig    `mapstructure:"estimator"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Credentials   Credentials        `mapstructure:"-"` // Loaded separately
}

// ScanConfig holds run-level scan settings.
type ScanConfig struct {
	Universe     []string `mapstructure:"universe"`
	HorizonHours int      `mapstructure:"horizon_hours"`
	Interval     string   `mapstructure:"interval"`      // bar interval, e.g. "60minute"
	LookbackDays int      `mapstructure:"lookback_days"` // price history depth
	MoneynessPct float64  `mapstructure:"moneyness_pct"` // strike window around spot
	RiskFreeRate float64  `mapstructure:"risk_free_rate"`
	Concurrency  int      `mapstructure:"concurrency"`
}

// ForecastConfig holds volatility forecaster settings.
type ForecastConfig struct {
	MinBars       int       `mapstructure:"min_bars"`
	WindowBars    int       `mapstructure:"window_bars"` // trailing window, about one trading day
	IVLadderPcts  []float64 `mapstructure:"iv_ladder_pcts"`
	IVLadderShift []float64 `mapstructure:"iv_ladder_shifts"`
}

// FilterConfig holds liquidity/quality filter thresholds.
type FilterConfig struct {
	MinOpenInterest int64   `mapstructure:"min_open_interest"`
	MaxSpreadPct    float64 `mapstructure:"max_spread_pct"`
	DTEMin          int     `mapstructure:"dte_min"`
	DTEMax          int     `mapstructure:"dte_max"`
	MinPrice        float64 `mapstructure:"min_price"`
	MaxPrice        float64 `mapstructure:"max_price"`
}

// TierConfig holds ranking tier thresholds.
type TierConfig struct {
	Tier1ROIMin float64 `mapstructure:"tier1_roi_min"`
	Tier2ROIMin float64 `mapstructure:"tier2_roi_min"`
	WatchTopN   int     `mapstructure:"watch_top_n"`
}

// EstimatorConfig holds expected-change estimator settings.
type EstimatorConfig struct {
	// Direction convention for applying the unsigned forecast move:
	// "favorable" assigns +dS to calls and -dS to puts; "signed" applies
	// the same signed move to both types.
	Direction string `mapstructure:"direction"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Email   EmailConfig `mapstructure:"email"`
}

// EmailConfig holds email notification configuration.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

// Credentials holds API credentials.
type Credentials struct {
	Kite KiteCredentials `mapstructure:"kite"`
}

// KiteCredentials holds Kite Connect API credentials.
type KiteCredentials struct {
	APIKey      string `mapstructure:"api_key"`
	AccessToken string `mapstructure:"access_token"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optionscout"
	}
	return filepath.Join(home, ".config", "optionscout")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Credentials.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		cfg.Credentials.Kite.AccessToken = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Notifications.Email.Password = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Scan.HorizonHours == 0 {
		cfg.Scan.HorizonHours = 2
	}
	if cfg.Scan.Interval == "" {
		cfg.Scan.Interval = "60minute"
	}
	if cfg.Scan.LookbackDays == 0 {
		cfg.Scan.LookbackDays = 15
	}
	if cfg.Scan.MoneynessPct == 0 {
		cfg.Scan.MoneynessPct = 8
	}
	if cfg.Scan.RiskFreeRate == 0 {
		cfg.Scan.RiskFreeRate = 0.03
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = 4
	}
	if cfg.Forecast.MinBars == 0 {
		cfg.Forecast.MinBars = 10
	}
	if cfg.Forecast.WindowBars == 0 {
		cfg.Forecast.WindowBars = 7
	}
	if len(cfg.Forecast.IVLadderPcts) == 0 {
		cfg.Forecast.IVLadderPcts = []float64{50, 80}
		cfg.Forecast.IVLadderShift = []float64{0.25, 0.5, 1.0}
	}
	if cfg.Filter.MinOpenInterest == 0 {
		cfg.Filter.MinOpenInterest = 50
	}
	if cfg.Filter.MaxSpreadPct == 0 {
		cfg.Filter.MaxSpreadPct = 40
	}
	if cfg.Filter.DTEMax == 0 {
		cfg.Filter.DTEMax = 14
	}
	if cfg.Filter.MinPrice == 0 {
		cfg.Filter.MinPrice = 0.15
	}
	if cfg.Filter.MaxPrice == 0 {
		cfg.Filter.MaxPrice = 500
	}
	if cfg.Tiers.Tier1ROIMin == 0 {
		cfg.Tiers.Tier1ROIMin = 12
	}
	if cfg.Tiers.Tier2ROIMin == 0 {
		cfg.Tiers.Tier2ROIMin = 5
	}
	if cfg.Tiers.WatchTopN == 0 {
		cfg.Tiers.WatchTopN = 5
	}
	if cfg.Estimator.Direction == "" {
		cfg.Estimator.Direction = "favorable"
	}
}

// Validate validates the configuration. Failures wrap ErrConfigInvalid so
// callers can distinguish a bad config from a bad environment.
func (c *Config) Validate() error {
	if c.Scan.HorizonHours <= 0 {
		return fmt.Errorf("%w: horizon_hours must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Scan.MoneynessPct <= 0 || c.Scan.MoneynessPct > 100 {
		return fmt.Errorf("%w: moneyness_pct must be in (0, 100]", apperrors.ErrConfigInvalid)
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", apperrors.ErrConfigInvalid)
	}
	if c.Filter.DTEMin < 0 || c.Filter.DTEMax < c.Filter.DTEMin {
		return fmt.Errorf("%w: dte range invalid: min %d, max %d", apperrors.ErrConfigInvalid, c.Filter.DTEMin, c.Filter.DTEMax)
	}
	if c.Filter.MaxSpreadPct <= 0 {
		return fmt.Errorf("%w: max_spread_pct must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Tiers.Tier1ROIMin < c.Tiers.Tier2ROIMin {
		return fmt.Errorf("%w: tier1_roi_min (%.2f) must be >= tier2_roi_min (%.2f)",
			apperrors.ErrConfigInvalid, c.Tiers.Tier1ROIMin, c.Tiers.Tier2ROIMin)
	}
	if c.Tiers.WatchTopN < 1 {
		return fmt.Errorf("%w: watch_top_n must be at least 1", apperrors.ErrConfigInvalid)
	}
	if d := c.Estimator.Direction; d != "favorable" && d != "signed" {
		return fmt.Errorf("%w: estimator direction must be 'favorable' or 'signed', got %q", apperrors.ErrConfigInvalid, d)
	}
	if len(c.Forecast.IVLadderShift) != len(c.Forecast.IVLadderPcts)+1 {
		return fmt.Errorf("%w: iv_ladder_shifts must have one more entry than iv_ladder_pcts", apperrors.ErrConfigInvalid)
	}
	return nil
}
