// Package forecast estimates the short-horizon underlying volatility, the
// expected absolute price move and the expected implied-volatility shift.
package forecast

import (
	"math"

	"github.com/montanaflynn/stats"

	"optionscout/internal/errors"
	"optionscout/internal/models"
)

// madScale converts a median absolute deviation into a consistent estimate
// of the standard deviation under normality.
const madScale = 0.6745

// Config holds forecaster settings.
type Config struct {
	// MinBars is the minimum series length accepted; shorter series are
	// rejected with ErrInsufficientData.
	MinBars int
	// WindowBars sizes the trailing log-return window used for the
	// volatility estimate, roughly one trading day of bars.
	WindowBars int
	// IVLadder maps the most recent absolute return's position in its
	// trailing distribution to a vol-point IV shift.
	IVLadder IVLadder
}

// IVLadder is a discrete regime classifier: the most recent absolute return
// is compared against percentile cutpoints of its trailing distribution and
// mapped to a vol-point shift. Cutpoints are ascending percentiles in
// (0, 100); Shifts has exactly one more entry than Cutpoints. The defaults
// are a tunable mapping, not a universal constant.
type IVLadder struct {
	Cutpoints []float64
	Shifts    []float64
}

// DefaultIVLadder returns the default regime ladder: small shift up to the
// 50th percentile, medium to the 80th, large beyond.
func DefaultIVLadder() IVLadder {
	return IVLadder{
		Cutpoints: []float64{50, 80},
		Shifts:    []float64{0.25, 0.5, 1.0},
	}
}

// DefaultConfig returns forecaster settings suitable for hourly bars.
func DefaultConfig() Config {
	return Config{
		MinBars:    10,
		WindowBars: 7,
		IVLadder:   DefaultIVLadder(),
	}
}

// Forecaster derives ForecastResults from price series. It is stateless and
// safe for concurrent use.
type Forecaster struct {
	cfg Config
}

// New creates a Forecaster with the given settings.
func New(cfg Config) *Forecaster {
	if cfg.MinBars <= 0 {
		cfg.MinBars = DefaultConfig().MinBars
	}
	if cfg.WindowBars <= 0 {
		cfg.WindowBars = DefaultConfig().WindowBars
	}
	if len(cfg.IVLadder.Shifts) != len(cfg.IVLadder.Cutpoints)+1 {
		cfg.IVLadder = DefaultIVLadder()
	}
	return &Forecaster{cfg: cfg}
}

// Forecast produces the expected move and IV shift for one symbol over the
// given horizon. The only error is ErrInsufficientData for series shorter
// than MinBars; all other data-quality degeneracy yields a usable result
// tagged EstimatorFallback — a zero-confidence forecast is a signal to
// downstream filters, not a failure.
func (f *Forecaster) Forecast(series models.PriceSeries, horizonHours int) (models.ForecastResult, error) {
	if series.Len() < f.cfg.MinBars {
		return models.ForecastResult{}, errors.Wrapf(errors.ErrInsufficientData,
			"%s: %d bars, need %d", series.Symbol, series.Len(), f.cfg.MinBars)
	}
	if horizonHours <= 0 {
		return models.ForecastResult{}, errors.NewValidationError("horizon_hours", horizonHours, "must be positive")
	}

	result := models.ForecastResult{
		Symbol:          series.Symbol,
		Spot:            series.LastClose(),
		HorizonHours:    horizonHours,
		EstimatorSource: models.EstimatorFallback,
	}

	returns := series.LogReturns()
	if len(returns) == 0 || result.Spot <= 0 {
		return result, nil
	}

	window := returns
	if len(window) > f.cfg.WindowBars {
		window = window[len(window)-f.cfg.WindowBars:]
	}

	sigmaBar, source := robustScale(window)
	if sigmaBar <= 0 {
		return result, nil
	}

	// Square-root-of-time scaling from per-bar to per-horizon.
	sigmaH := sigmaBar * math.Sqrt(float64(horizonHours)/series.HoursPerBar())

	result.ExpDS = result.Spot * sigmaH
	result.ExpDIVPts = f.cfg.IVLadder.classify(window)
	result.EstimatorSource = source
	return result, nil
}

// robustScale estimates the per-bar return scale. MAD is preferred because
// intraday returns are fat-tailed and a single outlier bar must not dominate
// the estimate; plain standard deviation is the backstop when MAD
// degenerates (for example, too few distinct values).
func robustScale(window []float64) (float64, string) {
	mad, err := stats.MedianAbsoluteDeviation(window)
	if err == nil && usable(mad) {
		return mad / madScale, models.EstimatorRobust
	}

	sd, err := stats.StandardDeviation(window)
	if err == nil && usable(sd) {
		return sd, models.EstimatorRealized
	}

	return 0, models.EstimatorFallback
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// classify maps the most recent absolute return to a vol-point shift by
// ranking it within the trailing absolute-return distribution.
func (l IVLadder) classify(window []float64) float64 {
	if len(window) == 0 || len(l.Shifts) == 0 {
		return 0
	}

	abs := make([]float64, len(window))
	for i, r := range window {
		abs[i] = math.Abs(r)
	}
	last := abs[len(abs)-1]

	for i, pct := range l.Cutpoints {
		threshold, err := stats.Percentile(abs, pct)
		if err != nil {
			return l.Shifts[0]
		}
		if last <= threshold {
			return l.Shifts[i]
		}
	}
	return l.Shifts[len(l.Shifts)-1]
}
