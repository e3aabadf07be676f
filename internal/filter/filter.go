// Package filter rejects illiquid or low-quality contracts and classifies
// the survivors into hard-pass and soft-pass bands.
package filter

import (
	"time"

	"optionscout/internal/models"
)

// Soft-pass relaxation factors. The soft band exists so a quiet or illiquid
// day degrades to "weaker candidates" instead of an empty run.
const (
	softSpreadFactor = 1.25
	softOIFactor     = 0.5
	softPriceFactor  = 0.75
)

// Config holds the hard filter thresholds. All thresholds are explicit
// values passed in by the caller; nothing is read from the process
// environment.
type Config struct {
	MinOpenInterest int64
	MaxSpreadPct    float64
	DTEMin          int
	DTEMax          int
	MinPrice        float64
	MaxPrice        float64
	StrikeLo        float64 // 0 disables the band check
	StrikeHi        float64
	Now             time.Time // DTE reference; zero value means time.Now()
}

// RejectReason identifies why a contract was rejected.
type RejectReason string

const (
	RejectThinOI     RejectReason = "thin_oi"
	RejectWideSpread RejectReason = "wide_spread"
	RejectBadDTE     RejectReason = "bad_dte"
	RejectBadPrice   RejectReason = "bad_price"
	RejectOutOfRange RejectReason = "out_of_range"
)

// Stats counts rejections per reason. It exists for observability only and
// never drives control flow.
type Stats struct {
	ThinOI     int
	WideSpread int
	BadDTE     int
	BadPrice   int
	OutOfRange int
}

// Total returns the number of rejected contracts.
func (s Stats) Total() int {
	return s.ThinOI + s.WideSpread + s.BadDTE + s.BadPrice + s.OutOfRange
}

// Outcome partitions the input: every row lands in exactly one of HardPass,
// SoftPass or the rejection stats.
type Outcome struct {
	HardPass []models.OptionContract
	SoftPass []models.OptionContract
	Stats    Stats
}

// Apply classifies every contract against cfg. Hard pass requires meeting
// every threshold exactly; soft pass is the same check against thresholds
// relaxed by fixed factors. Callers use SoftPass only when HardPass is
// empty, preferring hard-pass contracts.
func Apply(rows []models.OptionContract, cfg Config) Outcome {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	soft := cfg.relaxed()

	out := Outcome{}
	for _, c := range rows {
		if reason, ok := check(c, cfg); ok {
			out.HardPass = append(out.HardPass, c)
		} else if _, softOK := check(c, soft); softOK {
			out.SoftPass = append(out.SoftPass, c)
		} else {
			out.Stats.count(reason)
		}
	}
	return out
}

// relaxed derives the soft-pass thresholds.
func (c Config) relaxed() Config {
	soft := c
	soft.MaxSpreadPct = c.MaxSpreadPct * softSpreadFactor
	soft.MinOpenInterest = int64(float64(c.MinOpenInterest) * softOIFactor)
	soft.MinPrice = c.MinPrice * softPriceFactor
	return soft
}

// check tests one contract; on failure it reports the first failing reason.
func check(c models.OptionContract, cfg Config) (RejectReason, bool) {
	if c.OpenInterest < cfg.MinOpenInterest {
		return RejectThinOI, false
	}
	if c.SpreadPct > cfg.MaxSpreadPct {
		return RejectWideSpread, false
	}
	if dte := c.DTE(cfg.Now); dte < cfg.DTEMin || dte > cfg.DTEMax {
		return RejectBadDTE, false
	}
	if c.Mid < cfg.MinPrice || (cfg.MaxPrice > 0 && c.Mid > cfg.MaxPrice) {
		return RejectBadPrice, false
	}
	if cfg.StrikeLo > 0 && cfg.StrikeHi > 0 && (c.Strike < cfg.StrikeLo || c.Strike > cfg.StrikeHi) {
		return RejectOutOfRange, false
	}
	return "", true
}

func (s *Stats) count(reason RejectReason) {
	switch reason {
	case RejectThinOI:
		s.ThinOI++
	case RejectWideSpread:
		s.WideSpread++
	case RejectBadDTE:
		s.BadDTE++
	case RejectBadPrice:
		s.BadPrice++
	case RejectOutOfRange:
		s.OutOfRange++
	}
}
