// Package chain cleans raw option-chain snapshots before filtering.
package chain

import (
	"math"
	"sort"

	"optionscout/internal/models"
)

// Sanitize cleans a raw chain snapshot:
//
//  1. swaps bid/ask wherever bid > ask (a data error, not a trading signal)
//  2. recomputes mid as (bid+ask)/2 wherever it is missing or non-positive
//  3. drops rows whose mid is still non-positive or non-finite
//  4. computes spread as a percentage of mid (+Inf when mid is unusable,
//     so such rows always fail spread filters instead of passing silently)
//  5. restricts strikes to spot*(1 ± moneynessPct/100)
//
// The input is not mutated; output rows are ordered by strike ascending,
// then expiry, then type. Duplicate (expiry, strike, type) rows are kept:
// deduplication is the snapshot supplier's job. Sanitize is idempotent.
func Sanitize(rows []models.OptionContract, spot, moneynessPct float64) []models.OptionContract {
	lo := spot * (1 - moneynessPct/100)
	hi := spot * (1 + moneynessPct/100)

	out := make([]models.OptionContract, 0, len(rows))
	for _, row := range rows {
		c := row

		if c.Bid > c.Ask {
			c.Bid, c.Ask = c.Ask, c.Bid
		}

		if !(c.Mid > 0) || math.IsNaN(c.Mid) || math.IsInf(c.Mid, 0) {
			c.Mid = (c.Bid + c.Ask) / 2
		}
		if !(c.Mid > 0) || math.IsNaN(c.Mid) || math.IsInf(c.Mid, 0) {
			continue
		}

		c.SpreadPct = spreadPct(c.Bid, c.Ask, c.Mid)

		if c.Strike < lo || c.Strike > hi {
			continue
		}

		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Strike != out[j].Strike {
			return out[i].Strike < out[j].Strike
		}
		if !out[i].Expiry.Equal(out[j].Expiry) {
			return out[i].Expiry.Before(out[j].Expiry)
		}
		return out[i].Type < out[j].Type
	})

	return out
}

// spreadPct returns the bid/ask spread as a percentage of mid. A mid at or
// below zero maps to +Inf so the row can never pass a spread threshold.
func spreadPct(bid, ask, mid float64) float64 {
	if mid <= 0 || math.IsNaN(mid) || math.IsInf(mid, 0) {
		return math.Inf(1)
	}
	return math.Max(ask-bid, 0) / mid * 100
}
