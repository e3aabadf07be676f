// Package rank sorts scored ideas across all symbols and partitions them
// into conviction tiers.
package rank

import (
	"sort"

	"optionscout/internal/models"
)

// Config holds tier thresholds.
type Config struct {
	Tier1ROIMin float64
	Tier2ROIMin float64
	WatchTopN   int
}

// Ranked holds the tier partition of a scan.
type Ranked struct {
	Tier1 []models.ScoredIdea
	Tier2 []models.ScoredIdea
	Watch []models.ScoredIdea
	All   []models.ScoredIdea // full sorted list, tiers assigned
}

// Tiers sorts ideas by expected ROI descending — ties broken by larger open
// interest, then tighter spread — and partitions them by the ROI thresholds.
// When both tiers come up empty the top WatchTopN ideas populate the watch
// list, even at negative ROI: an empty run must stay distinguishable from a
// failed one.
func Tiers(ideas []models.ScoredIdea, cfg Config) Ranked {
	sorted := make([]models.ScoredIdea, len(ideas))
	copy(sorted, ideas)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ExpROI != b.ExpROI {
			return a.ExpROI > b.ExpROI
		}
		if a.Contract.OpenInterest != b.Contract.OpenInterest {
			return a.Contract.OpenInterest > b.Contract.OpenInterest
		}
		return a.Contract.SpreadPct < b.Contract.SpreadPct
	})

	out := Ranked{}
	for i := range sorted {
		switch {
		case sorted[i].ExpROI >= cfg.Tier1ROIMin:
			sorted[i].Tier = models.TierOne
			out.Tier1 = append(out.Tier1, sorted[i])
		case sorted[i].ExpROI >= cfg.Tier2ROIMin:
			sorted[i].Tier = models.TierTwo
			out.Tier2 = append(out.Tier2, sorted[i])
		default:
			sorted[i].Tier = models.TierReject
		}
	}

	if len(out.Tier1) == 0 && len(out.Tier2) == 0 {
		n := cfg.WatchTopN
		if n > len(sorted) {
			n = len(sorted)
		}
		for i := 0; i < n; i++ {
			sorted[i].Tier = models.TierWatch
			out.Watch = append(out.Watch, sorted[i])
		}
	}

	out.All = sorted
	return out
}
