package rank

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"optionscout/internal/models"
)

func genIdea() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(-50, 50),
		gen.Int64Range(0, 100000),
		gen.Float64Range(0, 80),
	).Map(func(vals []interface{}) models.ScoredIdea {
		return models.ScoredIdea{
			Contract: models.OptionContract{
				Symbol:       "X",
				OpenInterest: vals[1].(int64),
				SpreadPct:    vals[2].(float64),
			},
			ExpROI: vals[0].(float64),
		}
	})
}

func TestTiersProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	cfg := Config{Tier1ROIMin: 12, Tier2ROIMin: 5, WatchTopN: 5}

	properties.Property("All is sorted by ROI descending", prop.ForAll(
		func(ideas []models.ScoredIdea) bool {
			out := Tiers(ideas, cfg)
			for i := 1; i < len(out.All); i++ {
				if out.All[i].ExpROI > out.All[i-1].ExpROI {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genIdea()),
	))

	properties.Property("tiers and rejects partition the input", prop.ForAll(
		func(ideas []models.ScoredIdea) bool {
			out := Tiers(ideas, cfg)
			if len(out.All) != len(ideas) {
				return false
			}
			rejects := 0
			for _, s := range out.All {
				if s.Tier == models.TierReject {
					rejects++
				}
			}
			return len(out.Tier1)+len(out.Tier2)+len(out.Watch)+rejects == len(ideas)
		},
		gen.SliceOf(genIdea()),
	))

	properties.Property("watch fills to WatchTopN when both tiers are empty", prop.ForAll(
		func(rois []float64) bool {
			ideas := make([]models.ScoredIdea, len(rois))
			for i, r := range rois {
				ideas[i] = models.ScoredIdea{ExpROI: r}
			}
			out := Tiers(ideas, cfg)
			want := cfg.WatchTopN
			if len(ideas) < want {
				want = len(ideas)
			}
			return len(out.Watch) == want
		},
		gen.SliceOf(gen.Float64Range(-50, 4.99)),
	))

	properties.TestingRun(t)
}
