// Package scan orchestrates the per-symbol pipeline and produces the ranked
// idea list for a universe.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"optionscout/internal/chain"
	apperrors "optionscout/internal/errors"
	"optionscout/internal/estimate"
	"optionscout/internal/filter"
	"optionscout/internal/forecast"
	"optionscout/internal/logging"
	"optionscout/internal/models"
	"optionscout/internal/pricing"
	"optionscout/internal/provider"
	"optionscout/internal/rank"
)

// Options wires the scanner's collaborators and tuning knobs.
type Options struct {
	Provider     provider.MarketData
	Forecaster   *forecast.Forecaster
	Filter       filter.Config
	Tiers        rank.Config
	Estimator    estimate.Config
	Interval     string
	LookbackDays int
	MoneynessPct float64
	RiskFreeRate float64
	Concurrency  int
	Logger       zerolog.Logger
}

// Scanner runs the forecast, chain, filter and estimate stages for each
// symbol concurrently and ranks the surviving contracts across the universe.
type Scanner struct {
	opts Options
}

// New creates a Scanner. Concurrency defaults to 4 workers.
func New(opts Options) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Forecaster == nil {
		opts.Forecaster = forecast.New(forecast.DefaultConfig())
	}
	return &Scanner{opts: opts}
}

// symbolResult carries one symbol's scored contracts out of a worker.
type symbolResult struct {
	symbol string
	ideas  []models.ScoredIdea
	logs   []string
	err    error
}

// GenerateRankedIdeas runs the full pipeline for every symbol in the
// universe. A symbol that fails at any stage is logged and skipped; the
// batch never aborts because one underlying had bad data. The returned
// error is non-nil only when the universe is empty or every symbol failed.
func (s *Scanner) GenerateRankedIdeas(ctx context.Context, symbols []string, horizonHours int) (models.RankedIdeas, error) {
	if len(symbols) == 0 {
		return models.RankedIdeas{}, apperrors.ErrNoData
	}

	start := time.Now()

	workChan := make(chan string, len(symbols))
	resultChan := make(chan symbolResult, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range workChan {
				select {
				case <-ctx.Done():
					return
				default:
					resultChan <- s.scanSymbol(ctx, symbol, horizonHours)
				}
			}
		}()
	}

	go func() {
		for _, symbol := range symbols {
			select {
			case <-ctx.Done():
			case workChan <- symbol:
			}
		}
		close(workChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var ideas []models.ScoredIdea
	var logs []string
	failed := 0
	for res := range resultChan {
		logs = append(logs, res.logs...)
		if res.err != nil {
			failed++
			var symErr *apperrors.SymbolError
			stage := "scan"
			if apperrors.As(res.err, &symErr) {
				stage = symErr.Stage
			}
			logging.LogSymbolSkip(s.opts.Logger, res.symbol, stage, res.err)
			logs = append(logs, fmt.Sprintf("%s: skipped at %s: %v", res.symbol, stage, res.err))
			continue
		}
		ideas = append(ideas, res.ideas...)
	}

	if failed == len(symbols) {
		return models.RankedIdeas{}, apperrors.Wrapf(apperrors.ErrNoData, "all %d symbols failed", failed)
	}

	ranked := rank.Tiers(ideas, s.opts.Tiers)
	logging.LogRankedRun(s.opts.Logger, len(symbols), len(ranked.Tier1), len(ranked.Tier2), len(ranked.Watch), time.Since(start))

	return models.RankedIdeas{
		Tier1: ranked.Tier1,
		Tier2: ranked.Tier2,
		Watch: ranked.Watch,
		All:   ranked.All,
		Logs:  logs,
		Meta: models.RunMeta{
			Timestamp:    start,
			HorizonHours: horizonHours,
			Universe:     symbols,
			MoneynessPct: s.opts.MoneynessPct,
			DTEMin:       s.opts.Filter.DTEMin,
			DTEMax:       s.opts.Filter.DTEMax,
		},
	}, nil
}

// scanSymbol runs forecast -> chain -> filter -> estimate for one underlying.
func (s *Scanner) scanSymbol(ctx context.Context, symbol string, horizonHours int) symbolResult {
	res := symbolResult{symbol: symbol}
	log := logging.WithSymbol(s.opts.Logger, symbol)

	series, err := s.opts.Provider.PriceHistory(ctx, symbol, s.opts.Interval, s.opts.LookbackDays)
	if err != nil {
		res.err = apperrors.NewSymbolError(symbol, "forecast", err)
		return res
	}

	fc, err := s.opts.Forecaster.Forecast(series, horizonHours)
	if err != nil {
		res.err = apperrors.NewSymbolError(symbol, "forecast", err)
		return res
	}
	logging.LogForecast(log, symbol, fc.EstimatorSource, fc.Spot, fc.ExpDS, fc.ExpDIVPts)

	snap, err := s.opts.Provider.OptionChain(ctx, symbol)
	if err != nil {
		res.err = apperrors.NewSymbolError(symbol, "chain", err)
		return res
	}

	// The forecast spot comes from the last bar; the chain snapshot carries
	// the live print. Rescale the dollar move so both sides of the estimate
	// see the same spot.
	if snap.Spot > 0 && fc.Spot > 0 && snap.Spot != fc.Spot {
		fc.ExpDS *= snap.Spot / fc.Spot
		fc.Spot = snap.Spot
	}

	rows := chain.Sanitize(snap.Rows, fc.Spot, s.opts.MoneynessPct)
	if len(rows) == 0 {
		res.err = apperrors.NewSymbolError(symbol, "chain", apperrors.ErrNoData)
		return res
	}
	rows = s.ensureGreeks(rows, fc.Spot, snap.FetchedAt)

	outcome := filter.Apply(rows, s.opts.Filter)
	picked := outcome.HardPass
	if len(picked) == 0 && len(outcome.SoftPass) > 0 {
		picked = outcome.SoftPass
		res.logs = append(res.logs, fmt.Sprintf("%s: no hard-pass contracts, using %d soft-pass", symbol, len(picked)))
	}
	if len(picked) == 0 {
		res.logs = append(res.logs, fmt.Sprintf("%s: all %d contracts rejected (%s)", symbol, outcome.Stats.Total(), rejectSummary(outcome.Stats)))
		log.Debug().Int("rejected", outcome.Stats.Total()).Msg("no liquid contracts")
		res.err = apperrors.NewSymbolError(symbol, "filter", apperrors.ErrNoLiquidContracts)
		return res
	}

	for _, c := range picked {
		res.ideas = append(res.ideas, estimate.Score(c, fc, horizonHours, s.opts.Estimator))
	}
	return res
}

// ensureGreeks fills in missing Greeks from the Black-Scholes model. When the
// chain carries no implied vol, it is backed out of the mid price first.
// Contracts whose vol cannot be recovered keep HasGreeks false and fall
// through to the estimator's degenerate handling.
func (s *Scanner) ensureGreeks(rows []models.OptionContract, spot float64, now time.Time) []models.OptionContract {
	out := make([]models.OptionContract, len(rows))
	for i, c := range rows {
		if c.HasGreeks {
			out[i] = c
			continue
		}

		in := pricing.Input{
			Spot:         spot,
			Strike:       c.Strike,
			YearsToExp:   c.YearsToExpiry(now),
			RiskFreeRate: s.opts.RiskFreeRate,
			ImpliedVol:   c.ImpliedVol,
			Type:         c.Type,
		}

		if in.ImpliedVol <= 0 {
			iv, err := pricing.ImpliedVol(c.Mid, in)
			if err != nil {
				out[i] = c
				continue
			}
			in.ImpliedVol = iv
			c.ImpliedVol = iv
		}

		priced := pricing.PriceGreeks(in)
		c.Greeks = priced.Greeks
		c.HasGreeks = priced.Greeks.Finite()
		out[i] = c
	}
	return out
}

func rejectSummary(st filter.Stats) string {
	return fmt.Sprintf("oi=%d spread=%d dte=%d price=%d range=%d",
		st.ThinOI, st.WideSpread, st.BadDTE, st.BadPrice, st.OutOfRange)
}
