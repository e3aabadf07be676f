package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "optionscout/internal/errors"
	"optionscout/internal/estimate"
	"optionscout/internal/filter"
	"optionscout/internal/forecast"
	"optionscout/internal/models"
	"optionscout/internal/notify"
	"optionscout/internal/rank"
	"optionscout/internal/scan"
	"optionscout/pkg/utils"
)

func newScanCmd(app *App) *cobra.Command {
	var (
		symbolsFlag   string
		watchlistFlag string
		horizonFlag   int
		presetFlag    string
		csvPath       string
		noJournal     bool
		sendReport    bool
		saveWatch     string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the universe and rank option contracts by expected ROI",
		Long: `Runs the full pipeline over the configured universe (or an explicit symbol
list): move forecast, chain snapshot, liquidity filter, expected-change
estimate and tier ranking.

The run is journaled to the local database unless --no-journal is given.`,
		Example: `  optionscout scan
  optionscout scan --symbols RELIANCE,TCS --horizon 4
  optionscout scan --preset weeklies --csv ideas.csv
  optionscout scan --watchlist fno --notify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Market == nil {
				output.Error("Market data provider not configured. Set kite credentials in %s", "credentials.toml")
				return apperrors.ErrNotAuthenticated
			}

			symbols, err := resolveUniverse(app, cmd, symbolsFlag, watchlistFlag)
			if err != nil {
				return err
			}
			if len(symbols) == 0 {
				output.Error("No symbols to scan. Configure scan.universe or pass --symbols")
				return apperrors.ErrNoData
			}

			horizon := horizonFlag
			if horizon <= 0 {
				horizon = app.Config.Scan.HorizonHours
			}

			filterCfg, err := resolveFilter(app, cmd, presetFlag)
			if err != nil {
				return err
			}

			if !utils.IsMarketOpenAt(time.Now()) {
				next := utils.NextMarketOpen(time.Now()).Format("Mon 15:04 MST")
				output.Warning("Market is closed; quotes may be stale. Next open: %s", next)
			}

			scanner := scan.New(scan.Options{
				Provider:   app.Market,
				Forecaster: forecast.New(forecastConfig(app)),
				Filter:     filterCfg,
				Tiers: rank.Config{
					Tier1ROIMin: app.Config.Tiers.Tier1ROIMin,
					Tier2ROIMin: app.Config.Tiers.Tier2ROIMin,
					WatchTopN:   app.Config.Tiers.WatchTopN,
				},
				Estimator:    estimate.Config{Direction: estimate.Direction(app.Config.Estimator.Direction)},
				Interval:     app.Config.Scan.Interval,
				LookbackDays: app.Config.Scan.LookbackDays,
				MoneynessPct: app.Config.Scan.MoneynessPct,
				RiskFreeRate: app.Config.Scan.RiskFreeRate,
				Concurrency:  app.Config.Scan.Concurrency,
				Logger:       app.Logger,
			})

			run, err := scanner.GenerateRankedIdeas(cmd.Context(), symbols, horizon)
			if err != nil {
				if sendReport {
					app.Notifier.SendError(cmd.Context(), err, "scan")
				}
				return err
			}

			if output.IsJSON() {
				if err := output.JSON(run); err != nil {
					return err
				}
			} else {
				notify.RenderTables(output.Writer(), run)
				output.Printf("\nScored %d contracts across %d symbols\n", len(run.All), len(symbols))
			}

			if csvPath != "" {
				if err := writeCSVFile(csvPath, run); err != nil {
					return err
				}
				output.Info("CSV written to %s", csvPath)
			}

			if !noJournal && app.Store != nil {
				runID, err := app.Store.SaveRun(cmd.Context(), run)
				if err != nil {
					output.Warning("Failed to journal run: %v", err)
				} else {
					output.Dim("Journaled as run %d", runID)
				}
			}

			if sendReport {
				if err := app.Notifier.SendScanReport(cmd.Context(), run); err != nil {
					output.Warning("Notification delivery: %v", err)
				}
			}

			if saveWatch != "" {
				if err := saveWatchSymbols(app, cmd, saveWatch, run); err != nil {
					output.Warning("Failed to update watchlist: %v", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&symbolsFlag, "symbols", "", "comma-separated symbols to scan (overrides config universe)")
	cmd.Flags().StringVar(&watchlistFlag, "watchlist", "", "scan the symbols of a stored watchlist")
	cmd.Flags().IntVar(&horizonFlag, "horizon", 0, "forecast horizon in hours (default from config)")
	cmd.Flags().StringVar(&presetFlag, "preset", "", "use a saved filter preset")
	cmd.Flags().StringVar(&csvPath, "csv", "", "export scored contracts to a CSV file")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "skip journaling this run")
	cmd.Flags().BoolVar(&sendReport, "notify", false, "deliver the report to configured notification channels")
	cmd.Flags().StringVar(&saveWatch, "save-watch", "", "append watch-tier symbols to the named watchlist")

	return cmd
}

func resolveUniverse(app *App, cmd *cobra.Command, symbolsFlag, watchlistFlag string) ([]string, error) {
	if symbolsFlag != "" {
		var symbols []string
		for _, s := range strings.Split(symbolsFlag, ",") {
			if s = strings.TrimSpace(strings.ToUpper(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
		return symbols, nil
	}

	if watchlistFlag != "" {
		if app.Store == nil {
			return nil, apperrors.ErrDatabaseError
		}
		return app.Store.GetWatchlist(cmd.Context(), watchlistFlag)
	}

	return app.Config.Scan.Universe, nil
}

func resolveFilter(app *App, cmd *cobra.Command, presetName string) (filter.Config, error) {
	cfg := filter.Config{
		MinOpenInterest: app.Config.Filter.MinOpenInterest,
		MaxSpreadPct:    app.Config.Filter.MaxSpreadPct,
		DTEMin:          app.Config.Filter.DTEMin,
		DTEMax:          app.Config.Filter.DTEMax,
		MinPrice:        app.Config.Filter.MinPrice,
		MaxPrice:        app.Config.Filter.MaxPrice,
	}

	if presetName == "" {
		return cfg, nil
	}

	// Saved presets shadow the built-in ones.
	if app.Store != nil {
		preset, err := app.Store.GetFilterPreset(cmd.Context(), presetName)
		if err != nil {
			return cfg, err
		}
		if preset != nil {
			cfg.MinOpenInterest = preset.MinOpenInterest
			cfg.MaxSpreadPct = preset.MaxSpreadPct
			cfg.DTEMin = preset.DTEMin
			cfg.DTEMax = preset.DTEMax
			cfg.MinPrice = preset.MinPrice
			cfg.MaxPrice = preset.MaxPrice
			return cfg, nil
		}
	}

	if builtin, ok := filter.BuiltinPresets()[presetName]; ok {
		return builtin, nil
	}
	return cfg, fmt.Errorf("filter preset not found: %s", presetName)
}

func saveWatchSymbols(app *App, cmd *cobra.Command, list string, run models.RankedIdeas) error {
	if app.Store == nil {
		return apperrors.ErrDatabaseError
	}
	seen := make(map[string]bool)
	for _, idea := range run.Watch {
		sym := idea.Contract.Symbol
		if seen[sym] {
			continue
		}
		seen[sym] = true
		if err := app.Store.AddToWatchlist(cmd.Context(), list, sym); err != nil {
			return err
		}
	}
	return nil
}

func forecastConfig(app *App) forecast.Config {
	return forecast.Config{
		MinBars:    app.Config.Forecast.MinBars,
		WindowBars: app.Config.Forecast.WindowBars,
		IVLadder: forecast.IVLadder{
			Cutpoints: app.Config.Forecast.IVLadderPcts,
			Shifts:    app.Config.Forecast.IVLadderShift,
		},
	}
}

func writeCSVFile(path string, run models.RankedIdeas) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()
	return notify.WriteCSV(f, run)
}
