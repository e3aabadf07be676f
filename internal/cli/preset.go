package cli

import (
	"sort"

	"github.com/spf13/cobra"

	apperrors "optionscout/internal/errors"
	"optionscout/internal/filter"
	"optionscout/internal/store"
)

func newPresetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved liquidity filter presets",
		Long: `Presets are named sets of filter thresholds stored in the local database.
Use 'optionscout scan --preset <name>' to apply one.`,
	}

	var (
		minOI     int64
		maxSpread float64
		dteMin    int
		dteMax    int
		minPrice  float64
		maxPrice  float64
	)

	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save or update a filter preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			preset := store.FilterPreset{
				Name:            args[0],
				MinOpenInterest: minOI,
				MaxSpreadPct:    maxSpread,
				DTEMin:          dteMin,
				DTEMax:          dteMax,
				MinPrice:        minPrice,
				MaxPrice:        maxPrice,
			}
			if err := app.Store.SaveFilterPreset(cmd.Context(), preset); err != nil {
				return err
			}
			output.Success("✓ Preset '%s' saved", args[0])
			return nil
		},
	}
	saveCmd.Flags().Int64Var(&minOI, "min-oi", 50, "minimum open interest")
	saveCmd.Flags().Float64Var(&maxSpread, "max-spread", 40, "maximum spread percent of mid")
	saveCmd.Flags().IntVar(&dteMin, "dte-min", 0, "minimum days to expiry")
	saveCmd.Flags().IntVar(&dteMax, "dte-max", 14, "maximum days to expiry")
	saveCmd.Flags().Float64Var(&minPrice, "min-price", 0.15, "minimum mid price")
	saveCmd.Flags().Float64Var(&maxPrice, "max-price", 500, "maximum mid price")
	cmd.AddCommand(saveCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			builtin := make([]string, 0, len(filter.BuiltinPresets()))
			for name := range filter.BuiltinPresets() {
				builtin = append(builtin, name)
			}
			sort.Strings(builtin)

			var saved []string
			if app.Store != nil {
				var err error
				saved, err = app.Store.ListFilterPresets(cmd.Context())
				if err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string][]string{"builtin": builtin, "saved": saved})
			}
			for _, name := range builtin {
				output.Printf("%s (built-in)\n", name)
			}
			for _, name := range saved {
				output.Println(name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show a preset's thresholds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var preset *store.FilterPreset
			if app.Store != nil {
				var err error
				preset, err = app.Store.GetFilterPreset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}
			if preset == nil {
				if cfg, ok := filter.BuiltinPresets()[args[0]]; ok {
					preset = &store.FilterPreset{
						Name:            args[0],
						MinOpenInterest: cfg.MinOpenInterest,
						MaxSpreadPct:    cfg.MaxSpreadPct,
						DTEMin:          cfg.DTEMin,
						DTEMax:          cfg.DTEMax,
						MinPrice:        cfg.MinPrice,
						MaxPrice:        cfg.MaxPrice,
					}
				}
			}
			if preset == nil {
				output.Error("Preset not found: %s", args[0])
				return apperrors.ErrNoData
			}
			if output.IsJSON() {
				return output.JSON(preset)
			}
			output.Printf("min open interest: %s\n", FormatOI(preset.MinOpenInterest))
			output.Printf("max spread:        %.1f%%\n", preset.MaxSpreadPct)
			output.Printf("DTE:               %d-%d\n", preset.DTEMin, preset.DTEMax)
			output.Printf("mid price:         %s - %s\n",
				FormatIndianCurrency(preset.MinPrice), FormatIndianCurrency(preset.MaxPrice))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			if err := app.Store.DeleteFilterPreset(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("✓ Preset '%s' deleted", args[0])
			return nil
		},
	})

	return cmd
}
