package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "optionscout/internal/errors"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Browse past scan runs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scan runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			runs, err := app.Store.GetRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Dim("No journaled runs")
				return nil
			}
			for _, r := range runs {
				output.Printf("#%-4d %s  horizon %dh  universe %d  tier1 %d  tier2 %d  watch %d  scored %d\n",
					r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.HorizonHours,
					len(r.Universe), r.Tier1Count, r.Tier2Count, r.WatchCount, r.TotalScored)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the scored contracts of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}

			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				output.Error("Invalid run id: %s", args[0])
				return err
			}

			ideas, err := app.Store.GetRunIdeas(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(ideas)
			}
			if len(ideas) == 0 {
				output.Dim("No contracts recorded for run %d", runID)
				return nil
			}
			for _, idea := range ideas {
				c := idea.Contract
				output.Printf("%-28s %-4s K=%-8.2f mid=%-8s roi=%-8s oi=%-8s [%s]\n",
					c.Symbol, strings.ToUpper(string(c.Type)), c.Strike,
					FormatIndianCurrency(c.Mid), FormatPercent(idea.ExpROI),
					FormatOI(c.OpenInterest), idea.Tier)
			}
			return nil
		},
	})

	return cmd
}
