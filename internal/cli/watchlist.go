package cli

import (
	"strings"

	"github.com/spf13/cobra"

	apperrors "optionscout/internal/errors"
)

func newWatchlistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage named symbol lists",
		Long: `Watchlists are named symbol groups stored in the local database.
Use 'optionscout scan --watchlist <name>' to scan one.`,
	}

	var listName string

	addCmd := &cobra.Command{
		Use:   "add <symbol>...",
		Short: "Add symbols to a watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			for _, symbol := range args {
				symbol = strings.ToUpper(strings.TrimSpace(symbol))
				if err := app.Store.AddToWatchlist(cmd.Context(), listName, symbol); err != nil {
					return err
				}
			}
			output.Success("✓ Added %d symbol(s) to '%s'", len(args), listName)
			return nil
		},
	}
	addCmd.Flags().StringVar(&listName, "list", "default", "watchlist name")
	cmd.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove <symbol>...",
		Short: "Remove symbols from a watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			for _, symbol := range args {
				symbol = strings.ToUpper(strings.TrimSpace(symbol))
				if err := app.Store.RemoveFromWatchlist(cmd.Context(), listName, symbol); err != nil {
					return err
				}
			}
			output.Success("✓ Removed %d symbol(s) from '%s'", len(args), listName)
			return nil
		},
	}
	removeCmd.Flags().StringVar(&listName, "list", "default", "watchlist name")
	cmd.AddCommand(removeCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the symbols of a watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return apperrors.ErrDatabaseError
			}
			symbols, err := app.Store.GetWatchlist(cmd.Context(), listName)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(symbols)
			}
			if len(symbols) == 0 {
				output.Dim("Watchlist '%s' is empty", listName)
				return nil
			}
			for _, symbol := range symbols {
				output.Println(symbol)
			}
			return nil
		},
	}
	showCmd.Flags().StringVar(&listName, "list", "default", "watchlist name")
	cmd.AddCommand(showCmd)

	return cmd
}
