package cli

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show the change log of an initiative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			entries, err := app.Initiatives.History(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatHistory(entries))
			return nil
		},
	}
}
