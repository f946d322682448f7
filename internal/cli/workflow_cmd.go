package cli

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newWorkflowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflow",
		Aliases: []string{"wf"},
		Short:   "Manage automation workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(app),
		newWorkflowInspectCmd(app),
		newWorkflowEnableCmd(app, true),
		newWorkflowEnableCmd(app, false),
	)

	return cmd
}

func newWorkflowListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows := app.Workflows.List(context.Background())
			if len(workflows) == 0 {
				fmt.Println("No workflows configured.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatWorkflowList(workflows))
			return nil
		},
	}
}

func newWorkflowInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show a workflow and its recent runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.Workflows.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatWorkflowInspect(w))
			return nil
		},
	}
}

func newWorkflowEnableCmd(app *App, enable bool) *cobra.Command {
	use, short := "enable ID", "Enable a workflow"
	if !enable {
		use, short = "disable ID", "Disable a workflow"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Workflows.SetEnabled(context.Background(), args[0], enable); err != nil {
				return err
			}
			state := "Enabled"
			if !enable {
				state = "Disabled"
			}
			fmt.Printf("%s workflow %s\n", state, args[0])
			return nil
		},
	}
}
