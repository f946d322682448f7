package cli

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newNotifyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notify",
		Aliases: []string{"inbox"},
		Short:   "Manage your notification inbox",
	}

	cmd.AddCommand(
		newNotifyListCmd(app),
		newNotifyReadCmd(app),
		newNotifyReadAllCmd(app),
		newNotifyClearCmd(app),
	)

	return cmd
}

func newNotifyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := app.Notifications.ListByUser(context.Background(), app.actor())
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatNotifications(notes))
			return nil
		},
	}
}

func newNotifyReadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read ID",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Notifications.MarkRead(context.Background(), args[0])
		},
	}
}

func newNotifyReadAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Notifications.MarkAllRead(context.Background(), app.actor())
		},
	}
}

func newNotifyClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Notifications.ClearAll(context.Background(), app.actor()); err != nil {
				return err
			}
			fmt.Println("Inbox cleared.")
			return nil
		},
	}
}
