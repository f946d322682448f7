package cli

import (
	"os"

	"github.com/avelara/beacon/internal/realtime"
	"github.com/avelara/beacon/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Initiatives   service.InitiativeService
	Notifications service.NotificationService
	Workflows     service.WorkflowService
	Users         service.UserService

	// Bus carries live updates into the watch view.
	Bus *realtime.Bus

	// Actor is the acting user for mutations, resolved from BEACON_USER or
	// the --as flag.
	Actor string

	// IsInteractive reports whether stdin is a terminal. Destructive
	// commands only prompt when it is.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) actor() string {
	if a.Actor != "" {
		return a.Actor
	}
	if u := os.Getenv("BEACON_USER"); u != "" {
		return u
	}
	return "local"
}

// NewRootCmd creates the top-level "beacon" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "beacon",
		Short: "Initiative dashboard with workflow automation",
	}

	root.PersistentFlags().StringVar(&app.Actor, "as", "", "Act as this user ID")

	root.AddCommand(
		newInitiativeCmd(app),
		newHistoryCmd(app),
		newWorkflowCmd(app),
		newNotifyCmd(app),
		newUserCmd(app),
		newWatchCmd(app),
	)

	return root
}
