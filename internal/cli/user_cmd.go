package cli

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/cli/formatter"
	"github.com/avelara/beacon/internal/domain"
	"github.com/spf13/cobra"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard users",
	}

	cmd.AddCommand(newUserAddCmd(app), newUserListCmd(app))

	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var id, name, team, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register or update a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &domain.User{ID: id, Name: name, Team: team, Role: domain.Role(role)}
			if err := app.Users.Upsert(context.Background(), u); err != nil {
				return err
			}
			fmt.Printf("Saved user %s (%s)\n", u.Name, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User ID (defaults to a generated one)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&team, "team", "", "Team, used for automatic classification")
	cmd.Flags().StringVar(&role, "role", "editor", "Role (admin|editor|viewer)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Users.List(context.Background())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("No users registered.")
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Team, string(u.Role)})
			}
			fmt.Printf("%s\n", formatter.RenderTable([]string{"ID", "Name", "Team", "Role"}, rows))
			return nil
		},
	}
}
