package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/cli/formatter"
	"github.com/avelara/beacon/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newInitiativeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "initiative",
		Aliases: []string{"init", "i"},
		Short:   "Manage initiatives",
	}

	cmd.AddCommand(
		newInitiativeAddCmd(app),
		newInitiativeListCmd(app),
		newInitiativeInspectCmd(app),
		newInitiativeEditCmd(app),
		newInitiativeDeleteCmd(app),
		newInitiativeRestoreCmd(app),
		newInitiativeCommentCmd(app),
		newInitiativeReviewCmd(app),
	)

	return cmd
}

func newInitiativeAddCmd(app *App) *cobra.Command {
	var title, priority, owner, due, risk string
	var estimate float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new initiative",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &domain.Initiative{
				Title:           title,
				Priority:        domain.Priority(priority),
				OwnerID:         owner,
				EstimatedEffort: estimate,
				RiskNote:        risk,
			}
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid due date %q: %w", due, err)
				}
				in.DueDate = &d
			}

			if err := app.Initiatives.Create(context.Background(), app.actor(), in); err != nil {
				return err
			}
			fmt.Printf("Created initiative %s [%s]\n", in.Title, in.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Initiative title")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high|critical)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner user ID (defaults to the acting user)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "Estimated effort in person-days")
	cmd.Flags().StringVar(&risk, "risk", "", "Risk note")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newInitiativeListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List initiatives",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Initiatives.List(context.Background(), all)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No initiatives found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatInitiativeList(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include deleted initiatives")

	return cmd
}

func newInitiativeInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show initiative details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			in, err := app.Initiatives.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatInitiativeInspect(in))
			return nil
		},
	}
}

func newInitiativeEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID FIELD VALUE",
		Short: "Edit a single initiative field",
		Long: `Edit a single initiative field. The edit is applied locally right away
and confirmed once it persists; a failed write is rolled back.

Editable fields: title, status, priority, estimated_effort, actual_effort,
due_date, owner, classification, risk_note.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			in, err := app.Initiatives.EditField(ctx, app.actor(), id, domain.Field(args[1]), args[2])
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s on %s [%s]\n", args[1], in.Title, in.DisplayID())
			return nil
		},
	}
	return cmd
}

func newInitiativeDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Soft-delete an initiative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			in, err := app.Initiatives.Get(ctx, id)
			if err != nil {
				return err
			}

			if !yes && app.interactive() {
				confirmed := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete %q?", in.Title)).
						Description("The initiative is hidden from the dashboard but can be restored.").
						Value(&confirmed),
				))
				if err := form.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := app.Initiatives.Delete(ctx, app.actor(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted initiative %s [%s]\n", in.Title, in.DisplayID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func newInitiativeRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Restore a soft-deleted initiative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Initiatives.Restore(ctx, app.actor(), id); err != nil {
				return err
			}
			fmt.Printf("Restored initiative %s\n", id)
			return nil
		},
	}
}

func newInitiativeCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comment ID TEXT",
		Short: "Add a comment visible to connected clients",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Initiatives.AddComment(ctx, app.actor(), id, args[1]); err != nil {
				return err
			}
			fmt.Println("Comment sent.")
			return nil
		},
	}
}

func newInitiativeReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review ID",
		Short: "Review the current actual effort against historical values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveInitiativeID(ctx, app, args[0])
			if err != nil {
				return err
			}
			flag, err := app.Initiatives.ReviewEffort(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatEffortFlag(flag))
			return nil
		},
	}
}
