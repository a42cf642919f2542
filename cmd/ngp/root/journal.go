package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ngp/internal/ui"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Freeform notes and reflection entries",
	}
	cmd.AddCommand(
		newJournalAddCmd(),
		newJournalReflectCmd(),
		newJournalListCmd(),
	)
	return cmd
}

func newJournalAddCmd() *cobra.Command {
	var skillArg string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Write a journal entry",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("text is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var skillID *string
			if skillArg != "" {
				s, err := resolveSkill(ctx, svc, skillArg)
				if err != nil {
					return err
				}
				skillID = &s.ID
			}

			if _, err := svc.AddJournalEntry(ctx, strings.Join(args, " "), nil, skillID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s noted.\n", ui.IconJournal)
			return nil
		},
	}

	cmd.Flags().StringVarP(&skillArg, "skill", "s", "", "Link the entry to a skill")

	return cmd
}

func newJournalReflectCmd() *cobra.Command {
	var skillArg string

	cmd := &cobra.Command{
		Use:   "reflect [text]",
		Short: "Spend a reflection token (no text prints a prompt)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconToken, "Reflection prompt"))
				fmt.Fprintln(cmd.OutOrStdout(), svc.RandomPrompt())
				return nil
			}

			var skillID *string
			if skillArg != "" {
				s, err := resolveSkill(ctx, svc, skillArg)
				if err != nil {
					return err
				}
				skillID = &s.ID
			}

			if _, err := svc.AddReflection(ctx, strings.Join(args, " "), nil, skillID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reflection saved.\n", ui.IconToken)
			return nil
		},
	}

	cmd.Flags().StringVarP(&skillArg, "skill", "s", "", "Link the reflection to a skill")

	return cmd
}

func newJournalListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.JournalRepo().List(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconJournal, "Journal"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(empty)"))
				return nil
			}
			for _, e := range entries {
				icon := "-"
				if e.IsReflection {
					icon = ui.IconToken
				}
				fmt.Fprintf(out, "%s %s %s\n", icon, ui.Muted.Render(e.CreatedAt.Format("Jan 2 15:04")), e.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")

	return cmd
}
