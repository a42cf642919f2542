package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ngp/internal/engine"
	"ngp/internal/ui"
)

func newCapsuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capsule",
		Short: "Messages to your future self, unlocked by time or progress",
	}
	cmd.AddCommand(
		newCapsuleAddCmd(),
		newCapsuleListCmd(),
		newCapsuleOpenCmd(),
	)
	return cmd
}

func newCapsuleAddCmd() *cobra.Command {
	var body string
	var passphrase string
	var hint string
	var onDate string
	var onMission string
	var onSkill string
	var onSkillLevel int
	var onPlayerLevel int

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Seal a capsule",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			in := engine.CreateCapsuleInput{
				Title:          args[0],
				Body:           body,
				Passphrase:     passphrase,
				PassphraseHint: hint,
			}
			switch {
			case onDate != "":
				t, err := time.Parse("2006-01-02", onDate)
				if err != nil {
					return engine.InvalidInputError{Field: "on-date", Reason: "use YYYY-MM-DD"}
				}
				in.UnlockKind = engine.UnlockOnDate
				in.UnlockDate = &t
			case onMission != "":
				m, err := resolveMission(ctx, svc, onMission)
				if err != nil {
					return err
				}
				in.UnlockKind = engine.UnlockOnMission
				in.UnlockMission = &m.ID
			case onSkill != "":
				s, err := resolveSkill(ctx, svc, onSkill)
				if err != nil {
					return err
				}
				in.UnlockKind = engine.UnlockOnSkillLevel
				in.UnlockSkill = &s.ID
				in.UnlockLevel = onSkillLevel
			case onPlayerLevel > 0:
				in.UnlockKind = engine.UnlockOnPlayerLevel
				in.UnlockLevel = onPlayerLevel
			default:
				return engine.InvalidInputError{Field: "unlock", Reason: "pick one of --on-date, --on-mission, --on-skill, --on-player-level"}
			}

			c, err := svc.CreateCapsule(ctx, in)
			if err != nil {
				return err
			}
			sealed := ""
			if c.IsSealed {
				sealed = " (sealed with a passphrase)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s buried%s.\n", ui.IconCapsule, ui.Good.Render(c.Title), sealed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&body, "body", "b", "", "Message to your future self")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Encrypt the body (optional)")
	cmd.Flags().StringVar(&hint, "hint", "", "Passphrase hint shown when opening")
	cmd.Flags().StringVar(&onDate, "on-date", "", "Unlock on a date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&onMission, "on-mission", "", "Unlock when a mission is completed")
	cmd.Flags().StringVar(&onSkill, "on-skill", "", "Unlock when a skill reaches --level")
	cmd.Flags().IntVar(&onSkillLevel, "level", 0, "Level for --on-skill")
	cmd.Flags().IntVar(&onPlayerLevel, "on-player-level", 0, "Unlock when the player reaches this level")

	return cmd
}

func newCapsuleListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List capsules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := svc.RefreshCycles(ctx); err != nil {
				return err
			}
			capsules, err := svc.CapsuleRepo().List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCapsule, "Capsules"))
			if len(capsules) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			for _, c := range capsules {
				state := ui.Muted.Render("locked")
				if c.UnlockedAt != nil {
					state = ui.Good.Render("unlocked " + c.UnlockedAt.Format("Jan 2 2006"))
				}
				fmt.Fprintf(out, "- %s — %s\n", ui.Key.Render(c.Title), state)
				fmt.Fprintln(out, ui.Dim.Render("  id "+c.ID))
			}
			return nil
		},
	}

	return cmd
}

func newCapsuleOpenCmd() *cobra.Command {
	var passphrase string
	var toJournal bool

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Read an unlocked capsule",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("capsule id is required")
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

			if toJournal {
				entry, err := svc.ArchiveCapsuleToJournal(ctx, args[0], passphrase)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconCapsule, "From your past self"))
				fmt.Fprintln(cmd.OutOrStdout(), entry.Text)
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(copied to your journal)"))
				return nil
			}

			body, err := svc.OpenCapsule(ctx, args[0], passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconCapsule, "From your past self"))
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "Passphrase for sealed capsules")
	cmd.Flags().BoolVar(&toJournal, "journal", false, "Also archive the message into your journal")

	return cmd
}
