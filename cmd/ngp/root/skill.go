package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ngp/internal/engine"
	"ngp/internal/ui"
)

func newSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Manage skills (growth areas)",
	}
	cmd.AddCommand(
		newSkillAddCmd(),
		newSkillListCmd(),
		newSkillFocusCmd(),
		newSkillCadenceCmd(),
	)
	return cmd
}

func newSkillAddCmd() *cobra.Command {
	var cadence string
	var days int
	var color string
	var icon string
	var focus bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a skill",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
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

			skill, err := svc.CreateSkill(ctx, engine.CreateSkillInput{
				Name:       args[0],
				Cadence:    engine.Cadence(cadence),
				CustomDays: days,
				Color:      color,
				Icon:       icon,
				IsFocus:    focus,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s created (%s cadence). Assign %d missions to start cycles.\n",
				skill.Icon, ui.Good.Render(skill.Name), skill.Cadence, engine.ReadinessThreshold)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cadence, "cadence", "c", "weekly", "Cycle cadence (daily|weekly|monthly|custom)")
	cmd.Flags().IntVar(&days, "days", 0, "Interval in days (custom cadence)")
	cmd.Flags().StringVar(&color, "color", "", "Hex color for the TUI")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon shown in lists")
	cmd.Flags().BoolVar(&focus, "focus", false, "Mark as a focus skill (doubled level thresholds)")

	return cmd
}

func newSkillListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List skills with cycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := svc.RefreshCycles(ctx); err != nil {
				return err
			}
			skills, err := svc.SkillRepo().List(ctx, false)
			if err != nil {
				return err
			}
			counts, err := svc.MissionCountsBySkill(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSkill, "Skills"))
			if len(skills) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none yet — try `ngp skill add`)"))
				return nil
			}
			now := svc.Clock().Now()
			for _, s := range skills {
				state := engine.StateOf(s, counts[s.ID], now)
				focus := ""
				if s.IsFocus {
					focus = " " + ui.IconSparkle
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s L%d (xp %d)%s — %s\n",
					s.Icon, ui.Key.Render(s.Name), s.Level, s.XP, focus, ui.CycleStateText(string(state)))
				if s.CycleStart != nil && s.CycleEnd != nil {
					window := fmt.Sprintf("  %s cycle %s → %s", ui.IconCycle,
						s.CycleStart.Format("Mon Jan 2"), s.CycleEnd.Format("Mon Jan 2"))
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(window))
				}
				if state == engine.StateNotReady {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(
						fmt.Sprintf("  %d/%d missions assigned", counts[s.ID], engine.ReadinessThreshold)))
				}
				if cfg.RevealTarget && s.TargetMissionID != nil {
					target, err := svc.MissionRepo().Get(ctx, *s.TargetMissionID)
					if err != nil {
						return err
					}
					if target != nil {
						// Derive the hit mark from award history, not the flag, so
						// imported data renders the same as locally earned data.
						mark := ui.IconMission
						if s.CycleStart != nil {
							hit, err := svc.CompletionRepo().CycleHadCredit(ctx, s.ID, engine.CycleID(s.ID, *s.CycleStart))
							if err != nil {
								return err
							}
							if hit {
								mark = ui.IconDone
							}
						}
						fmt.Fprintf(cmd.OutOrStdout(), "  %s target: %s\n", mark, target.Title)
					}
				}
			}
			return nil
		},
	}

	return cmd
}

func newSkillFocusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus <skill>",
		Short: "Toggle focus on a skill",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("skill name or id is required")
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

			skill, err := resolveSkill(ctx, svc, args[0])
			if err != nil {
				return err
			}
			skill, err = svc.ToggleFocus(ctx, skill.ID)
			if err != nil {
				return err
			}
			if skill.IsFocus {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now a focus skill: level thresholds doubled.\n", ui.IconSparkle, skill.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer a focus skill.\n", skill.Name)
			}
			return nil
		},
	}

	return cmd
}

func newSkillCadenceCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cadence <skill> <daily|weekly|monthly|custom>",
		Short: "Change a skill's cycle cadence (applies at the next rollover)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("skill and cadence are required")
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

			skill, err := resolveSkill(ctx, svc, args[0])
			if err != nil {
				return err
			}
			skill, err = svc.SetCadence(ctx, skill.ID, engine.Cadence(args[1]), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now cycles %s; the current window finishes first.\n", skill.Name, skill.Cadence)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Interval in days (custom cadence)")

	return cmd
}
