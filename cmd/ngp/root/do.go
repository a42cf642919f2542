package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ngp/internal/config"
	"ngp/internal/engine"
	"ngp/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <mission>",
		Short: "Complete a mission",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("mission title or id is required")
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

			m, err := resolveMission(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.CompleteMission(ctx, m.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s completed: +%d XP, +%d %s\n",
				ui.IconDone, ui.Good.Render(res.MissionTitle),
				res.PlayerXP+res.CyclePlayerXP, res.Coins, ui.IconCoin)

			for _, a := range res.SkillAwards {
				line := fmt.Sprintf("- %s +%d XP", a.SkillName, a.BaseXP+a.CycleXP)
				if a.TargetHit {
					line += " " + ui.BadgeTarget
				}
				if a.LevelAfter > a.LevelBefore {
					line += fmt.Sprintf(" %s L%d → L%d", ui.BadgeLevelUp, a.LevelBefore, a.LevelAfter)
				}
				fmt.Fprintln(out, line)
			}
			if res.PlayerLevelUp() {
				fmt.Fprintf(out, "%s %s player L%d → L%d\n", ui.IconTrophy, ui.BadgeLevelUp, res.PlayerLevelBefore, res.PlayerLevelAfter)
			}
			if res.ReflectionToken {
				fmt.Fprintf(out, "%s %s — spend it with `ngp journal reflect`\n", ui.IconToken, ui.BadgeToken)
			}
			for _, c := range res.UnlockedCapsules {
				fmt.Fprintf(out, "%s capsule unlocked: %s\n", ui.IconCapsule, ui.Gold.Render(c.Title))
			}
			return nil
		},
	}

	return cmd
}

func newDayStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daystart <hour>",
		Short: "Set the hour (0-23) at which your day begins",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("hour is required")
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

			var hour int
			if _, err := fmt.Sscanf(args[0], "%d", &hour); err != nil {
				return engine.InvalidInputError{Field: "hour", Reason: "must be a number 0-23"}
			}
			if err := svc.SetDayStart(ctx, hour); err != nil {
				return err
			}

			// Persist to the config file too, so the next run does not sync
			// the old value back over the player row.
			cfgPath, err := config.DefaultPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg.DayStartsAt = hour
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Days now start at %02d:00.\n", hour)
			return nil
		},
	}

	return cmd
}
