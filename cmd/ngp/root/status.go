package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ngp/internal/engine"
	"ngp/internal/navigator"
	"ngp/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show player, skills and suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			unlocked, err := svc.RefreshCycles(ctx)
			if err != nil {
				return err
			}

			p, err := svc.PlayerRepo().GetOrCreateMain(ctx)
			if err != nil {
				return err
			}
			threshold, err := engine.XPThreshold(p.Level)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Player"))
			fmt.Fprintln(out, ui.LabelValue("Name", fmt.Sprintf("%s the %s", p.DisplayName, p.ClassName)))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d/%d %s", p.XP, threshold, ui.XPBar(p.XP, threshold, 24))))
			fmt.Fprintln(out, ui.LabelValue("Coins", fmt.Sprintf("%d %s", p.Coins, ui.IconCoin)))
			fmt.Fprintln(out, "")

			skills, err := svc.SkillRepo().List(ctx, false)
			if err != nil {
				return err
			}
			counts, err := svc.MissionCountsBySkill(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconSkill+" Skills"))
			if len(skills) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none yet)"))
			}
			now := svc.Clock().Now()
			for _, s := range skills {
				state := engine.StateOf(s, counts[s.ID], now)
				fmt.Fprintf(out, "- %s %s L%d (xp %d) — %s\n",
					s.Icon, s.Name, s.Level, s.XP, ui.CycleStateText(string(state)))
			}
			fmt.Fprintln(out, "")

			snap, err := navigator.Collect(ctx, svc)
			if err != nil {
				return err
			}
			suggestions := navigator.Analyze(snap)
			fmt.Fprintln(out, ui.H2.Render(ui.IconCompass+" Navigator"))
			if len(suggestions) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing to flag)"))
			}
			for _, sg := range suggestions {
				fmt.Fprintf(out, "- [%s] %s\n", ui.PriorityText(sg.Priority.String()), sg.Message)
			}

			for _, c := range unlocked {
				fmt.Fprintf(out, "\n%s capsule unlocked: %s\n", ui.IconCapsule, ui.Gold.Render(c.Title))
			}
			return nil
		},
	}

	return cmd
}
