package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ngp/internal/engine"
	"ngp/internal/ui"
)

func newMissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Manage missions (repeatable tasks)",
	}
	cmd.AddCommand(
		newMissionAddCmd(),
		newMissionListCmd(),
		newMissionArchiveCmd(),
	)
	return cmd
}

func newMissionAddCmd() *cobra.Command {
	var skills []string
	var diff int
	var energy int
	var note string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a mission attached to 1-2 skills",
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

			if len(skills) == 0 {
				return errors.New("at least one --skill is required")
			}
			var skillIDs []string
			for _, arg := range skills {
				s, err := resolveSkill(ctx, svc, arg)
				if err != nil {
					return err
				}
				skillIDs = append(skillIDs, s.ID)
			}

			m, err := svc.CreateMission(ctx, engine.CreateMissionInput{
				Title:      args[0],
				Note:       note,
				SkillIDs:   skillIDs,
				Difficulty: engine.Difficulty(diff),
				Energy:     engine.Energy(energy),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s added (%s, energy %d).\n",
				ui.IconMission, ui.Good.Render(m.Title), ui.DifficultyText(m.Difficulty), m.Energy)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&skills, "skill", "s", nil, "Skill name or id (repeat for a dual-skill mission)")
	cmd.Flags().IntVarP(&diff, "diff", "d", 3, "Difficulty (1-5)")
	cmd.Flags().IntVarP(&energy, "energy", "e", 3, "Energy cost (1-5)")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")

	return cmd
}

func newMissionListCmd() *cobra.Command {
	var maxEnergy int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			missions, err := svc.MissionRepo().List(ctx, false)
			if err != nil {
				return err
			}
			skills, err := svc.SkillRepo().List(ctx, false)
			if err != nil {
				return err
			}
			names := map[string]string{}
			for _, s := range skills {
				names[s.ID] = s.Name
			}

			title := "Missions"
			if maxEnergy > 0 {
				title = fmt.Sprintf("Missions (energy ≤ %d)", maxEnergy)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconMission, title))

			shown := 0
			for _, m := range missions {
				if maxEnergy > 0 && m.Energy > maxEnergy {
					continue
				}
				shown++
				var tags string
				for _, sid := range m.SkillIDs {
					name := names[sid]
					if name == "" {
						name = sid
					}
					tags += " " + ui.Muted.Render("#"+name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s e%d%s\n", m.Title, ui.DifficultyText(m.Difficulty), m.Energy, tags)
				fmt.Fprintln(cmd.OutOrStdout(), ui.Dim.Render("  id "+m.ID))
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxEnergy, "energy", "e", 0, "Only show missions at or below this energy")

	return cmd
}

func newMissionArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <mission>",
		Short: "Retire a mission (history is kept)",
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
			if err := svc.ArchiveMission(ctx, m.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s archived.\n", m.Title)
			return nil
		},
	}

	return cmd
}
