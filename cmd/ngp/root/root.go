package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ngp/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "ngp",
	Short:         "ngp — gamified self-improvement tracker",
	Long:          "ngp turns skills into levels, missions into XP and weeks into cycles, all from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newSkillCmd(),
		newMissionCmd(),
		newDoCmd(),
		newStatusCmd(),
		newSuggestCmd(),
		newJournalCmd(),
		newRewardCmd(),
		newCapsuleCmd(),
		newExportCmd(),
		newImportCmd(),
		newDayStartCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
