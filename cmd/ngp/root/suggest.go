package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ngp/internal/navigator"
	"ngp/internal/ui"
)

func newSuggestCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Run the navigator over your history",
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
			snap, err := navigator.Collect(ctx, svc)
			if err != nil {
				return err
			}
			suggestions := navigator.Analyze(snap)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCompass, "Navigator"))
			if len(suggestions) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing to flag. Keep going."))
				return nil
			}
			for _, sg := range suggestions {
				fmt.Fprintf(out, "- [%s] %s\n", ui.PriorityText(sg.Priority.String()), sg.Message)
				if verbose {
					fmt.Fprintln(out, ui.Dim.Render(fmt.Sprintf("  pattern %s, confidence %.2f", sg.Kind, sg.Confidence)))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show pattern kinds and confidence")

	return cmd
}
