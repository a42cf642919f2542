package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ngp/internal/export"
	"ngp/internal/ui"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the full state to a JSON snapshot",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("output path is required")
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

			if err := export.WriteFile(ctx, svc.DB(), time.Now(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s exported to %s\n", ui.IconDone, args[0])
			return nil
		},
	}

	return cmd
}

func newImportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the database with a JSON snapshot",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("snapshot path is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("import replaces everything in the database; re-run with --force")
			}

			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := export.Import(ctx, svc.DB(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d skills, %d missions, %d completions.\n",
				ui.IconDone, len(snap.Skills), len(snap.Missions), len(snap.Completions))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm replacing the current database")

	return cmd
}
