package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ngp/internal/engine"
	"ngp/internal/storage"
	"ngp/internal/ui"
)

func newRewardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "The coin shop: define and redeem rewards",
	}
	cmd.AddCommand(
		newRewardAddCmd(),
		newRewardListCmd(),
		newRewardRedeemCmd(),
		newRewardArchiveCmd(),
	)
	return cmd
}

func newRewardAddCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "add <title> <price>",
		Short: "Define a reward",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("title and price are required")
			}
			if _, err := strconv.Atoi(args[1]); err != nil {
				return errors.New("price must be a number of coins")
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

			price, _ := strconv.Atoi(args[1])
			w, err := svc.CreateReward(ctx, args[0], price, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s added for %d %s.\n", ui.IconTrophy, ui.Good.Render(w.Title), w.PriceCoins, ui.IconCoin)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Optional note")

	return cmd
}

func newRewardListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rewards and your balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.PlayerRepo().GetOrCreateMain(ctx)
			if err != nil {
				return err
			}
			rewards, err := svc.RewardRepo().List(ctx, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Rewards (balance %d %s)", p.Coins, ui.IconCoin)))
			if len(rewards) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none — earn coins with nothing to spend them on?)"))
				return nil
			}
			for _, w := range rewards {
				afford := ui.Good.Render("affordable")
				if w.PriceCoins > p.Coins {
					afford = ui.Muted.Render(fmt.Sprintf("need %d more", w.PriceCoins-p.Coins))
				}
				redeemed := ""
				if w.TimesRedeemed > 0 {
					redeemed = ui.Dim.Render(fmt.Sprintf(" (redeemed %d×)", w.TimesRedeemed))
				}
				fmt.Fprintf(out, "- %s — %d %s, %s%s\n", ui.Key.Render(w.Title), w.PriceCoins, ui.IconCoin, afford, redeemed)
			}
			return nil
		},
	}

	return cmd
}

func newRewardRedeemCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "redeem <reward>",
		Short: "Spend coins on a reward",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("reward title or id is required")
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

			w, err := resolveReward(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.RedeemReward(ctx, w.ID, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s redeemed for %d %s, %d left. Enjoy it.\n",
				ui.IconTrophy, ui.Good.Render(res.Reward.Title), res.Redemption.CoinsSpent, ui.IconCoin, res.CoinsRemaining)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Optional note on the redemption")

	return cmd
}

func newRewardArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <reward>",
		Short: "Retire a reward from the shop",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("reward title or id is required")
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

			w, err := resolveReward(ctx, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.ArchiveReward(ctx, w.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s archived.\n", ui.Key.Render(w.Title))
			return nil
		},
	}
	return cmd
}

func resolveReward(ctx context.Context, svc *engine.Service, arg string) (*storage.Reward, error) {
	w, err := svc.RewardRepo().Get(ctx, arg)
	if err != nil {
		return nil, err
	}
	if w != nil {
		return w, nil
	}
	all, err := svc.RewardRepo().List(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, cand := range all {
		if strings.EqualFold(cand.Title, arg) {
			return cand, nil
		}
	}
	return nil, fmt.Errorf("no reward named %q", arg)
}
