package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngp/internal/storage"
)

func (s *Service) CreateReward(ctx context.Context, title string, priceCoins int, note string) (*storage.Reward, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, InvalidInputError{Field: "title", Reason: "must not be empty"}
	}
	if priceCoins < 0 {
		return nil, InvalidInputError{Field: "price", Reason: "must be non-negative"}
	}

	reward := &storage.Reward{
		ID:         uuid.NewString(),
		Title:      title,
		PriceCoins: priceCoins,
		CreatedAt:  s.clock.Now(),
	}
	if note = strings.TrimSpace(note); note != "" {
		reward.Note = &note
	}

	if err := s.rewards.Insert(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

type RedeemResult struct {
	Reward         *storage.Reward
	Redemption     *storage.Redemption
	CoinsRemaining int
}

// RedeemReward spends coins on a reward. The coin balance is the only place
// it may shrink.
func (s *Service) RedeemReward(ctx context.Context, rewardID, note string) (*RedeemResult, error) {
	var result *RedeemResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rewards := storage.NewRewardRepo(tx)
		players := storage.NewPlayerRepo(tx)

		reward, err := rewards.Get(ctx, rewardID)
		if err != nil {
			return err
		}
		if reward == nil {
			return NotFoundError{Entity: "reward", ID: rewardID}
		}
		if reward.IsArchived {
			return StateViolationError{Op: "redeem reward", Reason: "reward is archived"}
		}

		player, err := players.GetOrCreateMain(ctx)
		if err != nil {
			return err
		}
		if player.Coins < reward.PriceCoins {
			return StateViolationError{
				Op:     "redeem reward",
				Reason: fmt.Sprintf("need %d coins, have %d", reward.PriceCoins, player.Coins),
			}
		}

		player.Coins -= reward.PriceCoins
		if err := players.Update(ctx, player); err != nil {
			return err
		}

		reward.TimesRedeemed++
		if err := rewards.Update(ctx, reward); err != nil {
			return err
		}

		redemption := &storage.Redemption{
			ID:         uuid.NewString(),
			RewardID:   reward.ID,
			CoinsSpent: reward.PriceCoins,
			RedeemedAt: s.clock.Now(),
			Note:       note,
		}
		if err := rewards.InsertRedemption(ctx, redemption); err != nil {
			return err
		}

		result = &RedeemResult{Reward: reward, Redemption: redemption, CoinsRemaining: player.Coins}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reward redeemed",
		zap.String("reward", result.Reward.Title),
		zap.Int("coins_spent", result.Redemption.CoinsSpent),
		zap.Int("coins_remaining", result.CoinsRemaining))
	return result, nil
}

func (s *Service) ArchiveReward(ctx context.Context, id string) error {
	reward, err := s.rewards.Get(ctx, id)
	if err != nil {
		return err
	}
	if reward == nil {
		return NotFoundError{Entity: "reward", ID: id}
	}
	reward.IsArchived = true
	return s.rewards.Update(ctx, reward)
}
