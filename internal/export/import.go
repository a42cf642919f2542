package export

import (
	"context"
	"database/sql"
	"fmt"

	"ngp/internal/storage"
)

// Import replaces the database contents with the snapshot, inside one
// transaction. All rows land verbatim, including cycle windows, targets and
// the full award history, so credit checks and token caps recompute to the
// same answers they gave before the export.
func Import(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	return storage.WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, table := range []string{
			"completion_awards", "completions", "journal_entries", "capsules",
			"redemptions", "rewards", "missions", "skills", "player",
		} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		p := snap.Player
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO player (key, display_name, class_name, level, xp, coins, day_starts_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, storage.MainPlayerKey, p.DisplayName, p.ClassName, p.Level, p.XP, p.Coins, p.DayStartsAt, p.CreatedAt); err != nil {
			return fmt.Errorf("import player: %w", err)
		}

		skillRepo := storage.NewSkillRepo(tx)
		for _, s := range snap.Skills {
			err := skillRepo.Insert(ctx, &storage.Skill{
				ID: s.ID, Name: s.Name, Level: s.Level, XP: s.XP,
				Color: s.Color, Icon: s.Icon,
				IsFocus: s.IsFocus, IsArchived: s.IsArchived,
				Cadence: s.Cadence, CustomDays: s.CustomDays,
				CycleStart: s.CycleStart, CycleEnd: s.CycleEnd,
				TargetMissionID:  s.TargetMissionID,
				HitTargetInCycle: s.HitTargetInCycle,
				CreatedAt:        s.CreatedAt,
			})
			if err != nil {
				return fmt.Errorf("import skill %s: %w", s.ID, err)
			}
		}

		missionRepo := storage.NewMissionRepo(tx)
		for _, m := range snap.Missions {
			err := missionRepo.Insert(ctx, &storage.Mission{
				ID: m.ID, Title: m.Title, Note: m.Note, SkillIDs: m.SkillIDs,
				Difficulty: m.Difficulty, Energy: m.Energy, IsArchived: m.IsArchived,
				CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			})
			if err != nil {
				return fmt.Errorf("import mission %s: %w", m.ID, err)
			}
		}

		completionRepo := storage.NewCompletionRepo(tx)
		for _, c := range snap.Completions {
			sc := &storage.Completion{
				ID: c.ID, MissionID: c.MissionID, CompletedAt: c.CompletedAt,
				PlayerXP: c.PlayerXP, CyclePlayerXP: c.CyclePlayerXP,
				Coins: c.Coins, ReflectionToken: c.ReflectionToken,
			}
			for _, a := range c.Awards {
				sc.Awards = append(sc.Awards, storage.CompletionAward{
					CompletionID: c.ID, SkillID: a.SkillID, CycleID: a.CycleID,
					BaseXP: a.BaseXP, CycleXP: a.CycleXP,
				})
			}
			if err := completionRepo.Insert(ctx, sc); err != nil {
				return fmt.Errorf("import completion %s: %w", c.ID, err)
			}
		}

		journalRepo := storage.NewJournalRepo(tx)
		for _, e := range snap.Journal {
			err := journalRepo.Insert(ctx, &storage.JournalEntry{
				ID: e.ID, Text: e.Text,
				CreatedAt: e.CreatedAt, EditedAt: e.EditedAt,
				SkillID: e.SkillID, MissionID: e.MissionID, CycleID: e.CycleID,
				IsReflection: e.IsReflection,
			})
			if err != nil {
				return fmt.Errorf("import journal %s: %w", e.ID, err)
			}
		}

		rewardRepo := storage.NewRewardRepo(tx)
		for _, w := range snap.Rewards {
			err := rewardRepo.Insert(ctx, &storage.Reward{
				ID: w.ID, Title: w.Title, PriceCoins: w.PriceCoins, Note: w.Note,
				IsArchived: w.IsArchived, TimesRedeemed: w.TimesRedeemed,
				CreatedAt: w.CreatedAt,
			})
			if err != nil {
				return fmt.Errorf("import reward %s: %w", w.ID, err)
			}
		}
		for _, d := range snap.Redemptions {
			err := rewardRepo.InsertRedemption(ctx, &storage.Redemption{
				ID: d.ID, RewardID: d.RewardID, CoinsSpent: d.CoinsSpent,
				RedeemedAt: d.RedeemedAt, Note: d.Note,
			})
			if err != nil {
				return fmt.Errorf("import redemption %s: %w", d.ID, err)
			}
		}

		capsuleRepo := storage.NewCapsuleRepo(tx)
		for _, c := range snap.Capsules {
			err := capsuleRepo.Insert(ctx, &storage.Capsule{
				ID: c.ID, Title: c.Title, Body: c.Body, IsSealed: c.IsSealed,
				PassphraseHint: c.PassphraseHint, UnlockKind: c.UnlockKind,
				UnlockDate: c.UnlockDate, UnlockMission: c.UnlockMission,
				UnlockSkill: c.UnlockSkill, UnlockLevel: c.UnlockLevel,
				CreatedAt: c.CreatedAt, UnlockedAt: c.UnlockedAt,
				JournalEntryID: c.JournalEntryID,
			})
			if err != nil {
				return fmt.Errorf("import capsule %s: %w", c.ID, err)
			}
		}
		return nil
	})
}
