package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngp/internal/storage"
	"ngp/internal/timeutil"
)

const (
	reflectionProbability  = 0.10
	maxDailyTokens         = 2
	maxTokensPerSkillCycle = 7
)

// SkillAward is the per-skill slice of a completion result.
type SkillAward struct {
	SkillID     string
	SkillName   string
	CycleID     string
	BaseXP      int
	CycleXP     int // 0 unless the cycle target was hit and credited
	LevelBefore int
	LevelAfter  int
	TargetHit   bool
}

// CompleteResult is the full award breakdown returned to the presentation
// layer.
type CompleteResult struct {
	CompletionID string
	MissionID    string
	MissionTitle string

	PlayerXP          int // base
	CyclePlayerXP     int // bonus portion
	Coins             int
	PlayerLevelBefore int
	PlayerLevelAfter  int

	SkillAwards []SkillAward

	ReflectionToken  bool
	UnlockedCapsules []*storage.Capsule
}

func (r *CompleteResult) PlayerLevelUp() bool {
	return r.PlayerLevelAfter > r.PlayerLevelBefore
}

// CompleteMission processes one mission completion: rolls lapsed cycles,
// grants base rewards, applies the cycle bonus where the anti-gaming
// invariant allows it, resolves level-ups, decides reflection-token
// eligibility, appends the completion record, and fires capsule checks.
// The credit check and the append run in one transaction under the service
// mutex, so the one-credit-per-cycle invariant holds even under racing
// callers.
func (s *Service) CompleteMission(ctx context.Context, missionID string) (*CompleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *CompleteResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		result, err = s.completeMissionTx(ctx, reposFor(tx), missionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("mission completed",
		zap.String("mission", result.MissionTitle),
		zap.Int("player_xp", result.PlayerXP+result.CyclePlayerXP),
		zap.Int("coins", result.Coins),
		zap.Bool("reflection_token", result.ReflectionToken))
	return result, nil
}

func (s *Service) completeMissionTx(ctx context.Context, r txRepos, missionID string) (*CompleteResult, error) {
	mission, err := r.missions.Get(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, NotFoundError{Entity: "mission", ID: missionID}
	}
	if mission.IsArchived {
		return nil, StateViolationError{Op: "complete mission", Reason: "mission is archived"}
	}

	player, err := r.players.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	// Cycle boundaries are evaluated before any award so the completion lands
	// in the current window.
	if err := s.refreshCycles(ctx, r, now, player.DayStartsAt); err != nil {
		return nil, err
	}

	base, err := BaseAwardFor(Difficulty(mission.Difficulty))
	if err != nil {
		return nil, err
	}
	bonus, err := CycleBonusFor(Difficulty(mission.Difficulty))
	if err != nil {
		return nil, err
	}

	result := &CompleteResult{
		CompletionID:      uuid.NewString(),
		MissionID:         mission.ID,
		MissionTitle:      mission.Title,
		PlayerXP:          base.PlayerXP,
		Coins:             base.Coins,
		PlayerLevelBefore: player.Level,
	}

	completion := &storage.Completion{
		ID:          result.CompletionID,
		MissionID:   mission.ID,
		CompletedAt: now,
		PlayerXP:    base.PlayerXP,
		Coins:       base.Coins,
	}

	var skillLevelUpEvents []Event

	for _, skillID := range mission.SkillIDs {
		skill, err := r.skills.Get(ctx, skillID)
		if err != nil {
			return nil, err
		}
		if skill == nil || skill.IsArchived || skill.CycleStart == nil {
			continue
		}

		cycleID := CycleID(skill.ID, *skill.CycleStart)
		award := SkillAward{
			SkillID:     skill.ID,
			SkillName:   skill.Name,
			CycleID:     cycleID,
			BaseXP:      base.SkillXP,
			LevelBefore: skill.Level,
		}

		skillXP := base.SkillXP

		// Cycle bonus: skill must be in an active cycle, the mission must be
		// its target, the target not yet hit, and history must show no prior
		// credit for this (mission, skill, cycle) triple. Each attached skill
		// is judged independently.
		eligible := skill.TargetMissionID != nil &&
			*skill.TargetMissionID == mission.ID &&
			!skill.HitTargetInCycle
		if eligible {
			credited, err := r.completions.HasCycleCredit(ctx, mission.ID, skill.ID, cycleID)
			if err != nil {
				return nil, err
			}
			if !credited {
				skillXP += bonus.SkillXP
				award.CycleXP = bonus.SkillXP
				award.TargetHit = true
				result.CyclePlayerXP += bonus.PlayerXP
				skill.HitTargetInCycle = true
			}
		}

		newLevel, newXP, levelUps, err := ApplyXP(skill.Level, skill.XP, skillXP, skill.IsFocus)
		if err != nil {
			return nil, err
		}
		skill.Level = newLevel
		skill.XP = newXP
		award.LevelAfter = newLevel
		if levelUps > 0 {
			skillLevelUpEvents = append(skillLevelUpEvents, Event{
				Kind: EventSkillLevelUp, At: now, SkillID: skill.ID, Level: newLevel,
			})
		}

		if err := r.skills.Update(ctx, skill); err != nil {
			return nil, err
		}

		result.SkillAwards = append(result.SkillAwards, award)
		completion.Awards = append(completion.Awards, storage.CompletionAward{
			CompletionID: completion.ID,
			SkillID:      skill.ID,
			CycleID:      cycleID,
			BaseXP:       base.SkillXP,
			CycleXP:      award.CycleXP,
		})
	}

	newLevel, newXP, _, err := ApplyXP(player.Level, player.XP, base.PlayerXP+result.CyclePlayerXP, false)
	if err != nil {
		return nil, err
	}
	player.Level = newLevel
	player.XP = newXP
	player.Coins += base.Coins
	result.PlayerLevelAfter = newLevel
	completion.CyclePlayerXP = result.CyclePlayerXP

	if err := r.players.Update(ctx, player); err != nil {
		return nil, err
	}

	token, err := s.drawReflectionToken(ctx, r, completion, player.DayStartsAt, now)
	if err != nil {
		return nil, err
	}
	completion.ReflectionToken = token
	result.ReflectionToken = token

	if err := r.completions.Insert(ctx, completion); err != nil {
		return nil, err
	}

	// Capsule checks observe the post-award state.
	events := []Event{{Kind: EventMissionCompleted, At: now, MissionID: mission.ID}}
	if result.PlayerLevelUp() {
		events = append(events, Event{Kind: EventPlayerLevelUp, At: now, Level: player.Level})
	}
	events = append(events, skillLevelUpEvents...)
	for _, ev := range events {
		unlocked, err := s.checkCapsules(ctx, r, ev)
		if err != nil {
			return nil, err
		}
		result.UnlockedCapsules = append(result.UnlockedCapsules, unlocked...)
	}

	return result, nil
}

// drawReflectionToken rolls the 10% chance, then enforces both caps by
// recomputing from completion history: at most 2 tokens per aligned day and
// at most 7 per skill-cycle of any attached skill.
func (s *Service) drawReflectionToken(ctx context.Context, r txRepos, c *storage.Completion, dayStartsAt int, now time.Time) (bool, error) {
	if s.rng.Float64() >= reflectionProbability {
		return false, nil
	}

	dayStart := timeutil.AlignDayStart(now, dayStartsAt)
	today, err := r.completions.CountTokensSince(ctx, dayStart)
	if err != nil {
		return false, err
	}
	if today >= maxDailyTokens {
		return false, nil
	}

	for _, a := range c.Awards {
		n, err := r.completions.CountTokensForCycle(ctx, a.SkillID, a.CycleID)
		if err != nil {
			return false, err
		}
		if n >= maxTokensPerSkillCycle {
			return false, nil
		}
	}
	return true, nil
}
