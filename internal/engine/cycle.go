package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ngp/internal/storage"
	"ngp/internal/timeutil"
)

// CycleID derives the one-credit-per-cycle key for a skill's cycle.
// Format: "<skillID>:<cycleStart RFC3339, UTC>".
func CycleID(skillID string, cycleStart time.Time) string {
	return fmt.Sprintf("%s:%s", skillID, cycleStart.UTC().Format(time.RFC3339))
}

// StateOf derives the cycle machine state for a skill. Readiness is judged by
// assigned-mission count; rollover is implicit once now passes cycleEnd.
func StateOf(skill *storage.Skill, missionCount int, now time.Time) CycleState {
	if skill.CycleEnd == nil {
		return StateNotReady
	}
	if !now.Before(*skill.CycleEnd) {
		return StateAwaitingRollover
	}
	if skill.TargetMissionID == nil {
		return StateNotReady
	}
	return StateActive
}

// needsRollover reports whether a new cycle must be opened for the skill.
func needsRollover(skill *storage.Skill, now time.Time) bool {
	if skill.CycleEnd == nil {
		return true
	}
	return !now.Before(*skill.CycleEnd)
}

// rollCycle opens a new cycle window for the skill and, when the skill is
// ready, seeds a fresh target with one uniform RNG draw. Repetition of the
// previous target is allowed. Readiness is evaluated only here; dropping
// under the threshold mid-cycle never revokes an active target.
func (s *Service) rollCycle(ctx context.Context, r txRepos, skill *storage.Skill, now time.Time, dayStartsAt int) error {
	start, end := timeutil.CycleWindow(skill.Cadence, now, dayStartsAt, skill.CustomDays)
	skill.CycleStart = &start
	skill.CycleEnd = &end
	skill.HitTargetInCycle = false

	assigned, err := r.missions.ListForSkill(ctx, skill.ID)
	if err != nil {
		return err
	}

	if len(assigned) >= ReadinessThreshold {
		pick := assigned[s.rng.Intn(len(assigned))]
		id := pick.ID
		skill.TargetMissionID = &id
		s.log.Debug("cycle target seeded",
			zap.String("skill", skill.Name),
			zap.String("mission_id", pick.ID),
			zap.Time("cycle_start", start),
			zap.Time("cycle_end", end))
	} else {
		skill.TargetMissionID = nil
	}

	return r.skills.Update(ctx, skill)
}

// refreshCycles rolls over every non-archived skill whose window has lapsed.
// Deterministic given (now, skill state, mission set) plus the injected RNG.
func (s *Service) refreshCycles(ctx context.Context, r txRepos, now time.Time, dayStartsAt int) error {
	skills, err := r.skills.List(ctx, false)
	if err != nil {
		return err
	}
	for _, skill := range skills {
		if needsRollover(skill, now) {
			if err := s.rollCycle(ctx, r, skill, now, dayStartsAt); err != nil {
				return err
			}
		}
	}
	return nil
}

// RefreshCycles processes pending rollovers outside of a completion, e.g. on
// a date tick, and fires date-based capsule checks.
func (s *Service) RefreshCycles(ctx context.Context) ([]*storage.Capsule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unlocked []*storage.Capsule
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		player, err := r.players.GetOrCreateMain(ctx)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := s.refreshCycles(ctx, r, now, player.DayStartsAt); err != nil {
			return err
		}
		unlocked, err = s.checkCapsules(ctx, r, Event{Kind: EventDateTick, At: now})
		return err
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}
