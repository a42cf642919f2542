package navigator

import (
	"context"
	"fmt"
	"time"

	"ngp/internal/engine"
	"ngp/internal/storage"
)

// Snapshot is a copy-on-read view of everything the detectors consume. It is
// collected up front so analysis can run (or be deferred) without observing a
// half-applied completion, and so detectors stay pure functions of one value.
type Snapshot struct {
	Now         time.Time
	DayStartsAt int

	Player      storage.Player
	Skills      []storage.Skill
	Missions    []storage.Mission
	Completions []storage.Completion
	Journal     []storage.JournalEntry
	Rewards     []storage.Reward
	Redemptions []storage.Redemption

	// MissionCounts is assigned-mission counts per skill, archived excluded.
	MissionCounts map[string]int
}

// Collect reads the full state once. Active (non-archived) skills, missions
// and rewards only; completions and journal in full.
func Collect(ctx context.Context, svc *engine.Service) (*Snapshot, error) {
	player, err := svc.PlayerRepo().GetOrCreateMain(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect player: %w", err)
	}
	skills, err := svc.SkillRepo().List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("collect skills: %w", err)
	}
	missions, err := svc.MissionRepo().List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("collect missions: %w", err)
	}
	completions, err := svc.CompletionRepo().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect completions: %w", err)
	}
	journal, err := svc.JournalRepo().List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("collect journal: %w", err)
	}
	rewards, err := svc.RewardRepo().List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("collect rewards: %w", err)
	}
	redemptions, err := svc.RewardRepo().ListRedemptions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("collect redemptions: %w", err)
	}

	snap := &Snapshot{
		Now:           svc.Clock().Now(),
		DayStartsAt:   player.DayStartsAt,
		Player:        *player,
		MissionCounts: make(map[string]int, len(skills)),
	}
	for _, s := range skills {
		snap.Skills = append(snap.Skills, *s)
	}
	for _, m := range missions {
		snap.Missions = append(snap.Missions, *m)
		for _, sid := range m.SkillIDs {
			snap.MissionCounts[sid]++
		}
	}
	for _, c := range completions {
		snap.Completions = append(snap.Completions, *c)
	}
	for _, e := range journal {
		snap.Journal = append(snap.Journal, *e)
	}
	for _, w := range rewards {
		snap.Rewards = append(snap.Rewards, *w)
	}
	for _, d := range redemptions {
		snap.Redemptions = append(snap.Redemptions, *d)
	}
	return snap, nil
}

// creditedCycles returns the set of cycle ids that received a cycle bonus,
// derived from the award history rather than any per-skill flag.
func (s *Snapshot) creditedCycles() map[string]bool {
	out := make(map[string]bool)
	for _, c := range s.Completions {
		for _, a := range c.Awards {
			if a.CycleXP > 0 {
				out[a.CycleID] = true
			}
		}
	}
	return out
}
