package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngp/internal/storage"
)

// testClock is a mutable clock for driving cycle boundaries.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// stubRNG makes the target draw and the token roll deterministic.
type stubRNG struct {
	pick int     // Intn returns pick % n
	roll float64 // Float64 always returns roll
}

func (r *stubRNG) Intn(n int) int   { return r.pick % n }
func (r *stubRNG) Float64() float64 { return r.roll }

// monday is mid-window for daily, weekly and monthly cadences.
var monday = time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, clock *testClock, rng *stubRNG) *Service {
	t.Helper()
	ctx := context.Background()

	db, err := storage.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewService(db, WithClock(clock), WithRNG(rng))
}

// seedSkill creates a skill with the given number of attached missions, all
// difficulty 3, and advances past the first weekly boundary so readiness is
// evaluated. Returns the skill and its missions.
func seedSkill(t *testing.T, svc *Service, clock *testClock, missionCount int) (*storage.Skill, []*storage.Mission) {
	t.Helper()
	ctx := context.Background()

	skill, err := svc.CreateSkill(ctx, CreateSkillInput{Name: "Writing", Cadence: CadenceWeekly})
	require.NoError(t, err)

	missions := make([]*storage.Mission, 0, missionCount)
	for i := 0; i < missionCount; i++ {
		m, err := svc.CreateMission(ctx, CreateMissionInput{
			Title:      "mission",
			SkillIDs:   []string{skill.ID},
			Difficulty: DifficultyMedium,
			Energy:     2,
		})
		require.NoError(t, err)
		missions = append(missions, m)
	}

	// Cross the weekly boundary so the rollover re-evaluates readiness.
	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	fresh, err := svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	return fresh, missions
}

func TestReadinessGateAtSeven(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	skill, _ := seedSkill(t, svc, clock, 7)
	assert.Nil(t, skill.TargetMissionID, "7 missions must never seed a target")

	// The 8th mission plus the next boundary produces a target from the set.
	m8, err := svc.CreateMission(ctx, CreateMissionInput{
		Title: "eighth", SkillIDs: []string{skill.ID}, Difficulty: DifficultyEasy, Energy: 1,
	})
	require.NoError(t, err)

	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	skill, err = svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	require.NotNil(t, skill.TargetMissionID)

	assigned, err := svc.MissionRepo().ListForSkill(ctx, skill.ID)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, m := range assigned {
		ids[m.ID] = true
	}
	assert.True(t, ids[*skill.TargetMissionID], "target must come from the assigned set")
	assert.False(t, skill.HitTargetInCycle)
	_ = m8
}

func TestTargetScenarioAwards(t *testing.T) {
	// Level-1 player, ready skill, difficulty-3 target mission.
	// First completion: player 12+120, skill 24+240, coins 6.
	// Second completion in the same cycle: base only.
	ctx := context.Background()
	clock := &testClock{t: monday}
	rng := &stubRNG{roll: 1.0} // never issue tokens here
	svc := newTestService(t, clock, rng)

	skill, _ := seedSkill(t, svc, clock, 8)
	require.NotNil(t, skill.TargetMissionID)
	target := *skill.TargetMissionID

	res, err := svc.CompleteMission(ctx, target)
	require.NoError(t, err)

	assert.Equal(t, 12, res.PlayerXP)
	assert.Equal(t, 120, res.CyclePlayerXP)
	assert.Equal(t, 6, res.Coins)
	require.Len(t, res.SkillAwards, 1)
	assert.Equal(t, 24, res.SkillAwards[0].BaseXP)
	assert.Equal(t, 240, res.SkillAwards[0].CycleXP)
	assert.True(t, res.SkillAwards[0].TargetHit)

	// 132 player XP clears the 120 threshold.
	player, err := svc.PlayerRepo().GetOrCreateMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, player.Level)
	assert.Equal(t, 12, player.XP)
	assert.Equal(t, 6, player.Coins)
	assert.True(t, res.PlayerLevelUp())

	// 264 skill XP clears 120 then banks 144 at level 2.
	fresh, err := svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Level)
	assert.Equal(t, 144, fresh.XP)
	assert.True(t, fresh.HitTargetInCycle)

	// Second completion: base rewards only, no bonus, still coins.
	res2, err := svc.CompleteMission(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 12, res2.PlayerXP)
	assert.Equal(t, 0, res2.CyclePlayerXP)
	assert.Equal(t, 6, res2.Coins)
	require.Len(t, res2.SkillAwards, 1)
	assert.Equal(t, 24, res2.SkillAwards[0].BaseXP)
	assert.Equal(t, 0, res2.SkillAwards[0].CycleXP)
	assert.False(t, res2.SkillAwards[0].TargetHit)

	player, err = svc.PlayerRepo().GetOrCreateMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, player.Coins)
}

func TestCycleCreditSurvivesStaleHitFlag(t *testing.T) {
	// Even if the hit flag is cleared out from under the engine (as after a
	// raw import), history still blocks a second credit for the same triple.
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	skill, _ := seedSkill(t, svc, clock, 8)
	target := *skill.TargetMissionID

	_, err := svc.CompleteMission(ctx, target)
	require.NoError(t, err)

	fresh, err := svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	fresh.HitTargetInCycle = false
	require.NoError(t, svc.SkillRepo().Update(ctx, fresh))

	res, err := svc.CompleteMission(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CyclePlayerXP)
	assert.Equal(t, 0, res.SkillAwards[0].CycleXP)
}

func TestRolloverReseedsAndResetsHitFlag(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	skill, _ := seedSkill(t, svc, clock, 8)
	target := *skill.TargetMissionID

	_, err := svc.CompleteMission(ctx, target)
	require.NoError(t, err)

	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	fresh, err := svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.TargetMissionID, "ready skill reseeds at rollover")
	assert.False(t, fresh.HitTargetInCycle)

	// The new cycle pays the bonus again, even for the same mission.
	if *fresh.TargetMissionID == target {
		res, err := svc.CompleteMission(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, 240, res.SkillAwards[0].CycleXP)
	}
}

func TestDroppingBelowThresholdMidCycleKeepsTarget(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	skill, missions := seedSkill(t, svc, clock, 8)
	require.NotNil(t, skill.TargetMissionID)

	// Archive a non-target mission mid-cycle; readiness is only judged at
	// boundaries, so the target stays.
	for _, m := range missions {
		if m.ID != *skill.TargetMissionID {
			require.NoError(t, svc.ArchiveMission(ctx, m.ID))
			break
		}
	}
	clock.Advance(time.Hour)
	_, err := svc.RefreshCycles(ctx)
	require.NoError(t, err)

	fresh, err := svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	assert.NotNil(t, fresh.TargetMissionID)

	// At the next boundary the skill falls back to not-ready.
	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	fresh, err = svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.TargetMissionID)
}

func TestDailyTokenCap(t *testing.T) {
	// 100 eligible completions in one day issue at most 2 tokens.
	ctx := context.Background()
	clock := &testClock{t: monday}
	rng := &stubRNG{roll: 0.0} // every draw passes the 10% gate
	svc := newTestService(t, clock, rng)

	skill, missions := seedSkill(t, svc, clock, 8)
	_ = skill

	tokens := 0
	for i := 0; i < 100; i++ {
		res, err := svc.CompleteMission(ctx, missions[0].ID)
		require.NoError(t, err)
		if res.ReflectionToken {
			tokens++
		}
		clock.Advance(time.Minute)
	}
	assert.Equal(t, 2, tokens)
}

func TestSkillCycleTokenCap(t *testing.T) {
	// Spread across days inside one weekly cycle, the per-cycle cap of 7
	// binds before the daily cap can pay out 2 every day.
	ctx := context.Background()
	clock := &testClock{t: monday}
	rng := &stubRNG{roll: 0.0}
	svc := newTestService(t, clock, rng)

	_, missions := seedSkill(t, svc, clock, 8)

	tokens := 0
	for day := 0; day < 6; day++ {
		for i := 0; i < 10; i++ {
			res, err := svc.CompleteMission(ctx, missions[1].ID)
			require.NoError(t, err)
			if res.ReflectionToken {
				tokens++
			}
		}
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, 7, tokens)
}

func TestCompleteMissionErrors(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	_, err := svc.CompleteMission(ctx, "no-such-id")
	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "mission", notFound.Entity)

	_, missions := seedSkill(t, svc, clock, 8)
	require.NoError(t, svc.ArchiveMission(ctx, missions[0].ID))

	_, err = svc.CompleteMission(ctx, missions[0].ID)
	var violation StateViolationError
	require.ErrorAs(t, err, &violation)
}

func TestRedeemReward(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	reward, err := svc.CreateReward(ctx, "Movie night", 10, "")
	require.NoError(t, err)

	// Broke player cannot redeem.
	_, err = svc.RedeemReward(ctx, reward.ID, "")
	var violation StateViolationError
	require.ErrorAs(t, err, &violation)

	// Earn some coins, then redeem.
	_, missions := seedSkill(t, svc, clock, 8)
	for i := 0; i < 2; i++ {
		_, err := svc.CompleteMission(ctx, missions[0].ID)
		require.NoError(t, err)
	}

	res, err := svc.RedeemReward(ctx, reward.ID, "popcorn")
	require.NoError(t, err)
	assert.Equal(t, 2, res.CoinsRemaining) // 2 completions x 6 coins - 10
	assert.Equal(t, 1, res.Reward.TimesRedeemed)

	history, err := svc.RewardRepo().ListRedemptions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 10, history[0].CoinsSpent)
}

func TestCapsuleTriggers(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	skill, missions := seedSkill(t, svc, clock, 8)

	unlockDate := clock.Now().Add(48 * time.Hour)
	byDate, err := svc.CreateCapsule(ctx, CreateCapsuleInput{
		Title: "future letter", Body: "hello", UnlockKind: UnlockOnDate, UnlockDate: &unlockDate,
	})
	require.NoError(t, err)

	// Watch a non-target mission so its completion pays base XP only and the
	// player stays at level 1 until the loop below.
	mid := missions[0].ID
	for _, m := range missions {
		if skill.TargetMissionID == nil || m.ID != *skill.TargetMissionID {
			mid = m.ID
			break
		}
	}
	byMission, err := svc.CreateCapsule(ctx, CreateCapsuleInput{
		Title: "on that one", Body: "you did it", UnlockKind: UnlockOnMission, UnlockMission: &mid,
	})
	require.NoError(t, err)

	byLevel, err := svc.CreateCapsule(ctx, CreateCapsuleInput{
		Title: "level 2", Body: "grown up", UnlockKind: UnlockOnPlayerLevel, UnlockLevel: 2,
	})
	require.NoError(t, err)

	// Nothing unlocks yet.
	unlocked, err := svc.RefreshCycles(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	// Completing the watched mission unlocks the mission capsule.
	res, err := svc.CompleteMission(ctx, mid)
	require.NoError(t, err)
	ids := capsuleIDs(res.UnlockedCapsules)
	assert.Contains(t, ids, byMission.ID)
	assert.NotContains(t, ids, byDate.ID)

	// Date tick after the unlock date.
	clock.Advance(72 * time.Hour)
	unlocked, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)
	assert.Contains(t, capsuleIDs(unlocked), byDate.ID)

	// Unlocking is idempotent: a second tick reports nothing new.
	unlocked, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	// Level the player past 2 (each completion pays 12 base player XP).
	var got []string
	for i := 0; i < 12; i++ {
		res, err := svc.CompleteMission(ctx, missions[0].ID)
		require.NoError(t, err)
		got = append(got, capsuleIDs(res.UnlockedCapsules)...)
	}
	assert.Contains(t, got, byLevel.ID)
}

func TestSealedCapsuleRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	unlockDate := clock.Now().Add(-time.Hour)
	c, err := svc.CreateCapsule(ctx, CreateCapsuleInput{
		Title: "sealed", Body: "secret plans", Passphrase: "open sesame",
		UnlockKind: UnlockOnDate, UnlockDate: &unlockDate,
	})
	require.NoError(t, err)
	assert.True(t, c.IsSealed)

	// Locked until a tick observes the date.
	_, err = svc.OpenCapsule(ctx, c.ID, "open sesame")
	var violation StateViolationError
	require.ErrorAs(t, err, &violation)

	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	body, err := svc.OpenCapsule(ctx, c.ID, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, "secret plans", body)

	_, err = svc.OpenCapsule(ctx, c.ID, "wrong")
	require.ErrorAs(t, err, &violation)
}

func TestCreateMissionValidation(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0})

	skill, err := svc.CreateSkill(ctx, CreateSkillInput{Name: "Cardio"})
	require.NoError(t, err)

	var invalid InvalidInputError

	_, err = svc.CreateMission(ctx, CreateMissionInput{
		Title: "x", SkillIDs: []string{skill.ID}, Difficulty: 6, Energy: 1,
	})
	require.ErrorAs(t, err, &invalid)

	_, err = svc.CreateMission(ctx, CreateMissionInput{
		Title: "x", SkillIDs: []string{skill.ID}, Difficulty: 1, Energy: 0,
	})
	require.ErrorAs(t, err, &invalid)

	_, err = svc.CreateMission(ctx, CreateMissionInput{
		Title: "x", SkillIDs: []string{skill.ID, skill.ID, skill.ID}, Difficulty: 1, Energy: 1,
	})
	require.ErrorAs(t, err, &invalid)

	_, err = svc.CreateMission(ctx, CreateMissionInput{
		Title: "x", SkillIDs: []string{"ghost"}, Difficulty: 1, Energy: 1,
	})
	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDualSkillMissionCreditsIndependently(t *testing.T) {
	// A mission attached to two skills can hit both targets in one event;
	// each (mission, skill) pair is credited on its own.
	ctx := context.Background()
	clock := &testClock{t: monday}
	svc := newTestService(t, clock, &stubRNG{roll: 1.0, pick: 0})

	a, err := svc.CreateSkill(ctx, CreateSkillInput{Name: "A", Cadence: CadenceWeekly})
	require.NoError(t, err)
	b, err := svc.CreateSkill(ctx, CreateSkillInput{Name: "B", Cadence: CadenceWeekly})
	require.NoError(t, err)

	var shared *storage.Mission
	for i := 0; i < 8; i++ {
		m, err := svc.CreateMission(ctx, CreateMissionInput{
			Title: "shared", SkillIDs: []string{a.ID, b.ID}, Difficulty: DifficultyEasy, Energy: 1,
		})
		require.NoError(t, err)
		if i == 0 {
			shared = m
		}
	}
	_ = shared

	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	a, err = svc.SkillRepo().Get(ctx, a.ID)
	require.NoError(t, err)
	b, err = svc.SkillRepo().Get(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, a.TargetMissionID)
	require.NotNil(t, b.TargetMissionID)

	// stubRNG pick=0 chooses the same index for both skills; with identical
	// mission sets both targets are the same mission.
	require.Equal(t, *a.TargetMissionID, *b.TargetMissionID)

	res, err := svc.CompleteMission(ctx, *a.TargetMissionID)
	require.NoError(t, err)
	require.Len(t, res.SkillAwards, 2)
	assert.True(t, res.SkillAwards[0].TargetHit)
	assert.True(t, res.SkillAwards[1].TargetHit)
	// Both bonuses stack on the player: 2 x 40 x difficulty.
	assert.Equal(t, 160, res.CyclePlayerXP)
}

func capsuleIDs(cs []*storage.Capsule) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
