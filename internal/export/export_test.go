package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngp/internal/engine"
	"ngp/internal/storage"
)

type tickClock struct{ t time.Time }

func (c *tickClock) Now() time.Time          { return c.t }
func (c *tickClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixedRNG struct{}

func (fixedRNG) Intn(n int) int   { return 0 }
func (fixedRNG) Float64() float64 { return 1.0 }

// seedWorld builds a database with a live cycle, award history, a redemption,
// a journal entry and a capsule, and returns it with the service.
func seedWorld(t *testing.T, clock *tickClock) *engine.Service {
	t.Helper()
	ctx := context.Background()

	db, err := storage.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := engine.NewService(db, engine.WithClock(clock), engine.WithRNG(fixedRNG{}))

	skill, err := svc.CreateSkill(ctx, engine.CreateSkillInput{Name: "Writing", Cadence: engine.CadenceWeekly})
	require.NoError(t, err)
	var missions []string
	for i := 0; i < 8; i++ {
		m, err := svc.CreateMission(ctx, engine.CreateMissionInput{
			Title: "mission", SkillIDs: []string{skill.ID}, Difficulty: engine.DifficultyMedium, Energy: 2,
		})
		require.NoError(t, err)
		missions = append(missions, m.ID)
	}

	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.RefreshCycles(ctx)
	require.NoError(t, err)

	fresh, err := svc.SkillRepo().Get(ctx, skill.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.TargetMissionID)

	// Hit the target so the export carries a cycle credit in history.
	_, err = svc.CompleteMission(ctx, *fresh.TargetMissionID)
	require.NoError(t, err)
	_, err = svc.CompleteMission(ctx, missions[0])
	require.NoError(t, err)

	reward, err := svc.CreateReward(ctx, "fancy coffee", 5, "")
	require.NoError(t, err)
	_, err = svc.RedeemReward(ctx, reward.ID, "earned it")
	require.NoError(t, err)

	_, err = svc.AddJournalEntry(ctx, "good week", nil, &skill.ID)
	require.NoError(t, err)

	unlockAt := clock.Now().Add(30 * 24 * time.Hour)
	_, err = svc.CreateCapsule(ctx, engine.CreateCapsuleInput{
		Title: "dear future me", Body: "keep writing", Passphrase: "hunter2",
		UnlockKind: engine.UnlockOnDate, UnlockDate: &unlockAt,
	})
	require.NoError(t, err)

	return svc
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := &tickClock{t: time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)}
	svc := seedWorld(t, clock)
	now := clock.Now()

	path := filepath.Join(t.TempDir(), "ngp.json")
	require.NoError(t, WriteFile(ctx, svc.DB(), now, path))

	snapA, err := Collect(ctx, svc.DB(), now)
	require.NoError(t, err)

	// File round-trip is lossless.
	snapRead, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(snapA, snapRead))

	// Database round-trip is lossless too, cycle state included.
	db2, err := storage.OpenMemory(ctx)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, Import(ctx, db2, snapRead))

	snapB, err := Collect(ctx, db2, now)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(snapA, snapB))

	require.Len(t, snapB.Skills, 1)
	s := snapB.Skills[0]
	assert.NotNil(t, s.CycleStart)
	assert.NotNil(t, s.CycleEnd)
	assert.NotNil(t, s.TargetMissionID)
	assert.True(t, s.HitTargetInCycle)
}

func TestImportedHistoryStillBlocksDoubleCredit(t *testing.T) {
	ctx := context.Background()
	clock := &tickClock{t: time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)}
	svc := seedWorld(t, clock)

	snap, err := Collect(ctx, svc.DB(), clock.Now())
	require.NoError(t, err)

	db2, err := storage.OpenMemory(ctx)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, Import(ctx, db2, snap))

	svc2 := engine.NewService(db2, engine.WithClock(clock), engine.WithRNG(fixedRNG{}))

	// Sabotage the hit flag to mimic a drifted import. The credit must still
	// be refused because it is recomputed from the award history.
	skill, err := svc2.SkillRepo().Get(ctx, snap.Skills[0].ID)
	require.NoError(t, err)
	skill.HitTargetInCycle = false
	require.NoError(t, svc2.SkillRepo().Update(ctx, skill))

	res, err := svc2.CompleteMission(ctx, *skill.TargetMissionID)
	require.NoError(t, err)
	assert.Zero(t, res.CyclePlayerXP)
	require.Len(t, res.SkillAwards, 1)
	assert.Zero(t, res.SkillAwards[0].CycleXP)
	assert.Equal(t, 24, res.SkillAwards[0].BaseXP)
}

func TestReadFileRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o644))
	_, err := ReadFile(path)
	assert.ErrorContains(t, err, "version 99")
}
