package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	// A second migration run against the same handle is a no-op thanks to
	// the user_version guard.
	require.NoError(t, Migrate(ctx, db))

	var version int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestPlayerGetOrCreate(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	repo := NewPlayerRepo(db)
	p, err := repo.GetOrCreateMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, MainPlayerKey, p.Key)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.XP)

	p.Level = 3
	p.Coins = 42
	require.NoError(t, repo.Update(ctx, p))

	again, err := repo.GetOrCreateMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Level)
	assert.Equal(t, 42, again.Coins)
}

func TestSkillCycleFieldsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	repo := NewSkillRepo(db)
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	target := "mission-1"
	s := &Skill{
		ID: "skill-1", Name: "Writing", Level: 2, XP: 40,
		Color: "#FF0000", Icon: "✍️", Cadence: "weekly",
		CycleStart: &start, CycleEnd: &end,
		TargetMissionID: &target, HitTargetInCycle: true,
		CreatedAt: start,
	}
	require.NoError(t, repo.Insert(ctx, s))

	got, err := repo.Get(ctx, "skill-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.CycleStart)
	assert.True(t, got.CycleStart.Equal(start))
	require.NotNil(t, got.TargetMissionID)
	assert.Equal(t, target, *got.TargetMissionID)
	assert.True(t, got.HitTargetInCycle)

	// Clearing the pointers persists as NULL.
	got.CycleStart, got.CycleEnd, got.TargetMissionID = nil, nil, nil
	got.HitTargetInCycle = false
	require.NoError(t, repo.Update(ctx, got))

	cleared, err := repo.Get(ctx, "skill-1")
	require.NoError(t, err)
	assert.Nil(t, cleared.CycleStart)
	assert.Nil(t, cleared.TargetMissionID)

	byName, err := repo.GetByName(ctx, "Writing")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "skill-1", byName.ID)
}

func TestMissionSkillIDsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	repo := NewMissionRepo(db)
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	m := &Mission{
		ID: "m1", Title: "write 500 words", SkillIDs: []string{"a", "b"},
		Difficulty: 3, Energy: 2, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Insert(ctx, m))

	got, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"a", "b"}, got.SkillIDs)

	forA, err := repo.ListForSkill(ctx, "a")
	require.NoError(t, err)
	require.Len(t, forA, 1)
	forC, err := repo.ListForSkill(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, forC)

	got.IsArchived = true
	require.NoError(t, repo.Update(ctx, got))
	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCompletionCreditQueries(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	repo := NewCompletionRepo(db)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cycleID := "skill-1:2025-03-10T00:00:00Z"

	require.NoError(t, repo.Insert(ctx, &Completion{
		ID: "c1", MissionID: "m1", CompletedAt: at,
		PlayerXP: 12, CyclePlayerXP: 120, Coins: 6, ReflectionToken: true,
		Awards: []CompletionAward{
			{SkillID: "skill-1", CycleID: cycleID, BaseXP: 24, CycleXP: 240},
		},
	}))
	require.NoError(t, repo.Insert(ctx, &Completion{
		ID: "c2", MissionID: "m1", CompletedAt: at.Add(time.Hour),
		PlayerXP: 12, Coins: 6,
		Awards: []CompletionAward{
			{SkillID: "skill-1", CycleID: cycleID, BaseXP: 24},
		},
	}))

	credited, err := repo.HasCycleCredit(ctx, "m1", "skill-1", cycleID)
	require.NoError(t, err)
	assert.True(t, credited)

	other, err := repo.HasCycleCredit(ctx, "m2", "skill-1", cycleID)
	require.NoError(t, err)
	assert.False(t, other, "credit is keyed per mission")

	hadCredit, err := repo.CycleHadCredit(ctx, "skill-1", cycleID)
	require.NoError(t, err)
	assert.True(t, hadCredit)

	tokens, err := repo.CountTokensSince(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 1, tokens)
	tokens, err = repo.CountTokensSince(ctx, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, tokens)

	perCycle, err := repo.CountTokensForCycle(ctx, "skill-1", cycleID)
	require.NoError(t, err)
	assert.Equal(t, 1, perCycle)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	require.Len(t, list[0].Awards, 1)
	assert.Equal(t, 240, list[0].Awards[0].CycleXP)
}

func TestCapsuleListLocked(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	require.NoError(t, err)
	defer db.Close()

	repo := NewCapsuleRepo(db)
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, &Capsule{
		ID: "cap1", Title: "locked", Body: []byte("hi"),
		UnlockKind: "player_level", UnlockLevel: 5, CreatedAt: now,
	}))
	unlockedAt := now.Add(time.Hour)
	require.NoError(t, repo.Insert(ctx, &Capsule{
		ID: "cap2", Title: "open", Body: []byte("ho"),
		UnlockKind: "date", UnlockDate: &now, CreatedAt: now, UnlockedAt: &unlockedAt,
	}))

	locked, err := repo.ListLocked(ctx)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, "cap1", locked[0].ID)

	locked[0].UnlockedAt = &unlockedAt
	require.NoError(t, repo.Update(ctx, locked[0]))
	locked, err = repo.ListLocked(ctx)
	require.NoError(t, err)
	assert.Empty(t, locked)
}
