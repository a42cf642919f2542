package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPThresholdCurve(t *testing.T) {
	prev := 0
	for level := 1; level <= 50; level++ {
		got, err := XPThreshold(level)
		require.NoError(t, err)

		want := int(math.Ceil(120 * math.Pow(float64(level), 1.5)))
		assert.Equal(t, want, got, "level %d", level)
		assert.Greater(t, got, prev, "threshold must be strictly increasing at level %d", level)
		prev = got
	}

	assert.Equal(t, 120, mustThreshold(t, 1))
	assert.Equal(t, 340, mustThreshold(t, 2)) // ceil(339.41...)
}

func TestXPThresholdInvalidLevel(t *testing.T) {
	for _, level := range []int{0, -1, -100} {
		_, err := XPThreshold(level)
		var invalid InvalidInputError
		require.ErrorAs(t, err, &invalid, "level %d", level)
		assert.Equal(t, "level", invalid.Field)
	}
}

func TestBaseAwardFor(t *testing.T) {
	for d := 1; d <= 5; d++ {
		award, err := BaseAwardFor(Difficulty(d))
		require.NoError(t, err)
		assert.Equal(t, 4*d, award.PlayerXP)
		assert.Equal(t, 8*d, award.SkillXP)
		assert.Equal(t, 2*d, award.Coins)

		// Cycle player XP is exactly 10x base player XP.
		bonus, err := CycleBonusFor(Difficulty(d))
		require.NoError(t, err)
		assert.Equal(t, 10*award.PlayerXP, bonus.PlayerXP)
		assert.Equal(t, 10*award.SkillXP, bonus.SkillXP)
	}

	for _, d := range []Difficulty{0, 6, -1} {
		_, err := BaseAwardFor(d)
		var invalid InvalidInputError
		require.ErrorAs(t, err, &invalid)
		_, err = CycleBonusFor(d)
		require.ErrorAs(t, err, &invalid)
	}
}

func TestApplyXPSingleLevelUp(t *testing.T) {
	// Level 1 threshold is 120; remainder carries forward.
	level, xp, ups, err := ApplyXP(1, 0, 132, false)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	assert.Equal(t, 12, xp)
	assert.Equal(t, 1, ups)
}

func TestApplyXPCascades(t *testing.T) {
	// 120 + 340 = 460 clears two levels; the rest banks at level 3.
	level, xp, ups, err := ApplyXP(1, 0, 500, false)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
	assert.Equal(t, 40, xp)
	assert.Equal(t, 2, ups)
}

func TestApplyXPFocusDoublesThreshold(t *testing.T) {
	// Focus: level 1 bar is 240, so 132 XP does not level.
	level, xp, ups, err := ApplyXP(1, 0, 132, true)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.Equal(t, 132, xp)
	assert.Equal(t, 0, ups)

	// 240 exactly clears it.
	level, xp, ups, err = ApplyXP(1, 0, 240, true)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	assert.Equal(t, 0, xp)
	assert.Equal(t, 1, ups)
}

func TestApplyXPInvalidLevel(t *testing.T) {
	_, _, _, err := ApplyXP(0, 0, 10, false)
	var invalid InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func mustThreshold(t *testing.T, level int) int {
	t.Helper()
	v, err := XPThreshold(level)
	require.NoError(t, err)
	return v
}
