package engine

import "math"

// Progression math. All functions here are pure; callers decide what to
// persist.

const (
	// XPCurveCoef is the threshold curve constant: ceil(120 × level^1.5).
	XPCurveCoef = 120.0

	basePlayerXPPerDifficulty = 4
	baseSkillXPPerDifficulty  = 8
	coinsPerDifficulty        = 2

	cyclePlayerXPPerDifficulty = 40
	cycleSkillXPPerDifficulty  = 80

	// FocusThresholdFactor doubles the climb for Focus skills. Awards are
	// untouched; only the bar moves.
	FocusThresholdFactor = 2
)

// XPThreshold returns the XP needed to advance past the given level.
func XPThreshold(level int) (int, error) {
	if level < 1 {
		return 0, errInvalidLevel(level)
	}
	// Ceil so float rounding never makes a threshold easier.
	return int(math.Ceil(XPCurveCoef * math.Pow(float64(level), 1.5))), nil
}

// BaseAward is the unconditional per-completion reward.
type BaseAward struct {
	PlayerXP int // 4 × difficulty
	SkillXP  int // 8 × difficulty, per attached skill
	Coins    int // 2 × difficulty
}

func BaseAwardFor(d Difficulty) (BaseAward, error) {
	if !d.IsValid() {
		return BaseAward{}, errInvalidDifficulty(d)
	}
	return BaseAward{
		PlayerXP: basePlayerXPPerDifficulty * int(d),
		SkillXP:  baseSkillXPPerDifficulty * int(d),
		Coins:    coinsPerDifficulty * int(d),
	}, nil
}

// CycleBonus is the once-per-skill-per-cycle reward for hitting the target.
// No bonus coins.
type CycleBonus struct {
	PlayerXP int // 40 × difficulty
	SkillXP  int // 80 × difficulty, targeted skill only
}

func CycleBonusFor(d Difficulty) (CycleBonus, error) {
	if !d.IsValid() {
		return CycleBonus{}, errInvalidDifficulty(d)
	}
	return CycleBonus{
		PlayerXP: cyclePlayerXPPerDifficulty * int(d),
		SkillXP:  cycleSkillXPPerDifficulty * int(d),
	}, nil
}

// ApplyXP adds an award to a (level, xp) pair and resolves level-ups,
// cascading when one award spans several thresholds. The remainder carries
// forward. focus doubles each threshold.
func ApplyXP(level, xp, award int, focus bool) (newLevel, newXP, levelUps int, err error) {
	if level < 1 {
		return 0, 0, 0, errInvalidLevel(level)
	}

	xp += award
	for {
		threshold, err := XPThreshold(level)
		if err != nil {
			return 0, 0, 0, err
		}
		if focus {
			threshold *= FocusThresholdFactor
		}
		if xp < threshold {
			break
		}
		xp -= threshold
		level++
		levelUps++
	}
	return level, xp, levelUps, nil
}
