package engine

type Difficulty int

const (
	DifficultyTrivial Difficulty = 1
	DifficultyEasy    Difficulty = 2
	DifficultyMedium  Difficulty = 3
	DifficultyHard    Difficulty = 4
	DifficultyEpic    Difficulty = 5
)

func (d Difficulty) IsValid() bool {
	return d >= DifficultyTrivial && d <= DifficultyEpic
}

type Energy int

func (e Energy) IsValid() bool {
	return e >= 1 && e <= 5
}

type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceCustom  Cadence = "custom"
)

func (c Cadence) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceCustom:
		return true
	default:
		return false
	}
}

// DefaultCadence is used when user input is missing/invalid.
const DefaultCadence = CadenceWeekly

// CycleState is the per-skill cycle machine state, derived from mission count
// and the clock rather than stored.
type CycleState string

const (
	// StateNotReady: fewer than ReadinessThreshold assigned missions.
	StateNotReady CycleState = "not_ready"
	// StateActive: cycle window open, target seeded.
	StateActive CycleState = "active"
	// StateAwaitingRollover: now >= cycleEnd, rollover not yet processed.
	StateAwaitingRollover CycleState = "awaiting_rollover"
)

// ReadinessThreshold is the assigned-mission count at which a skill becomes
// eligible for cycle targets.
const ReadinessThreshold = 8

// MaxSkillsPerMission bounds how many skills one mission may feed.
const MaxSkillsPerMission = 2
