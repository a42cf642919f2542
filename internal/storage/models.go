package storage

import "time"

type Player struct {
	Key         string
	DisplayName string
	ClassName   string
	Level       int
	XP          int
	Coins       int
	DayStartsAt int
	CreatedAt   time.Time
}

type Skill struct {
	ID         string
	Name       string
	Level      int
	XP         int
	Color      string
	Icon       string
	IsFocus    bool
	IsArchived bool
	Cadence    string // daily, weekly, monthly, custom
	CustomDays int    // interval in days, custom cadence only

	CycleStart       *time.Time
	CycleEnd         *time.Time
	TargetMissionID  *string
	HitTargetInCycle bool

	CreatedAt time.Time
}

type Mission struct {
	ID         string
	Title      string
	Note       *string
	SkillIDs   []string // 1-2 skills, stored as JSON
	Difficulty int      // 1-5
	Energy     int      // 1-5
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Completion is one append-only record per CompleteMission call.
type Completion struct {
	ID              string
	MissionID       string
	CompletedAt     time.Time
	PlayerXP        int // base player XP awarded
	CyclePlayerXP   int // cycle bonus player XP (0 when no bonus)
	Coins           int
	ReflectionToken bool
	Awards          []CompletionAward
}

// CompletionAward is the per-skill breakdown of a completion. CycleXP > 0
// marks the one-credit-per-cycle slot for (mission, skill, cycle).
type CompletionAward struct {
	CompletionID string
	SkillID      string
	CycleID      string
	BaseXP       int
	CycleXP      int
}

type JournalEntry struct {
	ID           string
	Text         string
	CreatedAt    time.Time
	EditedAt     *time.Time
	SkillID      *string
	MissionID    *string
	CycleID      *string
	IsReflection bool
}

type Reward struct {
	ID            string
	Title         string
	PriceCoins    int
	Note          *string
	IsArchived    bool
	TimesRedeemed int
	CreatedAt     time.Time
}

type Redemption struct {
	ID         string
	RewardID   string
	CoinsSpent int
	RedeemedAt time.Time
	Note       string
}

type Capsule struct {
	ID             string
	Title          string
	Body           []byte
	IsSealed       bool
	PassphraseHint *string
	UnlockKind     string // date, mission, skill_level, player_level
	UnlockDate     *time.Time
	UnlockMission  *string
	UnlockSkill    *string
	UnlockLevel    int
	CreatedAt      time.Time
	UnlockedAt     *time.Time
	JournalEntryID *string
}
