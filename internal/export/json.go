package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ngp/internal/storage"
)

// Version is bumped when the wire format changes shape.
const Version = 1

// Snapshot is the complete on-disk state in one JSON document. Cycle state
// rides along verbatim (window, target, hit flag) so a re-import reproduces
// the exact progression position, and award history is carried in full so
// per-cycle credit and token caps recompute identically after the import.
type Snapshot struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`

	Player      Player       `json:"player"`
	Skills      []Skill      `json:"skills"`
	Missions    []Mission    `json:"missions"`
	Completions []Completion `json:"completions"`
	Journal     []Journal    `json:"journal"`
	Rewards     []Reward     `json:"rewards"`
	Redemptions []Redemption `json:"redemptions"`
	Capsules    []Capsule    `json:"capsules"`
}

type Player struct {
	DisplayName string    `json:"display_name"`
	ClassName   string    `json:"class_name"`
	Level       int       `json:"level"`
	XP          int       `json:"xp"`
	Coins       int       `json:"coins"`
	DayStartsAt int       `json:"day_starts_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Skill struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Level            int        `json:"level"`
	XP               int        `json:"xp"`
	Color            string     `json:"color"`
	Icon             string     `json:"icon"`
	IsFocus          bool       `json:"is_focus"`
	IsArchived       bool       `json:"is_archived"`
	Cadence          string     `json:"cadence"`
	CustomDays       int        `json:"custom_days,omitempty"`
	CycleStart       *time.Time `json:"cycle_start,omitempty"`
	CycleEnd         *time.Time `json:"cycle_end,omitempty"`
	TargetMissionID  *string    `json:"target_mission_id,omitempty"`
	HitTargetInCycle bool       `json:"hit_target_in_cycle"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Mission struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Note       *string   `json:"note,omitempty"`
	SkillIDs   []string  `json:"skill_ids"`
	Difficulty int       `json:"difficulty"`
	Energy     int       `json:"energy"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Completion struct {
	ID              string    `json:"id"`
	MissionID       string    `json:"mission_id"`
	CompletedAt     time.Time `json:"completed_at"`
	PlayerXP        int       `json:"player_xp"`
	CyclePlayerXP   int       `json:"cycle_player_xp"`
	Coins           int       `json:"coins"`
	ReflectionToken bool      `json:"reflection_token"`
	Awards          []Award   `json:"awards"`
}

type Award struct {
	SkillID string `json:"skill_id"`
	CycleID string `json:"cycle_id"`
	BaseXP  int    `json:"base_xp"`
	CycleXP int    `json:"cycle_xp"`
}

type Journal struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"created_at"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	SkillID      *string    `json:"skill_id,omitempty"`
	MissionID    *string    `json:"mission_id,omitempty"`
	CycleID      *string    `json:"cycle_id,omitempty"`
	IsReflection bool       `json:"is_reflection"`
}

type Reward struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	PriceCoins    int       `json:"price_coins"`
	Note          *string   `json:"note,omitempty"`
	IsArchived    bool      `json:"is_archived"`
	TimesRedeemed int       `json:"times_redeemed"`
	CreatedAt     time.Time `json:"created_at"`
}

type Redemption struct {
	ID         string    `json:"id"`
	RewardID   string    `json:"reward_id"`
	CoinsSpent int       `json:"coins_spent"`
	RedeemedAt time.Time `json:"redeemed_at"`
	Note       string    `json:"note,omitempty"`
}

type Capsule struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Body           []byte     `json:"body"`
	IsSealed       bool       `json:"is_sealed"`
	PassphraseHint *string    `json:"passphrase_hint,omitempty"`
	UnlockKind     string     `json:"unlock_kind"`
	UnlockDate     *time.Time `json:"unlock_date,omitempty"`
	UnlockMission  *string    `json:"unlock_mission,omitempty"`
	UnlockSkill    *string    `json:"unlock_skill,omitempty"`
	UnlockLevel    int        `json:"unlock_level,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UnlockedAt     *time.Time `json:"unlocked_at,omitempty"`
	JournalEntryID *string    `json:"journal_entry_id,omitempty"`
}

// Collect reads every table into a Snapshot, archived rows included.
func Collect(ctx context.Context, db storage.DBTX, now time.Time) (*Snapshot, error) {
	players := storage.NewPlayerRepo(db)
	player, err := players.GetOrCreateMain(ctx)
	if err != nil {
		return nil, fmt.Errorf("export player: %w", err)
	}
	skills, err := storage.NewSkillRepo(db).List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("export skills: %w", err)
	}
	missions, err := storage.NewMissionRepo(db).List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("export missions: %w", err)
	}
	completions, err := storage.NewCompletionRepo(db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export completions: %w", err)
	}
	journal, err := storage.NewJournalRepo(db).List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("export journal: %w", err)
	}
	rewardRepo := storage.NewRewardRepo(db)
	rewards, err := rewardRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("export rewards: %w", err)
	}
	redemptions, err := rewardRepo.ListRedemptions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("export redemptions: %w", err)
	}
	capsules, err := storage.NewCapsuleRepo(db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export capsules: %w", err)
	}

	snap := &Snapshot{
		Version:    Version,
		ExportedAt: now.UTC(),
		Player: Player{
			DisplayName: player.DisplayName,
			ClassName:   player.ClassName,
			Level:       player.Level,
			XP:          player.XP,
			Coins:       player.Coins,
			DayStartsAt: player.DayStartsAt,
			CreatedAt:   player.CreatedAt.UTC(),
		},
	}
	for _, s := range skills {
		snap.Skills = append(snap.Skills, Skill{
			ID: s.ID, Name: s.Name, Level: s.Level, XP: s.XP,
			Color: s.Color, Icon: s.Icon,
			IsFocus: s.IsFocus, IsArchived: s.IsArchived,
			Cadence: s.Cadence, CustomDays: s.CustomDays,
			CycleStart: utcPtr(s.CycleStart), CycleEnd: utcPtr(s.CycleEnd),
			TargetMissionID:  s.TargetMissionID,
			HitTargetInCycle: s.HitTargetInCycle,
			CreatedAt:        s.CreatedAt.UTC(),
		})
	}
	for _, m := range missions {
		snap.Missions = append(snap.Missions, Mission{
			ID: m.ID, Title: m.Title, Note: m.Note, SkillIDs: m.SkillIDs,
			Difficulty: m.Difficulty, Energy: m.Energy, IsArchived: m.IsArchived,
			CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC(),
		})
	}
	for _, c := range completions {
		wc := Completion{
			ID: c.ID, MissionID: c.MissionID, CompletedAt: c.CompletedAt.UTC(),
			PlayerXP: c.PlayerXP, CyclePlayerXP: c.CyclePlayerXP,
			Coins: c.Coins, ReflectionToken: c.ReflectionToken,
		}
		for _, a := range c.Awards {
			wc.Awards = append(wc.Awards, Award{
				SkillID: a.SkillID, CycleID: a.CycleID,
				BaseXP: a.BaseXP, CycleXP: a.CycleXP,
			})
		}
		snap.Completions = append(snap.Completions, wc)
	}
	for _, e := range journal {
		snap.Journal = append(snap.Journal, Journal{
			ID: e.ID, Text: e.Text,
			CreatedAt: e.CreatedAt.UTC(), EditedAt: utcPtr(e.EditedAt),
			SkillID: e.SkillID, MissionID: e.MissionID, CycleID: e.CycleID,
			IsReflection: e.IsReflection,
		})
	}
	for _, w := range rewards {
		snap.Rewards = append(snap.Rewards, Reward{
			ID: w.ID, Title: w.Title, PriceCoins: w.PriceCoins, Note: w.Note,
			IsArchived: w.IsArchived, TimesRedeemed: w.TimesRedeemed,
			CreatedAt: w.CreatedAt.UTC(),
		})
	}
	for _, d := range redemptions {
		snap.Redemptions = append(snap.Redemptions, Redemption{
			ID: d.ID, RewardID: d.RewardID, CoinsSpent: d.CoinsSpent,
			RedeemedAt: d.RedeemedAt.UTC(), Note: d.Note,
		})
	}
	for _, c := range capsules {
		snap.Capsules = append(snap.Capsules, Capsule{
			ID: c.ID, Title: c.Title, Body: c.Body, IsSealed: c.IsSealed,
			PassphraseHint: c.PassphraseHint, UnlockKind: c.UnlockKind,
			UnlockDate: utcPtr(c.UnlockDate), UnlockMission: c.UnlockMission,
			UnlockSkill: c.UnlockSkill, UnlockLevel: c.UnlockLevel,
			CreatedAt: c.CreatedAt.UTC(), UnlockedAt: utcPtr(c.UnlockedAt),
			JournalEntryID: c.JournalEntryID,
		})
	}
	return snap, nil
}

// WriteFile collects the snapshot and writes it as indented JSON.
func WriteFile(ctx context.Context, db storage.DBTX, now time.Time, path string) error {
	snap, err := Collect(ctx, db, now)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadFile parses a snapshot written by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("snapshot version %d not supported", snap.Version)
	}
	return &snap, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
