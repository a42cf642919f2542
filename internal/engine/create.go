package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ngp/internal/storage"
	"ngp/internal/timeutil"
)

type CreateSkillInput struct {
	Name       string
	Cadence    Cadence
	CustomDays int
	Color      string
	Icon       string
	IsFocus    bool
}

func (s *Service) CreateSkill(ctx context.Context, in CreateSkillInput) (*storage.Skill, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, InvalidInputError{Field: "name", Reason: "must not be empty"}
	}
	cadence := in.Cadence
	if cadence == "" {
		cadence = DefaultCadence
	}
	if !cadence.IsValid() {
		return nil, InvalidInputError{Field: "cadence", Reason: fmt.Sprintf("unrecognized %q", cadence)}
	}
	customDays := in.CustomDays
	if cadence == CadenceCustom && customDays < 1 {
		return nil, InvalidInputError{Field: "cadence", Reason: "custom cadence needs an interval of at least 1 day"}
	}

	skill := &storage.Skill{
		ID:         uuid.NewString(),
		Name:       name,
		Level:      1,
		Cadence:    string(cadence),
		CustomDays: customDays,
		Color:      in.Color,
		Icon:       in.Icon,
		IsFocus:    in.IsFocus,
		CreatedAt:  s.clock.Now(),
	}
	if skill.Color == "" {
		skill.Color = "#3B82F6"
	}
	if skill.Icon == "" {
		skill.Icon = "⚡"
	}

	// The first cycle window opens immediately; the target stays nil until
	// the skill reaches readiness at a boundary.
	player, err := s.players.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}
	start, end := timeutil.CycleWindow(skill.Cadence, s.clock.Now(), player.DayStartsAt, skill.CustomDays)
	skill.CycleStart = &start
	skill.CycleEnd = &end

	if err := s.skills.Insert(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

type CreateMissionInput struct {
	Title      string
	Note       string
	SkillIDs   []string
	Difficulty Difficulty
	Energy     Energy
}

func (s *Service) CreateMission(ctx context.Context, in CreateMissionInput) (*storage.Mission, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, InvalidInputError{Field: "title", Reason: "must not be empty"}
	}
	if !in.Difficulty.IsValid() {
		return nil, errInvalidDifficulty(in.Difficulty)
	}
	if !in.Energy.IsValid() {
		return nil, InvalidInputError{Field: "energy", Reason: fmt.Sprintf("%d is outside [1,5]", in.Energy)}
	}
	if len(in.SkillIDs) < 1 || len(in.SkillIDs) > MaxSkillsPerMission {
		return nil, InvalidInputError{Field: "skills", Reason: fmt.Sprintf("a mission needs 1-%d skills", MaxSkillsPerMission)}
	}
	for _, id := range in.SkillIDs {
		skill, err := s.skills.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if skill == nil {
			return nil, NotFoundError{Entity: "skill", ID: id}
		}
	}

	now := s.clock.Now()
	mission := &storage.Mission{
		ID:         uuid.NewString(),
		Title:      title,
		SkillIDs:   in.SkillIDs,
		Difficulty: int(in.Difficulty),
		Energy:     int(in.Energy),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		mission.Note = &note
	}

	if err := s.missions.Insert(ctx, mission); err != nil {
		return nil, err
	}
	return mission, nil
}

// ArchiveMission retires a mission. History referencing it stays intact.
func (s *Service) ArchiveMission(ctx context.Context, id string) error {
	m, err := s.missions.Get(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return NotFoundError{Entity: "mission", ID: id}
	}
	m.IsArchived = true
	m.UpdatedAt = s.clock.Now()
	return s.missions.Update(ctx, m)
}

// ToggleFocus flips the Focus flag. The doubled threshold applies from the
// next XP award; banked XP is untouched.
func (s *Service) ToggleFocus(ctx context.Context, skillID string) (*storage.Skill, error) {
	skill, err := s.skills.Get(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, NotFoundError{Entity: "skill", ID: skillID}
	}
	skill.IsFocus = !skill.IsFocus
	if err := s.skills.Update(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// SetCadence changes the cycle cadence. The running window keeps its
// boundaries; the new cadence takes effect at the next rollover.
func (s *Service) SetCadence(ctx context.Context, skillID string, cadence Cadence, customDays int) (*storage.Skill, error) {
	if !cadence.IsValid() {
		return nil, InvalidInputError{Field: "cadence", Reason: fmt.Sprintf("unrecognized %q", cadence)}
	}
	if cadence == CadenceCustom && customDays < 1 {
		return nil, InvalidInputError{Field: "cadence", Reason: "custom cadence needs an interval of at least 1 day"}
	}

	skill, err := s.skills.Get(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, NotFoundError{Entity: "skill", ID: skillID}
	}
	skill.Cadence = string(cadence)
	skill.CustomDays = customDays
	if err := s.skills.Update(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// SetDayStart moves the day boundary used for alignment (0-23).
func (s *Service) SetDayStart(ctx context.Context, hour int) error {
	if hour < 0 || hour > 23 {
		return InvalidInputError{Field: "day start", Reason: fmt.Sprintf("%d is outside [0,23]", hour)}
	}
	player, err := s.players.GetOrCreateMain(ctx)
	if err != nil {
		return err
	}
	player.DayStartsAt = hour
	return s.players.Update(ctx, player)
}

// MissionCountsBySkill returns the assigned-mission count per skill id, the
// readiness input.
func (s *Service) MissionCountsBySkill(ctx context.Context) (map[string]int, error) {
	missions, err := s.missions.List(ctx, false)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, m := range missions {
		for _, id := range m.SkillIDs {
			counts[id]++
		}
	}
	return counts, nil
}
