package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"ngp/internal/storage"
)

// AddJournalEntry records a freeform journal entry, optionally linked to a
// mission and/or skill.
func (s *Service) AddJournalEntry(ctx context.Context, text string, missionID, skillID *string) (*storage.JournalEntry, error) {
	return s.addEntry(ctx, text, missionID, skillID, false)
}

// AddReflection records a reflection written against an issued token. The
// entry carries the skill's current cycle id so reflection activity can be
// attributed to cycles in analysis.
func (s *Service) AddReflection(ctx context.Context, text string, missionID, skillID *string) (*storage.JournalEntry, error) {
	return s.addEntry(ctx, text, missionID, skillID, true)
}

func (s *Service) addEntry(ctx context.Context, text string, missionID, skillID *string, reflection bool) (*storage.JournalEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, InvalidInputError{Field: "text", Reason: "must not be empty"}
	}

	entry := &storage.JournalEntry{
		ID:           uuid.NewString(),
		Text:         text,
		CreatedAt:    s.clock.Now(),
		MissionID:    missionID,
		SkillID:      skillID,
		IsReflection: reflection,
	}

	if skillID != nil {
		skill, err := s.skills.Get(ctx, *skillID)
		if err != nil {
			return nil, err
		}
		if skill == nil {
			return nil, NotFoundError{Entity: "skill", ID: *skillID}
		}
		if skill.CycleStart != nil {
			cid := CycleID(skill.ID, *skill.CycleStart)
			entry.CycleID = &cid
		}
	}

	if err := s.journal.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReflectionPrompts are shown when a reflection token is issued.
var ReflectionPrompts = []string{
	"What did you learn from this?",
	"How did this make you feel?",
	"What would you do differently next time?",
	"What surprised you about this?",
	"What's one thing you're proud of here?",
	"How does this connect to your larger goals?",
	"What challenge did you overcome?",
	"What skill did you practice?",
	"What would you tell your past self about this?",
	"What's your next step from here?",
}

// RandomPrompt picks a reflection prompt with the service RNG.
func (s *Service) RandomPrompt() string {
	return ReflectionPrompts[s.rng.Intn(len(ReflectionPrompts))]
}
