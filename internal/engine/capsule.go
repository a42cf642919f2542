package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngp/internal/capsule"
	"ngp/internal/storage"
)

// Event kinds observed by the capsule trigger.
type EventKind string

const (
	EventDateTick         EventKind = "date_tick"
	EventMissionCompleted EventKind = "mission_completed"
	EventSkillLevelUp     EventKind = "skill_level_up"
	EventPlayerLevelUp    EventKind = "player_level_up"
)

// Event is the payload the trigger evaluates unlock conditions against.
type Event struct {
	Kind      EventKind
	At        time.Time
	MissionID string
	SkillID   string
	Level     int
}

// Capsule unlock kinds, matching storage.Capsule.UnlockKind.
const (
	UnlockOnDate        = "date"
	UnlockOnMission     = "mission"
	UnlockOnSkillLevel  = "skill_level"
	UnlockOnPlayerLevel = "player_level"
)

// CreateCapsuleInput describes a new capsule. When Passphrase is non-empty
// the body is sealed before it is stored.
type CreateCapsuleInput struct {
	Title          string
	Body           string
	Passphrase     string
	PassphraseHint string

	UnlockKind    string
	UnlockDate    *time.Time
	UnlockMission *string
	UnlockSkill   *string
	UnlockLevel   int
}

func (s *Service) CreateCapsule(ctx context.Context, in CreateCapsuleInput) (*storage.Capsule, error) {
	if in.Title == "" {
		return nil, InvalidInputError{Field: "title", Reason: "must not be empty"}
	}
	switch in.UnlockKind {
	case UnlockOnDate:
		if in.UnlockDate == nil {
			return nil, InvalidInputError{Field: "unlock", Reason: "date unlock needs a date"}
		}
	case UnlockOnMission:
		if in.UnlockMission == nil {
			return nil, InvalidInputError{Field: "unlock", Reason: "mission unlock needs a mission id"}
		}
	case UnlockOnSkillLevel:
		if in.UnlockSkill == nil || in.UnlockLevel < 1 {
			return nil, InvalidInputError{Field: "unlock", Reason: "skill-level unlock needs a skill id and level >= 1"}
		}
	case UnlockOnPlayerLevel:
		if in.UnlockLevel < 1 {
			return nil, InvalidInputError{Field: "unlock", Reason: "player-level unlock needs level >= 1"}
		}
	default:
		return nil, InvalidInputError{Field: "unlock", Reason: fmt.Sprintf("unknown kind %q", in.UnlockKind)}
	}

	body := []byte(in.Body)
	sealed := false
	if in.Passphrase != "" {
		var err error
		body, err = capsule.Seal([]byte(in.Body), in.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("seal capsule: %w", err)
		}
		sealed = true
	}

	c := &storage.Capsule{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Body:          body,
		IsSealed:      sealed,
		UnlockKind:    in.UnlockKind,
		UnlockDate:    in.UnlockDate,
		UnlockMission: in.UnlockMission,
		UnlockSkill:   in.UnlockSkill,
		UnlockLevel:   in.UnlockLevel,
		CreatedAt:     s.clock.Now(),
	}
	if in.PassphraseHint != "" {
		hint := in.PassphraseHint
		c.PassphraseHint = &hint
	}

	if err := s.capsules.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenCapsule returns the capsule body, unsealing with the passphrase when
// needed. Locked capsules cannot be opened.
func (s *Service) OpenCapsule(ctx context.Context, id, passphrase string) (string, error) {
	c, err := s.capsules.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", NotFoundError{Entity: "capsule", ID: id}
	}
	if c.UnlockedAt == nil {
		return "", StateViolationError{Op: "open capsule", Reason: "capsule is still locked"}
	}
	if !c.IsSealed {
		return string(c.Body), nil
	}
	plain, err := capsule.Open(c.Body, passphrase)
	if err != nil {
		return "", StateViolationError{Op: "open capsule", Reason: "wrong passphrase"}
	}
	return string(plain), nil
}

// ArchiveCapsuleToJournal copies an unlocked, unsealed capsule into the
// journal and links the entry back to the capsule.
func (s *Service) ArchiveCapsuleToJournal(ctx context.Context, id, passphrase string) (*storage.JournalEntry, error) {
	body, err := s.OpenCapsule(ctx, id, passphrase)
	if err != nil {
		return nil, err
	}
	c, err := s.capsules.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &storage.JournalEntry{
		ID:        uuid.NewString(),
		Text:      fmt.Sprintf("[Time Capsule: %s]\n\n%s\n\n(Written on %s)", c.Title, body, c.CreatedAt.Format("2006-01-02")),
		CreatedAt: s.clock.Now(),
	}
	if err := s.journal.Insert(ctx, entry); err != nil {
		return nil, err
	}

	c.JournalEntryID = &entry.ID
	if err := s.capsules.Update(ctx, c); err != nil {
		return nil, err
	}
	return entry, nil
}

// checkCapsules evaluates all locked capsules against an event. Unlocking is
// idempotent: already-unlocked capsules are never revisited.
func (s *Service) checkCapsules(ctx context.Context, r txRepos, ev Event) ([]*storage.Capsule, error) {
	locked, err := r.capsules.ListLocked(ctx)
	if err != nil {
		return nil, err
	}

	var unlocked []*storage.Capsule
	for _, c := range locked {
		ok, err := s.capsuleSatisfied(ctx, r, c, ev)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		at := ev.At
		c.UnlockedAt = &at
		if err := r.capsules.Update(ctx, c); err != nil {
			return nil, err
		}
		s.log.Info("capsule unlocked", zap.String("title", c.Title), zap.String("kind", c.UnlockKind))
		unlocked = append(unlocked, c)
	}
	return unlocked, nil
}

func (s *Service) capsuleSatisfied(ctx context.Context, r txRepos, c *storage.Capsule, ev Event) (bool, error) {
	switch c.UnlockKind {
	case UnlockOnDate:
		return c.UnlockDate != nil && !ev.At.Before(*c.UnlockDate), nil
	case UnlockOnMission:
		return ev.Kind == EventMissionCompleted && c.UnlockMission != nil && *c.UnlockMission == ev.MissionID, nil
	case UnlockOnSkillLevel:
		if c.UnlockSkill == nil {
			return false, nil
		}
		skill, err := r.skills.Get(ctx, *c.UnlockSkill)
		if err != nil {
			return false, err
		}
		return skill != nil && skill.Level >= c.UnlockLevel, nil
	case UnlockOnPlayerLevel:
		player, err := r.players.GetOrCreateMain(ctx)
		if err != nil {
			return false, err
		}
		return player.Level >= c.UnlockLevel, nil
	default:
		return false, nil
	}
}
