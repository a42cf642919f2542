package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type CapsuleRepo struct {
	db DBTX
}

func NewCapsuleRepo(db DBTX) *CapsuleRepo {
	return &CapsuleRepo{db: db}
}

const capsuleCols = `id, title, body, is_sealed, passphrase_hint, unlock_kind,
	unlock_date, unlock_mission, unlock_skill, unlock_level, created_at,
	unlocked_at, journal_entry_id`

func (r *CapsuleRepo) Insert(ctx context.Context, c *Capsule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO capsules (id, title, body, is_sealed, passphrase_hint, unlock_kind,
			unlock_date, unlock_mission, unlock_skill, unlock_level, created_at,
			unlocked_at, journal_entry_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Title, c.Body, c.IsSealed, c.PassphraseHint, c.UnlockKind,
		c.UnlockDate, c.UnlockMission, c.UnlockSkill, c.UnlockLevel, c.CreatedAt,
		c.UnlockedAt, c.JournalEntryID)
	if err != nil {
		return fmt.Errorf("capsule insert: %w", err)
	}
	return nil
}

func (r *CapsuleRepo) Get(ctx context.Context, id string) (*Capsule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+capsuleCols+` FROM capsules WHERE id = ?`, id)
	c, err := scanCapsule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("capsule get: %w", err)
	}
	return c, nil
}

func (r *CapsuleRepo) List(ctx context.Context) ([]*Capsule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+capsuleCols+` FROM capsules ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("capsule list: %w", err)
	}
	defer rows.Close()

	var out []*Capsule
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, fmt.Errorf("capsule scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListLocked returns capsules that have not yet unlocked.
func (r *CapsuleRepo) ListLocked(ctx context.Context) ([]*Capsule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+capsuleCols+` FROM capsules WHERE unlocked_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("capsule list locked: %w", err)
	}
	defer rows.Close()

	var out []*Capsule
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, fmt.Errorf("capsule scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CapsuleRepo) Update(ctx context.Context, c *Capsule) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE capsules
		SET title = ?, body = ?, is_sealed = ?, passphrase_hint = ?, unlock_kind = ?,
			unlock_date = ?, unlock_mission = ?, unlock_skill = ?, unlock_level = ?,
			unlocked_at = ?, journal_entry_id = ?
		WHERE id = ?
	`, c.Title, c.Body, c.IsSealed, c.PassphraseHint, c.UnlockKind,
		c.UnlockDate, c.UnlockMission, c.UnlockSkill, c.UnlockLevel,
		c.UnlockedAt, c.JournalEntryID, c.ID)
	if err != nil {
		return fmt.Errorf("capsule update: %w", err)
	}
	return nil
}

func scanCapsule(row interface{ Scan(...any) error }) (*Capsule, error) {
	var (
		c        Capsule
		hint     sql.NullString
		date     sql.NullTime
		mission  sql.NullString
		skill    sql.NullString
		unlocked sql.NullTime
		entry    sql.NullString
	)
	err := row.Scan(&c.ID, &c.Title, &c.Body, &c.IsSealed, &hint, &c.UnlockKind,
		&date, &mission, &skill, &c.UnlockLevel, &c.CreatedAt, &unlocked, &entry)
	if err != nil {
		return nil, err
	}
	if hint.Valid {
		v := hint.String
		c.PassphraseHint = &v
	}
	if date.Valid {
		t := date.Time
		c.UnlockDate = &t
	}
	if mission.Valid {
		v := mission.String
		c.UnlockMission = &v
	}
	if skill.Valid {
		v := skill.String
		c.UnlockSkill = &v
	}
	if unlocked.Valid {
		t := unlocked.Time
		c.UnlockedAt = &t
	}
	if entry.Valid {
		v := entry.String
		c.JournalEntryID = &v
	}
	return &c, nil
}
