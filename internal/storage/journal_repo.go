package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type JournalRepo struct {
	db DBTX
}

func NewJournalRepo(db DBTX) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Insert(ctx context.Context, e *JournalEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, text, created_at, edited_at, skill_id, mission_id, cycle_id, is_reflection)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Text, e.CreatedAt, e.EditedAt, e.SkillID, e.MissionID, e.CycleID, e.IsReflection)
	if err != nil {
		return fmt.Errorf("journal insert: %w", err)
	}
	return nil
}

func (r *JournalRepo) List(ctx context.Context, limit int) ([]*JournalEntry, error) {
	q := `
		SELECT id, text, created_at, edited_at, skill_id, mission_id, cycle_id, is_reflection
		FROM journal_entries
		ORDER BY created_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("journal list: %w", err)
	}
	defer rows.Close()

	var out []*JournalEntry
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanJournal(row interface{ Scan(...any) error }) (*JournalEntry, error) {
	var (
		e       JournalEntry
		edited  sql.NullTime
		skill   sql.NullString
		mission sql.NullString
		cycle   sql.NullString
	)
	err := row.Scan(&e.ID, &e.Text, &e.CreatedAt, &edited, &skill, &mission, &cycle, &e.IsReflection)
	if err != nil {
		return nil, err
	}
	if edited.Valid {
		t := edited.Time
		e.EditedAt = &t
	}
	if skill.Valid {
		v := skill.String
		e.SkillID = &v
	}
	if mission.Valid {
		v := mission.String
		e.MissionID = &v
	}
	if cycle.Valid {
		v := cycle.String
		e.CycleID = &v
	}
	return &e, nil
}
