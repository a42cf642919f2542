package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type MissionRepo struct {
	db DBTX
}

func NewMissionRepo(db DBTX) *MissionRepo {
	return &MissionRepo{db: db}
}

func scanMission(row interface{ Scan(...any) error }) (*Mission, error) {
	var (
		m        Mission
		note     sql.NullString
		skillIDs string
	)
	err := row.Scan(&m.ID, &m.Title, &note, &skillIDs, &m.Difficulty, &m.Energy,
		&m.IsArchived, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		v := note.String
		m.Note = &v
	}
	if err := json.Unmarshal([]byte(skillIDs), &m.SkillIDs); err != nil {
		return nil, fmt.Errorf("mission skill_ids: %w", err)
	}
	return &m, nil
}

func (r *MissionRepo) Insert(ctx context.Context, m *Mission) error {
	ids, err := json.Marshal(m.SkillIDs)
	if err != nil {
		return fmt.Errorf("mission skill_ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO missions (id, title, note, skill_ids, difficulty, energy, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.Note, string(ids), m.Difficulty, m.Energy, m.IsArchived, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("mission insert: %w", err)
	}
	return nil
}

func (r *MissionRepo) Get(ctx context.Context, id string) (*Mission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, note, skill_ids, difficulty, energy, is_archived, created_at, updated_at
		FROM missions WHERE id = ?
	`, id)
	m, err := scanMission(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("mission get: %w", err)
	}
	return m, nil
}

func (r *MissionRepo) List(ctx context.Context, includeArchived bool) ([]*Mission, error) {
	q := `SELECT id, title, note, skill_ids, difficulty, energy, is_archived, created_at, updated_at FROM missions`
	if !includeArchived {
		q += ` WHERE is_archived = 0`
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("mission list: %w", err)
	}
	defer rows.Close()

	var out []*Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("mission scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListForSkill returns non-archived missions assigned to the skill, ordered by
// creation so the target draw is deterministic for a given RNG.
func (r *MissionRepo) ListForSkill(ctx context.Context, skillID string) ([]*Mission, error) {
	all, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []*Mission
	for _, m := range all {
		for _, id := range m.SkillIDs {
			if id == skillID {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (r *MissionRepo) Update(ctx context.Context, m *Mission) error {
	ids, err := json.Marshal(m.SkillIDs)
	if err != nil {
		return fmt.Errorf("mission skill_ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE missions
		SET title = ?, note = ?, skill_ids = ?, difficulty = ?, energy = ?, is_archived = ?, updated_at = ?
		WHERE id = ?
	`, m.Title, m.Note, string(ids), m.Difficulty, m.Energy, m.IsArchived, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("mission update: %w", err)
	}
	return nil
}
