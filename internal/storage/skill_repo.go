package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type SkillRepo struct {
	db DBTX
}

func NewSkillRepo(db DBTX) *SkillRepo {
	return &SkillRepo{db: db}
}

const skillCols = `id, name, level, xp, color, icon, is_focus, is_archived,
	cadence, custom_days, cycle_start, cycle_end, target_mission_id,
	hit_target_in_cycle, created_at`

func scanSkill(row interface{ Scan(...any) error }) (*Skill, error) {
	var (
		s      Skill
		start  sql.NullTime
		end    sql.NullTime
		target sql.NullString
	)
	err := row.Scan(&s.ID, &s.Name, &s.Level, &s.XP, &s.Color, &s.Icon, &s.IsFocus, &s.IsArchived,
		&s.Cadence, &s.CustomDays, &start, &end, &target, &s.HitTargetInCycle, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		t := start.Time
		s.CycleStart = &t
	}
	if end.Valid {
		t := end.Time
		s.CycleEnd = &t
	}
	if target.Valid {
		v := target.String
		s.TargetMissionID = &v
	}
	return &s, nil
}

func (r *SkillRepo) Insert(ctx context.Context, s *Skill) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO skills (id, name, level, xp, color, icon, is_focus, is_archived,
			cadence, custom_days, cycle_start, cycle_end, target_mission_id,
			hit_target_in_cycle, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Level, s.XP, s.Color, s.Icon, s.IsFocus, s.IsArchived,
		s.Cadence, s.CustomDays, s.CycleStart, s.CycleEnd, s.TargetMissionID,
		s.HitTargetInCycle, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("skill insert: %w", err)
	}
	return nil
}

func (r *SkillRepo) Get(ctx context.Context, id string) (*Skill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+skillCols+` FROM skills WHERE id = ?`, id)
	s, err := scanSkill(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("skill get: %w", err)
	}
	return s, nil
}

// GetByName matches on exact name, for CLI lookups.
func (r *SkillRepo) GetByName(ctx context.Context, name string) (*Skill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+skillCols+` FROM skills WHERE name = ? AND is_archived = 0`, name)
	s, err := scanSkill(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("skill get by name: %w", err)
	}
	return s, nil
}

func (r *SkillRepo) List(ctx context.Context, includeArchived bool) ([]*Skill, error) {
	q := `SELECT ` + skillCols + ` FROM skills`
	if !includeArchived {
		q += ` WHERE is_archived = 0`
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("skill list: %w", err)
	}
	defer rows.Close()

	var out []*Skill
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("skill scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SkillRepo) Update(ctx context.Context, s *Skill) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE skills
		SET name = ?, level = ?, xp = ?, color = ?, icon = ?, is_focus = ?, is_archived = ?,
			cadence = ?, custom_days = ?, cycle_start = ?, cycle_end = ?,
			target_mission_id = ?, hit_target_in_cycle = ?
		WHERE id = ?
	`, s.Name, s.Level, s.XP, s.Color, s.Icon, s.IsFocus, s.IsArchived,
		s.Cadence, s.CustomDays, s.CycleStart, s.CycleEnd,
		s.TargetMissionID, s.HitTargetInCycle, s.ID)
	if err != nil {
		return fmt.Errorf("skill update: %w", err)
	}
	return nil
}
