package storage

import (
	"context"
	"fmt"
	"time"
)

type CompletionRepo struct {
	db DBTX
}

func NewCompletionRepo(db DBTX) *CompletionRepo {
	return &CompletionRepo{db: db}
}

func (r *CompletionRepo) Insert(ctx context.Context, c *Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (id, mission_id, completed_at, player_xp, cycle_player_xp, coins, reflection_token)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.MissionID, c.CompletedAt, c.PlayerXP, c.CyclePlayerXP, c.Coins, c.ReflectionToken)
	if err != nil {
		return fmt.Errorf("completion insert: %w", err)
	}

	for _, a := range c.Awards {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO completion_awards (completion_id, skill_id, cycle_id, base_xp, cycle_xp)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, a.SkillID, a.CycleID, a.BaseXP, a.CycleXP)
		if err != nil {
			return fmt.Errorf("completion award insert: %w", err)
		}
	}
	return nil
}

// HasCycleCredit reports whether any prior completion already carries a
// nonzero cycle award for the (mission, skill, cycle) triple. This is the
// one-credit-per-cycle check and is derived from history, never from a
// counter.
func (r *CompletionRepo) HasCycleCredit(ctx context.Context, missionID, skillID, cycleID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM completion_awards a
		JOIN completions c ON c.id = a.completion_id
		WHERE c.mission_id = ? AND a.skill_id = ? AND a.cycle_id = ? AND a.cycle_xp > 0
	`, missionID, skillID, cycleID)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("cycle credit check: %w", err)
	}
	return n > 0, nil
}

// CycleHadCredit reports whether a cycle saw its target hit for the skill,
// regardless of which mission did it.
func (r *CompletionRepo) CycleHadCredit(ctx context.Context, skillID, cycleID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM completion_awards
		WHERE skill_id = ? AND cycle_id = ? AND cycle_xp > 0
	`, skillID, cycleID)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("cycle hit check: %w", err)
	}
	return n > 0, nil
}

// CountTokensSince counts completions that issued a reflection token at or
// after the given instant. The per-day cap recomputes from this, so an
// import can never desync it.
func (r *CompletionRepo) CountTokensSince(ctx context.Context, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM completions
		WHERE reflection_token = 1 AND completed_at >= ?
	`, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("token count since: %w", err)
	}
	return n, nil
}

// CountTokensForCycle counts reflection tokens issued against one skill-cycle.
func (r *CompletionRepo) CountTokensForCycle(ctx context.Context, skillID, cycleID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT c.id)
		FROM completions c
		JOIN completion_awards a ON a.completion_id = c.id
		WHERE c.reflection_token = 1 AND a.skill_id = ? AND a.cycle_id = ?
	`, skillID, cycleID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("token count for cycle: %w", err)
	}
	return n, nil
}

func (r *CompletionRepo) List(ctx context.Context) ([]*Completion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mission_id, completed_at, player_xp, cycle_player_xp, coins, reflection_token
		FROM completions
		ORDER BY completed_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []*Completion
	byID := map[string]*Completion{}
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.ID, &c.MissionID, &c.CompletedAt, &c.PlayerXP, &c.CyclePlayerXP, &c.Coins, &c.ReflectionToken); err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		out = append(out, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	awardRows, err := r.db.QueryContext(ctx, `
		SELECT completion_id, skill_id, cycle_id, base_xp, cycle_xp
		FROM completion_awards
		ORDER BY completion_id, skill_id
	`)
	if err != nil {
		return nil, fmt.Errorf("award list: %w", err)
	}
	defer awardRows.Close()

	for awardRows.Next() {
		var a CompletionAward
		if err := awardRows.Scan(&a.CompletionID, &a.SkillID, &a.CycleID, &a.BaseXP, &a.CycleXP); err != nil {
			return nil, fmt.Errorf("award scan: %w", err)
		}
		if c, ok := byID[a.CompletionID]; ok {
			c.Awards = append(c.Awards, a)
		}
	}
	return out, awardRows.Err()
}
