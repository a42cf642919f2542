package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const MainPlayerKey = "main"

type PlayerRepo struct {
	db DBTX
}

func NewPlayerRepo(db DBTX) *PlayerRepo {
	return &PlayerRepo{db: db}
}

func (r *PlayerRepo) Get(ctx context.Context, key string) (*Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, display_name, class_name, level, xp, coins, day_starts_at, created_at
		FROM player WHERE key = ?
	`, key)

	var p Player
	if err := row.Scan(&p.Key, &p.DisplayName, &p.ClassName, &p.Level, &p.XP, &p.Coins, &p.DayStartsAt, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("player get: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepo) GetOrCreateMain(ctx context.Context) (*Player, error) {
	p, err := r.Get(ctx, MainPlayerKey)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO player (key) VALUES (?)`, MainPlayerKey); err != nil {
		return nil, fmt.Errorf("player insert: %w", err)
	}
	return r.Get(ctx, MainPlayerKey)
}

func (r *PlayerRepo) Update(ctx context.Context, p *Player) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE player
		SET display_name = ?, class_name = ?, level = ?, xp = ?, coins = ?, day_starts_at = ?
		WHERE key = ?
	`, p.DisplayName, p.ClassName, p.Level, p.XP, p.Coins, p.DayStartsAt, p.Key)
	if err != nil {
		return fmt.Errorf("player update: %w", err)
	}
	return nil
}
