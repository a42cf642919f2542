package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func Migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS player (
			key TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT 'Player',
			class_name TEXT NOT NULL DEFAULT 'Wanderer',
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			coins INTEGER NOT NULL DEFAULT 0,
			day_starts_at INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS skills (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			color TEXT NOT NULL DEFAULT '#3B82F6',
			icon TEXT NOT NULL DEFAULT '⚡',
			is_focus INTEGER NOT NULL DEFAULT 0,
			is_archived INTEGER NOT NULL DEFAULT 0,
			cadence TEXT NOT NULL DEFAULT 'weekly',
			custom_days INTEGER NOT NULL DEFAULT 7,
			cycle_start DATETIME,
			cycle_end DATETIME,
			target_mission_id TEXT,
			hit_target_in_cycle INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS missions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			note TEXT,
			skill_ids TEXT NOT NULL DEFAULT '[]',
			difficulty INTEGER NOT NULL DEFAULT 1,
			energy INTEGER NOT NULL DEFAULT 1,
			is_archived INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS completions (
			id TEXT PRIMARY KEY,
			mission_id TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			player_xp INTEGER NOT NULL,
			cycle_player_xp INTEGER NOT NULL DEFAULT 0,
			coins INTEGER NOT NULL,
			reflection_token INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(mission_id) REFERENCES missions(id)
		);`,
		// One row per (completion, skill): base XP always, cycle XP at most
		// once per (mission, skill, cycle) across the whole table.
		`CREATE TABLE IF NOT EXISTS completion_awards (
			completion_id TEXT NOT NULL,
			skill_id TEXT NOT NULL,
			cycle_id TEXT NOT NULL,
			base_xp INTEGER NOT NULL,
			cycle_xp INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(completion_id) REFERENCES completions(id),
			FOREIGN KEY(skill_id) REFERENCES skills(id)
		);`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			edited_at DATETIME,
			skill_id TEXT,
			mission_id TEXT,
			cycle_id TEXT,
			is_reflection INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS rewards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			price_coins INTEGER NOT NULL,
			note TEXT,
			is_archived INTEGER NOT NULL DEFAULT 0,
			times_redeemed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS redemptions (
			id TEXT PRIMARY KEY,
			reward_id TEXT NOT NULL,
			coins_spent INTEGER NOT NULL,
			redeemed_at DATETIME NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(reward_id) REFERENCES rewards(id)
		);`,
		`CREATE TABLE IF NOT EXISTS capsules (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body BLOB NOT NULL,
			is_sealed INTEGER NOT NULL DEFAULT 0,
			passphrase_hint TEXT,
			unlock_kind TEXT NOT NULL,
			unlock_date DATETIME,
			unlock_mission TEXT,
			unlock_skill TEXT,
			unlock_level INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			unlocked_at DATETIME,
			journal_entry_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_mission ON completions(mission_id, completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_awards_credit ON completion_awards(skill_id, cycle_id, cycle_xp);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_created ON journal_entries(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_cycle ON journal_entries(skill_id, cycle_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
