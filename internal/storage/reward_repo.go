package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type RewardRepo struct {
	db DBTX
}

func NewRewardRepo(db DBTX) *RewardRepo {
	return &RewardRepo{db: db}
}

func (r *RewardRepo) Insert(ctx context.Context, w *Reward) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rewards (id, title, price_coins, note, is_archived, times_redeemed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.Title, w.PriceCoins, w.Note, w.IsArchived, w.TimesRedeemed, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("reward insert: %w", err)
	}
	return nil
}

func (r *RewardRepo) Get(ctx context.Context, id string) (*Reward, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, price_coins, note, is_archived, times_redeemed, created_at
		FROM rewards WHERE id = ?
	`, id)
	w, err := scanReward(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("reward get: %w", err)
	}
	return w, nil
}

func (r *RewardRepo) List(ctx context.Context, includeArchived bool) ([]*Reward, error) {
	q := `SELECT id, title, price_coins, note, is_archived, times_redeemed, created_at FROM rewards`
	if !includeArchived {
		q += ` WHERE is_archived = 0`
	}
	q += ` ORDER BY price_coins, created_at`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("reward list: %w", err)
	}
	defer rows.Close()

	var out []*Reward
	for rows.Next() {
		w, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("reward scan: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *RewardRepo) Update(ctx context.Context, w *Reward) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE rewards
		SET title = ?, price_coins = ?, note = ?, is_archived = ?, times_redeemed = ?
		WHERE id = ?
	`, w.Title, w.PriceCoins, w.Note, w.IsArchived, w.TimesRedeemed, w.ID)
	if err != nil {
		return fmt.Errorf("reward update: %w", err)
	}
	return nil
}

func (r *RewardRepo) InsertRedemption(ctx context.Context, d *Redemption) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO redemptions (id, reward_id, coins_spent, redeemed_at, note)
		VALUES (?, ?, ?, ?, ?)
	`, d.ID, d.RewardID, d.CoinsSpent, d.RedeemedAt, d.Note)
	if err != nil {
		return fmt.Errorf("redemption insert: %w", err)
	}
	return nil
}

func (r *RewardRepo) ListRedemptions(ctx context.Context, limit int) ([]*Redemption, error) {
	q := `
		SELECT id, reward_id, coins_spent, redeemed_at, note
		FROM redemptions
		ORDER BY redeemed_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("redemption list: %w", err)
	}
	defer rows.Close()

	var out []*Redemption
	for rows.Next() {
		var d Redemption
		if err := rows.Scan(&d.ID, &d.RewardID, &d.CoinsSpent, &d.RedeemedAt, &d.Note); err != nil {
			return nil, fmt.Errorf("redemption scan: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func scanReward(row interface{ Scan(...any) error }) (*Reward, error) {
	var (
		w    Reward
		note sql.NullString
	)
	err := row.Scan(&w.ID, &w.Title, &w.PriceCoins, &note, &w.IsArchived, &w.TimesRedeemed, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		v := note.String
		w.Note = &v
	}
	return &w, nil
}
