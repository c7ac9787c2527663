package repository

import (
	"context"
	"fmt"
	"time"

	"coinsbot/database"
	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the CooldownRepository interface
type CooldownRepository struct {
	q queryable
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

// newCooldownRepositoryWithTx creates a new cooldown repository with a transaction
func newCooldownRepositoryWithTx(tx queryable) *CooldownRepository {
	return &CooldownRepository{q: tx}
}

// Get returns the next-eligible time for an action, or the zero time if
// the action has never been used
func (r *CooldownRepository) Get(ctx context.Context, userID int64, key string) (time.Time, error) {
	query := `
		SELECT next_at
		FROM cooldowns
		WHERE user_id = $1 AND key = $2
	`

	var nextAt time.Time
	err := r.q.QueryRow(ctx, query, userID, key).Scan(&nextAt)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get cooldown %s for user %d: %w", key, userID, err)
	}

	return nextAt, nil
}

// Set upserts the next-eligible time for an action
func (r *CooldownRepository) Set(ctx context.Context, userID int64, key string, nextAt time.Time) error {
	query := `
		INSERT INTO cooldowns (user_id, key, next_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO UPDATE SET next_at = EXCLUDED.next_at
	`

	if _, err := r.q.Exec(ctx, query, userID, key, nextAt); err != nil {
		return fmt.Errorf("failed to set cooldown %s for user %d: %w", key, userID, err)
	}
	return nil
}
