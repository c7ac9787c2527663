package repository

import (
	"context"
	"fmt"

	"coinsbot/database"
	"coinsbot/models"
	"coinsbot/service"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByUserID retrieves an account, or nil if it does not exist
func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT user_id, balance, xp, level, draws, flip_streak, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.XP,
		&account.Level,
		&account.Draws,
		&account.FlipStreak,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}

	return &account, nil
}

// Create creates a new account with the starting balance
func (r *AccountRepository) Create(ctx context.Context, userID int64, startingBalance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		RETURNING user_id, balance, xp, level, draws, flip_streak, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, userID, startingBalance).Scan(
		&account.UserID,
		&account.Balance,
		&account.XP,
		&account.Level,
		&account.Draws,
		&account.FlipStreak,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %d: %w", userID, err)
	}

	return &account, nil
}

// AddBalance credits an account atomically; amount must be positive
func (r *AccountRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
	`

	tag, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit account %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", userID, service.ErrNotFound)
	}

	return nil
}

// DeductBalance debits an account atomically. The WHERE guard makes the
// balance check and the debit one statement, so concurrent debits can
// never drive the balance negative.
func (r *AccountRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
	`

	tag, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to debit account %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d cannot cover %d: %w", userID, amount, service.ErrInsufficientFunds)
	}

	return nil
}

// UpdateProgress stores a new level and residual experience
func (r *AccountRepository) UpdateProgress(ctx context.Context, userID int64, level int, xp int64) error {
	query := `
		UPDATE accounts
		SET level = $1, xp = $2, updated_at = NOW()
		WHERE user_id = $3
	`

	tag, err := r.q.Exec(ctx, query, level, xp, userID)
	if err != nil {
		return fmt.Errorf("failed to update progression for account %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", userID, service.ErrNotFound)
	}

	return nil
}

// IncrementDraws bumps the gambling action counter
func (r *AccountRepository) IncrementDraws(ctx context.Context, userID int64) error {
	query := `
		UPDATE accounts
		SET draws = draws + 1, updated_at = NOW()
		WHERE user_id = $1
	`

	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to increment draws for account %d: %w", userID, err)
	}
	return nil
}

// SetFlipStreak stores the coin-flip win streak
func (r *AccountRepository) SetFlipStreak(ctx context.Context, userID int64, streak int) error {
	query := `
		UPDATE accounts
		SET flip_streak = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	if _, err := r.q.Exec(ctx, query, streak, userID); err != nil {
		return fmt.Errorf("failed to set flip streak for account %d: %w", userID, err)
	}
	return nil
}

// GetTop returns the richest accounts, highest balance first
func (r *AccountRepository) GetTop(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT user_id, balance
		FROM accounts
		ORDER BY balance DESC, user_id
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	return entries, nil
}
