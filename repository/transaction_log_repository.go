package repository

import (
	"context"
	"fmt"

	"coinsbot/database"
	"coinsbot/models"
)

// TransactionLogRepository implements the TransactionLogRepository interface
type TransactionLogRepository struct {
	q queryable
}

// NewTransactionLogRepository creates a new transaction log repository
func NewTransactionLogRepository(db *database.DB) *TransactionLogRepository {
	return &TransactionLogRepository{q: db.Pool}
}

// newTransactionLogRepositoryWithTx creates a new transaction log repository with a transaction
func newTransactionLogRepositoryWithTx(tx queryable) *TransactionLogRepository {
	return &TransactionLogRepository{q: tx}
}

// Record appends a log entry
func (r *TransactionLogRepository) Record(ctx context.Context, entry *models.TransactionLogEntry) error {
	query := `
		INSERT INTO transaction_log (user_id, action, delta)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Action,
		entry.Delta,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record log entry for user %d: %w", entry.UserID, err)
	}

	return nil
}

// GetRecentByUser returns the newest log entries for a user, newest
// first.
func (r *TransactionLogRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]*models.TransactionLogEntry, error) {
	query := `
		SELECT id, user_id, action, delta, created_at
		FROM transaction_log
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.TransactionLogEntry
	for rows.Next() {
		var e models.TransactionLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Delta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log entries: %w", err)
	}

	return entries, nil
}
