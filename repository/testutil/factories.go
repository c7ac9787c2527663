package testutil

import (
	"context"
	"testing"

	"coinsbot/database"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// SeedAccount inserts an account row directly, bypassing the service
// layer, for repository tests.
func SeedAccount(t *testing.T, db *database.DB, userID int64, balance int64) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO accounts (user_id, balance) VALUES ($1, $2)`,
			userID, balance)
		return err
	})
	require.NoError(t, err)
}

// SeedClan inserts a clan with its owner membership and returns the
// clan id.
func SeedClan(t *testing.T, db *database.DB, name string, ownerID int64, bank int64) int64 {
	t.Helper()
	var clanID int64
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		if err := tx.QueryRow(context.Background(),
			`INSERT INTO clans (name, owner_id, bank) VALUES ($1, $2, $3) RETURNING id`,
			name, ownerID, bank).Scan(&clanID); err != nil {
			return err
		}
		_, err := tx.Exec(context.Background(),
			`INSERT INTO clan_members (clan_id, user_id, role) VALUES ($1, $2, 'owner')`,
			clanID, ownerID)
		return err
	})
	require.NoError(t, err)
	return clanID
}
