package repository

import (
	"context"
	"testing"

	"coinsbot/repository/testutil"
	"coinsbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing account is nil without error", func(t *testing.T) {
		account, err := repo.GetByUserID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create applies defaults", func(t *testing.T) {
		account, err := repo.Create(ctx, 100, 1000)
		require.NoError(t, err)
		require.NotNil(t, account)

		assert.Equal(t, int64(100), account.UserID)
		assert.Equal(t, int64(1000), account.Balance)
		assert.Equal(t, 1, account.Level)
		assert.Equal(t, int64(0), account.XP)
		assert.Equal(t, int64(0), account.Draws)
		assert.Equal(t, 0, account.FlipStreak)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("round trip", func(t *testing.T) {
		account, err := repo.GetByUserID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, int64(1000), account.Balance)
	})
}

func TestAccountRepository_BalanceGuards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedAccount(t, testDB.DB, 100, 500)

	t.Run("credit", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, 100, 250))

		account, err := repo.GetByUserID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(750), account.Balance)
	})

	t.Run("credit to missing account fails", func(t *testing.T) {
		err := repo.AddBalance(ctx, 999, 250)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("debit within balance", func(t *testing.T) {
		require.NoError(t, repo.DeductBalance(ctx, 100, 700))

		account, err := repo.GetByUserID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(50), account.Balance)
	})

	t.Run("overdraft is rejected and leaves the balance untouched", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 100, 51)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		account, err := repo.GetByUserID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(50), account.Balance)
	})

	t.Run("debit down to zero", func(t *testing.T) {
		require.NoError(t, repo.DeductBalance(ctx, 100, 50))

		account, err := repo.GetByUserID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(0), account.Balance)
	})
}

func TestAccountRepository_Progression(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedAccount(t, testDB.DB, 100, 1000)

	require.NoError(t, repo.UpdateProgress(ctx, 100, 3, 75))
	require.NoError(t, repo.IncrementDraws(ctx, 100))
	require.NoError(t, repo.IncrementDraws(ctx, 100))
	require.NoError(t, repo.SetFlipStreak(ctx, 100, 4))

	account, err := repo.GetByUserID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, account.Level)
	assert.Equal(t, int64(75), account.XP)
	assert.Equal(t, int64(2), account.Draws)
	assert.Equal(t, 4, account.FlipStreak)

	err = repo.UpdateProgress(ctx, 999, 2, 0)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAccountRepository_GetTop(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedAccount(t, testDB.DB, 1, 500)
	testutil.SeedAccount(t, testDB.DB, 2, 2000)
	testutil.SeedAccount(t, testDB.DB, 3, 2000)
	testutil.SeedAccount(t, testDB.DB, 4, 100)

	entries, err := repo.GetTop(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Ties break on user id so the ordering is stable.
	assert.Equal(t, int64(2), entries[0].UserID)
	assert.Equal(t, int64(3), entries[1].UserID)
	assert.Equal(t, int64(1), entries[2].UserID)
}
