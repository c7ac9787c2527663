package repository

import (
	"context"
	"testing"
	"time"

	"coinsbot/models"
	"coinsbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownRepository_SetAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCooldownRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedAccount(t, testDB.DB, 100, 1000)

	t.Run("unused action reads as the zero time", func(t *testing.T) {
		nextAt, err := repo.Get(ctx, 100, models.CooldownKeyDaily)
		require.NoError(t, err)
		assert.True(t, nextAt.IsZero())
	})

	t.Run("set then get", func(t *testing.T) {
		want := time.Now().Add(6 * time.Hour).UTC().Truncate(time.Millisecond)
		require.NoError(t, repo.Set(ctx, 100, models.CooldownKeyDaily, want))

		nextAt, err := repo.Get(ctx, 100, models.CooldownKeyDaily)
		require.NoError(t, err)
		assert.WithinDuration(t, want, nextAt, time.Second)
	})

	t.Run("set overwrites the previous timer", func(t *testing.T) {
		want := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Millisecond)
		require.NoError(t, repo.Set(ctx, 100, models.CooldownKeyDaily, want))

		nextAt, err := repo.Get(ctx, 100, models.CooldownKeyDaily)
		require.NoError(t, err)
		assert.WithinDuration(t, want, nextAt, time.Second)
	})

	t.Run("keys are independent", func(t *testing.T) {
		want := time.Now().Add(15 * time.Minute).UTC()
		require.NoError(t, repo.Set(ctx, 100, models.CooldownKeyCollect, want))

		daily, err := repo.Get(ctx, 100, models.CooldownKeyDaily)
		require.NoError(t, err)
		collect, err := repo.Get(ctx, 100, models.CooldownKeyCollect)
		require.NoError(t, err)
		assert.NotEqual(t, daily, collect)
	})
}

func TestTransactionLogRepository_Record(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTransactionLogRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedAccount(t, testDB.DB, 100, 1000)

	first := &models.TransactionLogEntry{UserID: 100, Action: models.ActionDaily, Delta: 1500}
	require.NoError(t, repo.Record(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &models.TransactionLogEntry{UserID: 100, Action: models.ActionSlots, Delta: -200}
	require.NoError(t, repo.Record(ctx, second))

	other := &models.TransactionLogEntry{UserID: 200, Action: models.ActionInitial, Delta: 1000}
	require.NoError(t, repo.Record(ctx, other))

	entries, err := repo.GetRecentByUser(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, models.ActionSlots, entries[0].Action)
	assert.Equal(t, int64(-200), entries[0].Delta)
	assert.Equal(t, models.ActionDaily, entries[1].Action)

	entries, err = repo.GetRecentByUser(ctx, 100, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionSlots, entries[0].Action)
}
