package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coinsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMinesCashoutMultiplier(t *testing.T) {
	cfg := newTestConfig()

	assert.Equal(t, 0.5, minesCashoutMultiplier(cfg, 1))
	assert.Equal(t, 1.2, minesCashoutMultiplier(cfg, 3))
	assert.Equal(t, 4.0, minesCashoutMultiplier(cfg, 8))

	// Counts past the table clamp to the last entry.
	assert.Equal(t, 4.0, minesCashoutMultiplier(cfg, 12))
}

func TestMinesPayout(t *testing.T) {
	// The payout truncates, never rounds up.
	assert.Equal(t, int64(240), minesPayout(200, 1.2))
	assert.Equal(t, int64(50), minesPayout(101, 0.5))
	assert.Equal(t, int64(700), minesPayout(200, 3.5))
}

func TestMinesSessionRevealedCells(t *testing.T) {
	game := &minesSession{
		bet:      100,
		minePos:  5,
		revealed: map[int]bool{7: true, 2: true, 9: true},
	}
	assert.Equal(t, []int{2, 7, 9}, game.revealedCells())
}

func TestMinesService_Claim_RetriesAfterFailedSettlement(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	mockCooldownRepo := new(MockCooldownRepository)
	mockLogRepo := new(MockTransactionLogRepository)
	mockClanRepo := new(MockClanRepository)

	failingUoW := new(MockUnitOfWork)
	failingUoW.SetRepositories(mockAccountRepo, mockCooldownRepo, mockLogRepo, mockClanRepo)
	failingUoW.On("Begin", ctx).Return(errors.New("connection reset"))

	workingUoW := new(MockUnitOfWork)
	workingUoW.SetRepositories(mockAccountRepo, mockCooldownRepo, mockLogRepo, mockClanRepo)
	workingUoW.On("Begin", ctx).Return(nil)
	workingUoW.On("Commit").Return(nil)
	workingUoW.On("Rollback").Return(nil)

	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(failingUoW).Once()
	mockFactory.On("Create").Return(workingUoW).Once()

	sessions := NewSessionStore(time.Hour)
	defer sessions.Stop()
	service := NewMinesService(mockFactory, newTestConfig(), NewAccountLocks(), sessions)

	game := &minesSession{
		bet:       200,
		minePos:   9,
		revealed:  map[int]bool{1: true, 2: true, 3: true},
		safeCount: 3,
	}
	require.NoError(t, sessions.put(&session{
		userID:   42,
		kind:     sessionKindMines,
		deadline: time.Now().Add(time.Hour),
		data:     game,
	}))

	_, err := service.Claim(ctx, 42)
	require.Error(t, err)

	// The session survives the failed settlement so the escrowed stake
	// and its cashout stay claimable.
	mockAccountRepo.On("GetByUserID", ctx, int64(42)).Return(&models.Account{UserID: 42, Balance: 1000, Level: 1}, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(42), int64(240)).Return(nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 42 && e.Action == models.ActionMinesClaim && e.Delta == 240
	})).Return(nil)
	mockAccountRepo.On("UpdateProgress", ctx, int64(42), 1, mock.AnythingOfType("int64")).Return(nil)

	result, err := service.Claim(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeCashedOut, result.Outcome)
	assert.Equal(t, int64(240), result.Payout)
	assert.Equal(t, int64(1240), result.NewBalance)

	// The settled session is gone.
	_, err = service.Claim(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	mockFactory.AssertExpectations(t)
	workingUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
}

func TestMinesService_Reveal_FullClearPaysFlatMultiplier(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	mockCooldownRepo := new(MockCooldownRepository)
	mockLogRepo := new(MockTransactionLogRepository)
	mockClanRepo := new(MockClanRepository)

	mockUoW := new(MockUnitOfWork)
	mockUoW.SetRepositories(mockAccountRepo, mockCooldownRepo, mockLogRepo, mockClanRepo)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockFactory := new(MockUnitOfWorkFactory)
	mockFactory.On("Create").Return(mockUoW)

	sessions := NewSessionStore(time.Hour)
	defer sessions.Stop()
	service := NewMinesService(mockFactory, newTestConfig(), NewAccountLocks(), sessions)

	game := &minesSession{
		bet:       200,
		minePos:   9,
		revealed:  map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true},
		safeCount: 7,
	}
	require.NoError(t, sessions.put(&session{
		userID:   42,
		kind:     sessionKindMines,
		deadline: time.Now().Add(time.Hour),
		data:     game,
	}))

	mockAccountRepo.On("GetByUserID", ctx, int64(42)).Return(&models.Account{UserID: 42, Balance: 800, Level: 1}, nil)

	// Clearing the board pays the flat 3.5x rate, not the table cap.
	mockAccountRepo.On("AddBalance", ctx, int64(42), int64(700)).Return(nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 42 && e.Action == models.ActionMinesWin && e.Delta == 700
	})).Return(nil)
	mockAccountRepo.On("IncrementDraws", ctx, int64(42)).Return(nil)
	mockAccountRepo.On("UpdateProgress", ctx, int64(42), 1, mock.AnythingOfType("int64")).Return(nil)

	result, err := service.Reveal(ctx, 42, 8)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeFullClear, result.Outcome)
	assert.Equal(t, 3.5, result.Multiplier)
	assert.Equal(t, int64(700), result.Payout)
	assert.Equal(t, int64(1500), result.NewBalance)

	_, err = service.Reveal(ctx, 42, 8)
	assert.ErrorIs(t, err, ErrNotFound)

	mockAccountRepo.AssertExpectations(t)
	mockLogRepo.AssertExpectations(t)
}
