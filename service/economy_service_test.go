package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coinsbot/events"
	"coinsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockedEconomyService() (EconomyService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockCooldownRepository, *MockTransactionLogRepository, *MockClanRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockCooldownRepo := new(MockCooldownRepository)
	mockLogRepo := new(MockTransactionLogRepository)
	mockClanRepo := new(MockClanRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockCooldownRepo, mockLogRepo, mockClanRepo)

	service := NewEconomyService(mockFactory, newTestConfig(), NewAccountLocks())
	return service, mockFactory, mockUoW, mockAccountRepo, mockCooldownRepo, mockLogRepo, mockClanRepo
}

func TestEconomyService_ClaimDaily_Success(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockAccountRepo, mockCooldownRepo, mockLogRepo, _ := newMockedEconomyService()

	existing := &models.Account{UserID: 42, Balance: 1000, Level: 1, XP: 0}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUserID", ctx, int64(42)).Return(existing, nil)
	mockCooldownRepo.On("Get", ctx, int64(42), models.CooldownKeyDaily).Return(time.Time{}, nil)

	mockAccountRepo.On("AddBalance", ctx, int64(42), mock.MatchedBy(func(amount int64) bool {
		return amount >= 1500 && amount <= 3000
	})).Return(nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 42 && e.Action == models.ActionDaily && e.Delta >= 1500 && e.Delta <= 3000
	})).Return(nil)

	// Daily experience cannot level a fresh account up.
	mockAccountRepo.On("UpdateProgress", ctx, int64(42), 1, mock.AnythingOfType("int64")).Return(nil)
	mockCooldownRepo.On("Set", ctx, int64(42), models.CooldownKeyDaily, mock.AnythingOfType("time.Time")).Return(nil)

	result, err := service.ClaimDaily(ctx, 42)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Reward, int64(1500))
	assert.LessOrEqual(t, result.Reward, int64(3000))
	assert.Equal(t, 1000+result.Reward, result.NewBalance)
	assert.False(t, result.Level.LeveledUp)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockCooldownRepo.AssertExpectations(t)
	mockLogRepo.AssertExpectations(t)
}

func TestEconomyService_ClaimDaily_OnCooldown(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockAccountRepo, mockCooldownRepo, _, _ := newMockedEconomyService()

	existing := &models.Account{UserID: 42, Balance: 1000, Level: 1}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUserID", ctx, int64(42)).Return(existing, nil)
	mockCooldownRepo.On("Get", ctx, int64(42), models.CooldownKeyDaily).Return(time.Now().Add(time.Hour), nil)

	result, err := service.ClaimDaily(ctx, 42)

	require.Error(t, err)
	assert.Nil(t, result)

	var cooldownErr *CooldownError
	require.True(t, errors.As(err, &cooldownErr))
	assert.Equal(t, models.CooldownKeyDaily, cooldownErr.Key)
	assert.Greater(t, cooldownErr.Remaining, time.Duration(0))
	assert.ErrorIs(t, err, ErrStateConflict)
	assert.True(t, IsUserError(err))

	mockUoW.AssertExpectations(t)
	mockUoW.AssertNotCalled(t, "Commit")
	mockAccountRepo.AssertNotCalled(t, "AddBalance", ctx, int64(42), mock.Anything)
}

func TestEconomyService_GetOrCreateAccount_CreatesLazily(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockAccountRepo, _, mockLogRepo, _ := newMockedEconomyService()

	created := &models.Account{UserID: 42, Balance: 1000, Level: 1}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUserID", ctx, int64(42)).Return(nil, nil)
	mockAccountRepo.On("Create", ctx, int64(42), int64(1000)).Return(created, nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 42 && e.Action == models.ActionInitial && e.Delta == 1000
	})).Return(nil)

	account, err := service.GetOrCreateAccount(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, created, account)

	// The initial grant shows up on the bus alongside the creation.
	published := mockUoW.PublishedEvents()
	require.Len(t, published, 2)
	change, ok := published[0].(events.BalanceChangeEvent)
	require.True(t, ok)
	assert.Equal(t, models.ActionInitial, change.Action)
	assert.Equal(t, int64(1000), change.Delta)
	createdEvent, ok := published[1].(events.AccountCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(42), createdEvent.UserID)

	mockAccountRepo.AssertExpectations(t)
	mockLogRepo.AssertExpectations(t)
}

func TestEconomyService_Give_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, _, _, _, _, _ := newMockedEconomyService()

	_, err := service.Give(ctx, 1, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Give(ctx, 1, 2, -50)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Give(ctx, 1, 1, 100)
	assert.ErrorIs(t, err, ErrInvalidInput)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestEconomyService_Give_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockAccountRepo, _, _, _ := newMockedEconomyService()

	sender := &models.Account{UserID: 1, Balance: 100, Level: 1}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUserID", ctx, int64(1)).Return(sender, nil)

	_, err := service.Give(ctx, 1, 2, 500)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	mockUoW.AssertNotCalled(t, "Commit")
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", ctx, int64(1), mock.Anything)
}

func TestEconomyService_Give_Success(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockAccountRepo, _, mockLogRepo, _ := newMockedEconomyService()

	sender := &models.Account{UserID: 1, Balance: 1000, Level: 1}
	recipient := &models.Account{UserID: 2, Balance: 200, Level: 1}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUserID", ctx, int64(1)).Return(sender, nil)
	mockAccountRepo.On("GetByUserID", ctx, int64(2)).Return(recipient, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), int64(300)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(2), int64(300)).Return(nil)

	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 1 && e.Action == models.ActionGiveSent && e.Delta == -300
	})).Return(nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 2 && e.Action == models.ActionGiveReceived && e.Delta == 300
	})).Return(nil)

	result, err := service.Give(ctx, 1, 2, 300)

	require.NoError(t, err)
	assert.Equal(t, int64(300), result.Amount)
	assert.Equal(t, int64(700), result.SenderBalance)
	assert.Equal(t, int64(500), result.RecipientBalance)

	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockLogRepo.AssertExpectations(t)
}
