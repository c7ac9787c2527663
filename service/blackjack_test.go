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

func TestBJScore(t *testing.T) {
	tests := []struct {
		name  string
		cards []int
		want  int
	}{
		{"simple sum", []int{5, 9}, 14},
		{"natural", []int{11, 10}, 21},
		{"one ace demoted", []int{11, 9, 5}, 15},
		{"double aces demote once", []int{11, 11}, 12},
		{"all aces", []int{11, 11, 11}, 13},
		{"bust with no aces", []int{10, 9, 5}, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bjScore(tt.cards))
		})
	}
}

func TestBJPlayDealer(t *testing.T) {
	// Already standing hands are left untouched.
	hand := bjPlayDealer([]int{10, 7})
	assert.Equal(t, []int{10, 7}, hand)

	hand = bjPlayDealer([]int{10, 10})
	assert.Equal(t, []int{10, 10}, hand)

	// Below 17 the dealer must draw until standing or busting.
	for i := 0; i < 50; i++ {
		hand := bjPlayDealer([]int{2, 3})
		assert.GreaterOrEqual(t, bjScore(hand), bjDealerStand)
	}
}

func TestSettleBlackjackStand(t *testing.T) {
	tests := []struct {
		name        string
		player      int
		dealer      int
		wantOutcome models.GameOutcome
		wantDelta   int64
		wantAction  models.ActionType
	}{
		{"player higher", 20, 18, models.OutcomeWin, 100, models.ActionBlackjackWin},
		{"dealer bust", 12, 22, models.OutcomeWin, 100, models.ActionBlackjackWin},
		{"push", 19, 19, models.OutcomePush, 0, models.ActionBlackjackPush},
		{"dealer higher", 18, 20, models.OutcomeLoss, -100, models.ActionBlackjackLose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, delta, action := settleBlackjackStand(100, tt.player, tt.dealer)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantDelta, delta)
			assert.Equal(t, tt.wantAction, action)
		})
	}
}

func TestBJDrawRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := bjDraw()
		assert.GreaterOrEqual(t, c, 2)
		assert.LessOrEqual(t, c, 11)
	}
}

// newBlackjackRetryFixture wires a blackjack service whose first
// settlement transaction fails to begin and whose second succeeds.
func newBlackjackRetryFixture(t *testing.T, ctx context.Context) (BlackjackService, *SessionStore, *MockAccountRepository, *MockTransactionLogRepository) {
	t.Helper()

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
	t.Cleanup(sessions.Stop)

	service := NewBlackjackService(mockFactory, newTestConfig(), NewAccountLocks(), sessions)
	return service, sessions, mockAccountRepo, mockLogRepo
}

func TestBlackjackService_Hit_BustKeepsSessionOnFailedSettlement(t *testing.T) {
	ctx := context.Background()
	service, sessions, mockAccountRepo, mockLogRepo := newBlackjackRetryFixture(t, ctx)

	// On 20 any draw busts.
	game := &blackjackSession{bet: 100, player: []int{10, 10}, dealer: []int{10, 6}}
	require.NoError(t, sessions.put(&session{
		userID:   7,
		kind:     sessionKindBlackjack,
		deadline: time.Now().Add(time.Hour),
		data:     game,
	}))

	_, err := service.Hit(ctx, 7)
	require.Error(t, err)

	// The failed settlement undid the draw; the round is still open.
	assert.Len(t, game.player, 2)

	mockAccountRepo.On("GetByUserID", ctx, int64(7)).Return(&models.Account{UserID: 7, Balance: 1000, Level: 1}, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(7), int64(100)).Return(nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 7 && e.Action == models.ActionBlackjackLose && e.Delta == -100
	})).Return(nil)
	mockAccountRepo.On("UpdateProgress", ctx, int64(7), 1, mock.AnythingOfType("int64")).Return(nil)

	result, err := service.Hit(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLoss, result.Outcome)
	assert.Equal(t, int64(-100), result.Delta)
	assert.Equal(t, int64(900), result.NewBalance)

	_, err = service.Hit(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	mockAccountRepo.AssertExpectations(t)
}

func TestBlackjackService_Stand_KeepsSessionOnFailedSettlement(t *testing.T) {
	ctx := context.Background()
	service, sessions, mockAccountRepo, mockLogRepo := newBlackjackRetryFixture(t, ctx)

	game := &blackjackSession{bet: 100, player: []int{10, 9}, dealer: []int{10, 6}}
	require.NoError(t, sessions.put(&session{
		userID:   7,
		kind:     sessionKindBlackjack,
		deadline: time.Now().Add(time.Hour),
		data:     game,
	}))

	_, err := service.Stand(ctx, 7)
	require.Error(t, err)

	// The dealer draws were undone with the failed settlement.
	assert.Len(t, game.dealer, 2)

	mockAccountRepo.On("GetByUserID", ctx, int64(7)).Return(&models.Account{UserID: 7, Balance: 1000, Level: 1}, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(7), int64(100)).Return(nil).Maybe()
	mockAccountRepo.On("DeductBalance", ctx, int64(7), int64(100)).Return(nil).Maybe()
	mockLogRepo.On("Record", ctx, mock.AnythingOfType("*models.TransactionLogEntry")).Return(nil)
	mockAccountRepo.On("UpdateProgress", ctx, int64(7), 1, mock.AnythingOfType("int64")).Return(nil)

	result, err := service.Stand(ctx, 7)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.DealerScore, bjDealerStand)

	switch result.Outcome {
	case models.OutcomeWin:
		assert.Equal(t, int64(100), result.Delta)
	case models.OutcomePush:
		assert.Equal(t, int64(0), result.Delta)
	case models.OutcomeLoss:
		assert.Equal(t, int64(-100), result.Delta)
	default:
		t.Fatalf("unexpected outcome %v", result.Outcome)
	}
	assert.Equal(t, int64(1000)+result.Delta, result.NewBalance)

	_, err = service.Stand(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
