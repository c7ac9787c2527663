package service

import (
	"context"
	"strings"
	"testing"

	"coinsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockedClanService() (ClanService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockAccountRepository, *MockTransactionLogRepository, *MockClanRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockCooldownRepo := new(MockCooldownRepository)
	mockLogRepo := new(MockTransactionLogRepository)
	mockClanRepo := new(MockClanRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockCooldownRepo, mockLogRepo, mockClanRepo)

	service := NewClanService(mockFactory, newTestConfig(), NewAccountLocks())
	return service, mockFactory, mockUoW, mockAccountRepo, mockLogRepo, mockClanRepo
}

func TestClanService_Create_RejectsBadNames(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, _, _, _, _ := newMockedClanService()

	_, err := service.Create(ctx, 1, "ab")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Create(ctx, 1, "this name is far too long for a clan")
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Whitespace padding does not rescue a too-short name.
	_, err = service.Create(ctx, 1, "  a  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestValidateClanName_CountsCharactersNotBytes(t *testing.T) {
	// 20 accented characters is 40 bytes but still a legal name.
	name, err := validateClanName(strings.Repeat("é", 20))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 20), name)

	_, err = validateClanName(strings.Repeat("é", 21))
	assert.ErrorIs(t, err, ErrInvalidInput)

	name, err = validateClanName("  Légion des braves  ")
	require.NoError(t, err)
	assert.Equal(t, "Légion des braves", name)
}

func TestClanService_Create_RejectsExistingMembership(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockClanRepo := newMockedClanService()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockClanRepo.On("GetMemberByUserID", ctx, int64(1)).Return(&models.ClanMember{
		ClanID: 7, UserID: 1, Role: models.ClanRoleMember,
	}, nil)

	_, err := service.Create(ctx, 1, "warband")

	assert.ErrorIs(t, err, ErrStateConflict)
	mockUoW.AssertNotCalled(t, "Commit")
	mockClanRepo.AssertNotCalled(t, "Create", ctx, mock.Anything, mock.Anything)
}

func TestClanService_Withdraw_MemberDenied(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockClanRepo := newMockedClanService()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockClanRepo.On("GetMemberByUserID", ctx, int64(1)).Return(&models.ClanMember{
		ClanID: 7, UserID: 1, Role: models.ClanRoleMember,
	}, nil)
	mockClanRepo.On("GetByID", ctx, int64(7)).Return(&models.Clan{
		ID: 7, Name: "warband", OwnerID: 2, Bank: 5000,
	}, nil)

	_, err := service.Withdraw(ctx, 1, 100)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	mockUoW.AssertNotCalled(t, "Commit")
	mockClanRepo.AssertNotCalled(t, "DeductFromBank", ctx, int64(7), mock.Anything)
}

func TestClanService_Withdraw_ModAllowed(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockAccountRepo, mockLogRepo, mockClanRepo := newMockedClanService()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockClanRepo.On("GetMemberByUserID", ctx, int64(1)).Return(&models.ClanMember{
		ClanID: 7, UserID: 1, Role: models.ClanRoleMod,
	}, nil)
	mockClanRepo.On("GetByID", ctx, int64(7)).Return(&models.Clan{
		ID: 7, Name: "warband", OwnerID: 2, Bank: 5000,
	}, nil)
	mockAccountRepo.On("GetByUserID", ctx, int64(1)).Return(&models.Account{
		UserID: 1, Balance: 100, Level: 1,
	}, nil)
	mockClanRepo.On("DeductFromBank", ctx, int64(7), int64(400)).Return(nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), int64(400)).Return(nil)
	mockLogRepo.On("Record", ctx, mock.MatchedBy(func(e *models.TransactionLogEntry) bool {
		return e.UserID == 1 && e.Action == models.ActionClanWithdraw && e.Delta == 400
	})).Return(nil)

	result, err := service.Withdraw(ctx, 1, 400)

	require.NoError(t, err)
	assert.Equal(t, int64(400), result.Amount)
	assert.Equal(t, int64(4600), result.Bank)
	assert.Equal(t, int64(500), result.NewBalance)

	mockUoW.AssertExpectations(t)
	mockClanRepo.AssertExpectations(t)
}

func TestClanService_SetMod_LimitReached(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockClanRepo := newMockedClanService()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockClanRepo.On("GetMemberByUserID", ctx, int64(1)).Return(&models.ClanMember{
		ClanID: 7, UserID: 1, Role: models.ClanRoleOwner,
	}, nil)
	mockClanRepo.On("GetByID", ctx, int64(7)).Return(&models.Clan{
		ID: 7, Name: "warband", OwnerID: 1,
	}, nil)
	mockClanRepo.On("GetMemberByUserID", ctx, int64(3)).Return(&models.ClanMember{
		ClanID: 7, UserID: 3, Role: models.ClanRoleMember,
	}, nil)
	mockClanRepo.On("CountMods", ctx, int64(7)).Return(2, nil)

	_, err := service.SetMod(ctx, 1, 3)

	assert.ErrorIs(t, err, ErrStateConflict)
	mockClanRepo.AssertNotCalled(t, "UpdateMemberRole", ctx, int64(7), int64(3), models.ClanRoleMod)
}

func TestClanService_Leave_OwnerDenied(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockClanRepo := newMockedClanService()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockClanRepo.On("GetMemberByUserID", ctx, int64(1)).Return(&models.ClanMember{
		ClanID: 7, UserID: 1, Role: models.ClanRoleOwner,
	}, nil)
	mockClanRepo.On("GetByID", ctx, int64(7)).Return(&models.Clan{
		ID: 7, Name: "warband", OwnerID: 1,
	}, nil)

	err := service.Leave(ctx, 1)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	mockClanRepo.AssertNotCalled(t, "RemoveMember", ctx, int64(7), int64(1))
}

func TestClanService_Accept_NoInvite(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockClanRepo := newMockedClanService()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockClanRepo.On("GetMemberByUserID", ctx, int64(5)).Return(nil, nil)
	mockClanRepo.On("GetLatestInviteForUser", ctx, int64(5)).Return(nil, nil)

	_, err := service.Accept(ctx, 5)

	assert.ErrorIs(t, err, ErrNotFound)
	mockClanRepo.AssertNotCalled(t, "AddMember", ctx, mock.Anything, int64(5), models.ClanRoleMember)
}
