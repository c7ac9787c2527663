package service

import (
	"context"
	"time"

	"coinsbot/events"
	"coinsbot/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUserID(ctx context.Context, userID int64) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, userID int64, startingBalance int64) (*models.Account, error) {
	args := m.Called(ctx, userID, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateProgress(ctx context.Context, userID int64, level int, xp int64) error {
	args := m.Called(ctx, userID, level, xp)
	return args.Error(0)
}

func (m *MockAccountRepository) IncrementDraws(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAccountRepository) SetFlipStreak(ctx context.Context, userID int64, streak int) error {
	args := m.Called(ctx, userID, streak)
	return args.Error(0)
}

func (m *MockAccountRepository) GetTop(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) Get(ctx context.Context, userID int64, key string) (time.Time, error) {
	args := m.Called(ctx, userID, key)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockCooldownRepository) Set(ctx context.Context, userID int64, key string, nextAt time.Time) error {
	args := m.Called(ctx, userID, key, nextAt)
	return args.Error(0)
}

// MockTransactionLogRepository is a mock implementation of TransactionLogRepository
type MockTransactionLogRepository struct {
	mock.Mock
}

func (m *MockTransactionLogRepository) Record(ctx context.Context, entry *models.TransactionLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockClanRepository is a mock implementation of ClanRepository
type MockClanRepository struct {
	mock.Mock
}

func (m *MockClanRepository) Create(ctx context.Context, name string, ownerID int64) (*models.Clan, error) {
	args := m.Called(ctx, name, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanRepository) GetByID(ctx context.Context, clanID int64) (*models.Clan, error) {
	args := m.Called(ctx, clanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanRepository) GetByName(ctx context.Context, name string) (*models.Clan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Clan), args.Error(1)
}

func (m *MockClanRepository) Rename(ctx context.Context, clanID int64, name string) error {
	args := m.Called(ctx, clanID, name)
	return args.Error(0)
}

func (m *MockClanRepository) SetOwner(ctx context.Context, clanID int64, ownerID int64) error {
	args := m.Called(ctx, clanID, ownerID)
	return args.Error(0)
}

func (m *MockClanRepository) Delete(ctx context.Context, clanID int64) error {
	args := m.Called(ctx, clanID)
	return args.Error(0)
}

func (m *MockClanRepository) GetTop(ctx context.Context, limit int) ([]*models.ClanLeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClanLeaderboardEntry), args.Error(1)
}

func (m *MockClanRepository) AddToBank(ctx context.Context, clanID int64, amount int64) error {
	args := m.Called(ctx, clanID, amount)
	return args.Error(0)
}

func (m *MockClanRepository) DeductFromBank(ctx context.Context, clanID int64, amount int64) error {
	args := m.Called(ctx, clanID, amount)
	return args.Error(0)
}

func (m *MockClanRepository) GetMemberByUserID(ctx context.Context, userID int64) (*models.ClanMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClanMember), args.Error(1)
}

func (m *MockClanRepository) AddMember(ctx context.Context, clanID int64, userID int64, role models.ClanRole) error {
	args := m.Called(ctx, clanID, userID, role)
	return args.Error(0)
}

func (m *MockClanRepository) RemoveMember(ctx context.Context, clanID int64, userID int64) error {
	args := m.Called(ctx, clanID, userID)
	return args.Error(0)
}

func (m *MockClanRepository) RemoveAllMembers(ctx context.Context, clanID int64) error {
	args := m.Called(ctx, clanID)
	return args.Error(0)
}

func (m *MockClanRepository) UpdateMemberRole(ctx context.Context, clanID int64, userID int64, role models.ClanRole) error {
	args := m.Called(ctx, clanID, userID, role)
	return args.Error(0)
}

func (m *MockClanRepository) CountMembers(ctx context.Context, clanID int64) (int, error) {
	args := m.Called(ctx, clanID)
	return args.Int(0), args.Error(1)
}

func (m *MockClanRepository) CountMods(ctx context.Context, clanID int64) (int, error) {
	args := m.Called(ctx, clanID)
	return args.Int(0), args.Error(1)
}

func (m *MockClanRepository) UpsertInvite(ctx context.Context, clanID int64, userID int64, invitedBy int64) error {
	args := m.Called(ctx, clanID, userID, invitedBy)
	return args.Error(0)
}

func (m *MockClanRepository) GetLatestInviteForUser(ctx context.Context, userID int64) (*models.ClanInvite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClanInvite), args.Error(1)
}

func (m *MockClanRepository) DeleteInvitesForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockClanRepository) DeleteInvitesForClan(ctx context.Context, clanID int64) error {
	args := m.Called(ctx, clanID)
	return args.Error(0)
}

// recordingPublisher collects published events for assertions.
type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.published = append(p.published, e)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit
// and Rollback are expectation-driven; the repository getters return
// whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo  AccountRepository
	cooldownRepo CooldownRepository
	logRepo      TransactionLogRepository
	clanRepo     ClanRepository
	publisher    *recordingPublisher
}

// SetRepositories installs the repository mocks returned by the getters
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, cooldowns CooldownRepository, logs TransactionLogRepository, clans ClanRepository) {
	m.accountRepo = accounts
	m.cooldownRepo = cooldowns
	m.logRepo = logs
	m.clanRepo = clans
	m.publisher = &recordingPublisher{}
}

// PublishedEvents returns the events published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.publisher.published
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) CooldownRepository() CooldownRepository {
	return m.cooldownRepo
}

func (m *MockUnitOfWork) TransactionLogRepository() TransactionLogRepository {
	return m.logRepo
}

func (m *MockUnitOfWork) ClanRepository() ClanRepository {
	return m.clanRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := f.Called()
	return args.Get(0).(UnitOfWork)
}
