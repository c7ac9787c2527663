package service

import (
	"context"
	"time"

	"coinsbot/events"
	"coinsbot/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByUserID retrieves an account, or nil if it does not exist
	GetByUserID(ctx context.Context, userID int64) (*models.Account, error)

	// Create creates a new account with the starting balance
	Create(ctx context.Context, userID int64, startingBalance int64) (*models.Account, error)

	// AddBalance credits an account atomically; amount must be positive
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance debits an account atomically, returning
	// ErrInsufficientFunds if the balance is lower than amount
	DeductBalance(ctx context.Context, userID int64, amount int64) error

	// UpdateProgress stores a new level and residual experience
	UpdateProgress(ctx context.Context, userID int64, level int, xp int64) error

	// IncrementDraws bumps the gambling action counter
	IncrementDraws(ctx context.Context, userID int64) error

	// SetFlipStreak stores the coin-flip win streak
	SetFlipStreak(ctx context.Context, userID int64, streak int) error

	// GetTop returns the richest accounts, highest balance first
	GetTop(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// CooldownRepository defines the interface for cooldown timer access
type CooldownRepository interface {
	// Get returns the next-eligible time for an action, or the zero
	// time if the action has never been used
	Get(ctx context.Context, userID int64, key string) (time.Time, error)

	// Set upserts the next-eligible time for an action
	Set(ctx context.Context, userID int64, key string, nextAt time.Time) error
}

// TransactionLogRepository defines the interface for the append-only
// audit log
type TransactionLogRepository interface {
	// Record appends a log entry
	Record(ctx context.Context, entry *models.TransactionLogEntry) error
}

// ClanRepository defines the interface for all clan related data access
type ClanRepository interface {
	// Clan operations
	Create(ctx context.Context, name string, ownerID int64) (*models.Clan, error)
	GetByID(ctx context.Context, clanID int64) (*models.Clan, error)
	GetByName(ctx context.Context, name string) (*models.Clan, error)
	Rename(ctx context.Context, clanID int64, name string) error
	SetOwner(ctx context.Context, clanID int64, ownerID int64) error
	Delete(ctx context.Context, clanID int64) error
	GetTop(ctx context.Context, limit int) ([]*models.ClanLeaderboardEntry, error)

	// Bank operations; DeductFromBank returns ErrInsufficientFunds if
	// the bank holds less than amount
	AddToBank(ctx context.Context, clanID int64, amount int64) error
	DeductFromBank(ctx context.Context, clanID int64, amount int64) error

	// Membership operations
	GetMemberByUserID(ctx context.Context, userID int64) (*models.ClanMember, error)
	AddMember(ctx context.Context, clanID int64, userID int64, role models.ClanRole) error
	RemoveMember(ctx context.Context, clanID int64, userID int64) error
	RemoveAllMembers(ctx context.Context, clanID int64) error
	UpdateMemberRole(ctx context.Context, clanID int64, userID int64, role models.ClanRole) error
	CountMembers(ctx context.Context, clanID int64) (int, error)
	CountMods(ctx context.Context, clanID int64) (int, error)

	// Invite operations
	UpsertInvite(ctx context.Context, clanID int64, userID int64, invitedBy int64) error
	GetLatestInviteForUser(ctx context.Context, userID int64) (*models.ClanInvite, error)
	DeleteInvitesForUser(ctx context.Context, userID int64) error
	DeleteInvitesForClan(ctx context.Context, clanID int64) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// EconomyService defines the interface for account and reward operations
type EconomyService interface {
	// GetOrCreateAccount retrieves an account, creating it with the
	// starting balance on first reference
	GetOrCreateAccount(ctx context.Context, userID int64) (*models.Account, error)

	// ClaimDaily claims the daily reward, or reports the remaining
	// cooldown
	ClaimDaily(ctx context.Context, userID int64) (*models.RewardResult, error)

	// ClaimCollect claims the collect reward
	ClaimCollect(ctx context.Context, userID int64) (*models.RewardResult, error)

	// ClaimGift claims the random gift reward
	ClaimGift(ctx context.Context, userID int64) (*models.RewardResult, error)

	// Cooldowns reports the remaining cooldown per timed reward
	Cooldowns(ctx context.Context, userID int64) (*models.CooldownStatus, error)

	// Give transfers currency from one account to another atomically
	Give(ctx context.Context, fromUserID, toUserID int64, amount int64) (*models.TransferResult, error)

	// TopPlayers returns the player leaderboard by balance
	TopPlayers(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// Profile summarizes an account with clan details for display
	Profile(ctx context.Context, userID int64) (*models.ProfileResult, error)
}

// GameService defines the interface for single-shot games resolved
// within one interaction
type GameService interface {
	// PlayRoulette spins for a color (rouge/noir) or an exact number
	PlayRoulette(ctx context.Context, userID int64, stake int64, choice string) (*models.RouletteResult, error)

	// PlaySlots pulls the slot machine once
	PlaySlots(ctx context.Context, userID int64, stake int64) (*models.SlotsResult, error)

	// PlayGuess resolves a number guess in [1,10]
	PlayGuess(ctx context.Context, userID int64, stake int64, pick int) (*models.GuessResult, error)

	// PlayCoinFlip resolves a streak-decayed coin flip
	PlayCoinFlip(ctx context.Context, userID int64, stake int64) (*models.CoinFlipResult, error)

	// PlayRPS resolves rock-paper-scissors (pierre/feuille/ciseaux)
	PlayRPS(ctx context.Context, userID int64, stake int64, choice string) (*models.RPSResult, error)
}

// MinesService defines the interface for the minesweeper session game
type MinesService interface {
	// Start escrows the stake and opens a session
	Start(ctx context.Context, userID int64, stake int64) (*models.MinesResult, error)

	// Reveal opens a cell (1-9)
	Reveal(ctx context.Context, userID int64, cell int) (*models.MinesResult, error)

	// Claim cashes out at the current multiplier
	Claim(ctx context.Context, userID int64) (*models.MinesResult, error)
}

// BlackjackService defines the interface for the blackjack session game
type BlackjackService interface {
	// Deal starts a round; a natural 21 resolves immediately
	Deal(ctx context.Context, userID int64, stake int64) (*models.BlackjackResult, error)

	// Hit draws one card, busting if the score exceeds 21
	Hit(ctx context.Context, userID int64) (*models.BlackjackResult, error)

	// Stand plays out the dealer and settles the round
	Stand(ctx context.Context, userID int64) (*models.BlackjackResult, error)
}

// ClanService defines the interface for clan lifecycle, membership and
// bank operations
type ClanService interface {
	Create(ctx context.Context, userID int64, name string) (*models.Clan, error)
	Invite(ctx context.Context, userID int64, targetID int64) (*models.Clan, error)
	Accept(ctx context.Context, userID int64) (*models.Clan, error)
	Leave(ctx context.Context, userID int64) error
	Info(ctx context.Context, userID int64) (*models.ClanInfo, error)
	Deposit(ctx context.Context, userID int64, amount int64) (*models.ClanBankResult, error)
	Withdraw(ctx context.Context, userID int64, amount int64) (*models.ClanBankResult, error)
	SetMod(ctx context.Context, userID int64, targetID int64) (*models.Clan, error)
	UnsetMod(ctx context.Context, userID int64, targetID int64) (*models.Clan, error)
	TransferOwnership(ctx context.Context, userID int64, targetID int64) (*models.Clan, error)
	Rename(ctx context.Context, userID int64, name string) (*models.Clan, error)
	Delete(ctx context.Context, userID int64) (*models.Clan, error)
	TopClans(ctx context.Context, limit int) ([]*models.ClanLeaderboardEntry, error)
}

// UnitOfWork defines the interface for transactional repository
// operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	CooldownRepository() CooldownRepository
	TransactionLogRepository() TransactionLogRepository
	ClanRepository() ClanRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork
// instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
