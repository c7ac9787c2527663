package service

import (
	"context"
	"fmt"
	"math/rand"

	"coinsbot/config"
	"coinsbot/events"
	"coinsbot/models"
)

// Experience ranges granted per action, matching the tuning of the
// original economy.
var (
	xpDaily      = config.RewardRange{Min: 15, Max: 35}
	xpCollect    = config.RewardRange{Min: 5, Max: 15}
	xpGift       = config.RewardRange{Min: 8, Max: 16}
	xpRoulette   = config.RewardRange{Min: 6, Max: 18}
	xpSlots      = config.RewardRange{Min: 4, Max: 12}
	xpRPS        = config.RewardRange{Min: 5, Max: 12}
	xpGuess      = config.RewardRange{Min: 5, Max: 15}
	xpCoinFlip   = config.RewardRange{Min: 3, Max: 10}
	xpBlackjack  = config.RewardRange{Min: 8, Max: 20}
	xpMinesHit   = config.RewardRange{Min: 1, Max: 5}
	xpMinesClaim = config.RewardRange{Min: 5, Max: 15}
	xpMinesClear = config.RewardRange{Min: 10, Max: 20}
)

// rollRange returns a uniform value in the inclusive range.
func rollRange(r config.RewardRange) int64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.Int63n(r.Max-r.Min+1)
}

// ensureAccount loads an account inside the unit of work, creating it
// with the starting balance on first reference. This is the single
// entry point for lazy account creation.
func ensureAccount(ctx context.Context, uow UnitOfWork, cfg *config.Config, userID int64) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, err = uow.AccountRepository().Create(ctx, userID, cfg.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := recordLedgerChange(ctx, uow, userID, models.ActionInitial, cfg.StartingBalance, account.Balance); err != nil {
		return nil, err
	}
	uow.EventBus().Publish(events.AccountCreatedEvent{
		UserID:          userID,
		StartingBalance: cfg.StartingBalance,
	})

	return account, nil
}

// recordLedgerChange appends an audit log entry and emits the balance
// change event. This is the single entry point for all balance changes.
func recordLedgerChange(ctx context.Context, uow UnitOfWork, userID int64, action models.ActionType, delta int64, newBalance int64) error {
	entry := &models.TransactionLogEntry{
		UserID: userID,
		Action: action,
		Delta:  delta,
	}
	if err := uow.TransactionLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record transaction log: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		Action:     action,
		Delta:      delta,
		NewBalance: newBalance,
	})

	return nil
}

// creditBalance credits amount to an account and logs it. amount must
// be positive.
func creditBalance(ctx context.Context, uow UnitOfWork, userID int64, amount int64, action models.ActionType, balanceAfter int64) error {
	if err := uow.AccountRepository().AddBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return recordLedgerChange(ctx, uow, userID, action, amount, balanceAfter)
}

// debitBalance debits amount from an account and logs it. amount must
// be positive; the repository guard surfaces ErrInsufficientFunds if
// the account cannot cover it.
func debitBalance(ctx context.Context, uow UnitOfWork, userID int64, amount int64, action models.ActionType, balanceAfter int64) error {
	if err := uow.AccountRepository().DeductBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	return recordLedgerChange(ctx, uow, userID, action, -amount, balanceAfter)
}

// grantExperience rolls experience in the given range, resolves
// level-ups and credits any level bonus, all within the same unit of
// work. The returned result reflects the new level, residual
// experience and total bonus credited.
func grantExperience(ctx context.Context, uow UnitOfWork, cfg *config.Config, account *models.Account, xpRange config.RewardRange) (models.LevelResult, error) {
	gain := rollRange(xpRange)

	newLevel, newXP, leveledUp, bonus := applyExperience(cfg, account.Level, account.XP, gain)

	if err := uow.AccountRepository().UpdateProgress(ctx, account.UserID, newLevel, newXP); err != nil {
		return models.LevelResult{}, fmt.Errorf("failed to update progression: %w", err)
	}

	if bonus > 0 {
		if err := creditBalance(ctx, uow, account.UserID, bonus, models.ActionLevelBonus, account.Balance+bonus); err != nil {
			return models.LevelResult{}, err
		}
	}

	if leveledUp {
		uow.EventBus().Publish(events.LevelUpEvent{
			UserID:   account.UserID,
			NewLevel: newLevel,
			Bonus:    bonus,
		})
	}

	account.Level = newLevel
	account.XP = newXP
	account.Balance += bonus

	return models.LevelResult{
		Level:     newLevel,
		XP:        newXP,
		LeveledUp: leveledUp,
		Bonus:     bonus,
	}, nil
}
