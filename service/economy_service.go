package service

import (
	"context"
	"fmt"
	"time"

	"coinsbot/config"
	"coinsbot/models"
)

type economyService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	locks      *AccountLocks
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, cfg *config.Config, locks *AccountLocks) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		cfg:        cfg,
		locks:      locks,
	}
}

func (s *economyService) GetOrCreateAccount(ctx context.Context, userID int64) (*models.Account, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// timedReward describes the uniform shape of every throttled reward
// command: a cooldown key and duration, a reward range and an
// experience range.
type timedReward struct {
	key      string
	duration time.Duration
	reward   config.RewardRange
	xp       config.RewardRange
	action   models.ActionType
}

func (s *economyService) ClaimDaily(ctx context.Context, userID int64) (*models.RewardResult, error) {
	return s.claimTimedReward(ctx, userID, timedReward{
		key:      models.CooldownKeyDaily,
		duration: s.cfg.DailyCooldown,
		reward:   s.cfg.DailyReward(),
		xp:       xpDaily,
		action:   models.ActionDaily,
	})
}

func (s *economyService) ClaimCollect(ctx context.Context, userID int64) (*models.RewardResult, error) {
	return s.claimTimedReward(ctx, userID, timedReward{
		key:      models.CooldownKeyCollect,
		duration: s.cfg.CollectCooldown,
		reward:   s.cfg.CollectReward(),
		xp:       xpCollect,
		action:   models.ActionCollect,
	})
}

func (s *economyService) ClaimGift(ctx context.Context, userID int64) (*models.RewardResult, error) {
	return s.claimTimedReward(ctx, userID, timedReward{
		key:      models.CooldownKeyGift,
		duration: s.cfg.GiftCooldown,
		reward:   s.cfg.GiftReward(),
		xp:       xpGift,
		action:   models.ActionGift,
	})
}

// claimTimedReward implements the shared cooldown-gated reward flow:
// reject with the remaining duration while throttled, otherwise roll a
// reward, credit it, grant experience and arm the next cooldown, all in
// one transaction.
func (s *economyService) claimTimedReward(ctx context.Context, userID int64, tr timedReward) (*models.RewardResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}

	nextAt, err := uow.CooldownRepository().Get(ctx, userID, tr.key)
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	if remaining := time.Until(nextAt); remaining > 0 {
		return nil, &CooldownError{Key: tr.key, Remaining: remaining}
	}

	reward := rollRange(tr.reward)
	if err := creditBalance(ctx, uow, userID, reward, tr.action, account.Balance+reward); err != nil {
		return nil, err
	}
	account.Balance += reward

	level, err := grantExperience(ctx, uow, s.cfg, account, tr.xp)
	if err != nil {
		return nil, err
	}

	if err := uow.CooldownRepository().Set(ctx, userID, tr.key, time.Now().Add(tr.duration)); err != nil {
		return nil, fmt.Errorf("failed to set cooldown: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RewardResult{
		Reward:     reward,
		NewBalance: account.Balance,
		Level:      level,
	}, nil
}

func (s *economyService) Cooldowns(ctx context.Context, userID int64) (*models.CooldownStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	status := &models.CooldownStatus{}
	for _, c := range []struct {
		key  string
		dest *time.Duration
	}{
		{models.CooldownKeyDaily, &status.Daily},
		{models.CooldownKeyCollect, &status.Collect},
		{models.CooldownKeyGift, &status.Gift},
	} {
		nextAt, err := uow.CooldownRepository().Get(ctx, userID, c.key)
		if err != nil {
			return nil, fmt.Errorf("failed to get cooldown %s: %w", c.key, err)
		}
		if remaining := time.Until(nextAt); remaining > 0 {
			*c.dest = remaining
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return status, nil
}

func (s *economyService) Give(ctx context.Context, fromUserID, toUserID int64, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive: %w", ErrInvalidInput)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("cannot transfer to yourself: %w", ErrInvalidInput)
	}

	unlock := s.locks.LockPair(fromUserID, toUserID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sender, err := ensureAccount(ctx, uow, s.cfg, fromUserID)
	if err != nil {
		return nil, err
	}
	if sender.Balance < amount {
		return nil, fmt.Errorf("have %d, need %d: %w", sender.Balance, amount, ErrInsufficientFunds)
	}

	recipient, err := ensureAccount(ctx, uow, s.cfg, toUserID)
	if err != nil {
		return nil, err
	}

	if err := debitBalance(ctx, uow, fromUserID, amount, models.ActionGiveSent, sender.Balance-amount); err != nil {
		return nil, err
	}
	if err := creditBalance(ctx, uow, toUserID, amount, models.ActionGiveReceived, recipient.Balance+amount); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TransferResult{
		Amount:           amount,
		SenderBalance:    sender.Balance - amount,
		RecipientBalance: recipient.Balance + amount,
	}, nil
}

func (s *economyService) TopPlayers(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit < 3 {
		limit = 3
	}
	if limit > 20 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.AccountRepository().GetTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

func (s *economyService) Profile(ctx context.Context, userID int64) (*models.ProfileResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}

	profile := &models.ProfileResult{
		Account:  account,
		XPNeeded: xpNeededForLevel(s.cfg, account.Level),
	}

	member, err := uow.ClanRepository().GetMemberByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get clan membership: %w", err)
	}
	if member != nil {
		clan, err := uow.ClanRepository().GetByID(ctx, member.ClanID)
		if err != nil {
			return nil, fmt.Errorf("failed to get clan: %w", err)
		}
		if clan != nil {
			profile.ClanName = clan.Name
			profile.ClanRole = member.Role
			profile.ClanBank = clan.Bank
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return profile, nil
}
