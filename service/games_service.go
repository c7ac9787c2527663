package service

import (
	"context"
	"fmt"
	"math/rand"

	"coinsbot/config"
	"coinsbot/events"
	"coinsbot/models"
)

type gameService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	locks      *AccountLocks
}

// NewGameService creates a new single-shot game service
func NewGameService(uowFactory UnitOfWorkFactory, cfg *config.Config, locks *AccountLocks) GameService {
	return &gameService{
		uowFactory: uowFactory,
		cfg:        cfg,
		locks:      locks,
	}
}

// stakedAccount holds the per-game transactional context opened by
// playGame: the unit of work and the loaded account, with the stake
// already checked against the balance.
type stakedAccount struct {
	uow     UnitOfWork
	account *models.Account
}

// playGame runs the shared flow around every single-shot game: lock the
// player, open a transaction, ensure the account exists and can cover
// the stake, then let resolve draw and settle the round. resolve must
// apply its own delta through the ledger helpers.
func (s *gameService) playGame(ctx context.Context, userID int64, stake int64, resolve func(sa *stakedAccount) error) error {
	if stake <= 0 {
		return fmt.Errorf("stake must be positive: %w", ErrInvalidInput)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return err
	}
	if account.Balance < stake {
		return fmt.Errorf("have %d, need %d: %w", account.Balance, stake, ErrInsufficientFunds)
	}

	if err := resolve(&stakedAccount{uow: uow, account: account}); err != nil {
		return err
	}

	if err := uow.AccountRepository().IncrementDraws(ctx, userID); err != nil {
		return fmt.Errorf("failed to increment draws: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// applyGameDelta moves the net result of a resolved round through the
// ledger: wins credit, losses debit, pushes only log. The account's
// in-memory balance is updated to match.
func applyGameDelta(ctx context.Context, sa *stakedAccount, action models.ActionType, delta int64) error {
	switch {
	case delta > 0:
		if err := creditBalance(ctx, sa.uow, sa.account.UserID, delta, action, sa.account.Balance+delta); err != nil {
			return err
		}
	case delta < 0:
		if err := debitBalance(ctx, sa.uow, sa.account.UserID, -delta, action, sa.account.Balance+delta); err != nil {
			return err
		}
	default:
		if err := recordLedgerChange(ctx, sa.uow, sa.account.UserID, action, 0, sa.account.Balance); err != nil {
			return err
		}
	}
	sa.account.Balance += delta
	return nil
}

func (s *gameService) PlayRoulette(ctx context.Context, userID int64, stake int64, choice string) (*models.RouletteResult, error) {
	parsed, err := parseRouletteChoice(choice)
	if err != nil {
		return nil, err
	}

	var result *models.RouletteResult
	err = s.playGame(ctx, userID, stake, func(sa *stakedAccount) error {
		spin := rand.Intn(37)
		won, delta := settleRoulette(s.cfg, stake, parsed, spin)

		if err := applyGameDelta(ctx, sa, models.ActionRoulette, delta); err != nil {
			return err
		}
		level, err := grantExperience(ctx, sa.uow, s.cfg, sa.account, xpRoulette)
		if err != nil {
			return err
		}

		outcome := models.OutcomeLoss
		if won {
			outcome = models.OutcomeWin
		}
		sa.uow.EventBus().Publish(events.GameResolvedEvent{
			UserID:  userID,
			Game:    models.ActionRoulette,
			Outcome: outcome,
			Delta:   delta,
		})

		result = &models.RouletteResult{
			Number:     spin,
			Color:      rouletteColor(spin),
			Choice:     choice,
			Won:        won,
			Delta:      delta,
			NewBalance: sa.account.Balance,
			Level:      level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *gameService) PlaySlots(ctx context.Context, userID int64, stake int64) (*models.SlotsResult, error) {
	var result *models.SlotsResult
	err := s.playGame(ctx, userID, stake, func(sa *stakedAccount) error {
		var reels [3]int
		for i := range reels {
			reels[i] = drawSlotSymbol(rand.Intn(slotReelTotalWeight))
		}
		multiplier, delta := settleSlots(stake, reels)

		if err := applyGameDelta(ctx, sa, models.ActionSlots, delta); err != nil {
			return err
		}
		level, err := grantExperience(ctx, sa.uow, s.cfg, sa.account, xpSlots)
		if err != nil {
			return err
		}

		outcome := models.OutcomeLoss
		if delta > 0 {
			outcome = models.OutcomeWin
		}
		sa.uow.EventBus().Publish(events.GameResolvedEvent{
			UserID:  userID,
			Game:    models.ActionSlots,
			Outcome: outcome,
			Delta:   delta,
		})

		result = &models.SlotsResult{
			Reels: [3]string{
				slotReel[reels[0]].symbol,
				slotReel[reels[1]].symbol,
				slotReel[reels[2]].symbol,
			},
			Multiplier: multiplier,
			Delta:      delta,
			NewBalance: sa.account.Balance,
			Level:      level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *gameService) PlayGuess(ctx context.Context, userID int64, stake int64, pick int) (*models.GuessResult, error) {
	if pick < 1 || pick > 10 {
		return nil, fmt.Errorf("pick must be within 1-10: %w", ErrInvalidInput)
	}

	var result *models.GuessResult
	err := s.playGame(ctx, userID, stake, func(sa *stakedAccount) error {
		drawn := rollDie(10)
		won, delta := settleGuess(s.cfg, stake, pick, drawn)

		if err := applyGameDelta(ctx, sa, models.ActionGuess, delta); err != nil {
			return err
		}
		level, err := grantExperience(ctx, sa.uow, s.cfg, sa.account, xpGuess)
		if err != nil {
			return err
		}

		outcome := models.OutcomeLoss
		if won {
			outcome = models.OutcomeWin
		}
		sa.uow.EventBus().Publish(events.GameResolvedEvent{
			UserID:  userID,
			Game:    models.ActionGuess,
			Outcome: outcome,
			Delta:   delta,
		})

		result = &models.GuessResult{
			Picked:     pick,
			Drawn:      drawn,
			Won:        won,
			Delta:      delta,
			NewBalance: sa.account.Balance,
			Level:      level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *gameService) PlayCoinFlip(ctx context.Context, userID int64, stake int64) (*models.CoinFlipResult, error) {
	var result *models.CoinFlipResult
	err := s.playGame(ctx, userID, stake, func(sa *stakedAccount) error {
		chance := coinFlipChance(s.cfg, sa.account.FlipStreak)
		won := rand.Intn(100) < chance
		delta, newStreak := settleCoinFlip(stake, sa.account.FlipStreak, won)

		if err := applyGameDelta(ctx, sa, models.ActionCoinFlip, delta); err != nil {
			return err
		}
		if err := sa.uow.AccountRepository().SetFlipStreak(ctx, userID, newStreak); err != nil {
			return fmt.Errorf("failed to set flip streak: %w", err)
		}
		sa.account.FlipStreak = newStreak

		level, err := grantExperience(ctx, sa.uow, s.cfg, sa.account, xpCoinFlip)
		if err != nil {
			return err
		}

		outcome := models.OutcomeLoss
		if won {
			outcome = models.OutcomeWin
		}
		sa.uow.EventBus().Publish(events.GameResolvedEvent{
			UserID:  userID,
			Game:    models.ActionCoinFlip,
			Outcome: outcome,
			Delta:   delta,
		})

		result = &models.CoinFlipResult{
			Won:        won,
			ChanceUsed: chance,
			NextChance: coinFlipChance(s.cfg, newStreak),
			Delta:      delta,
			NewBalance: sa.account.Balance,
			Level:      level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *gameService) PlayRPS(ctx context.Context, userID int64, stake int64, choice string) (*models.RPSResult, error) {
	if _, ok := rpsBeats[choice]; !ok {
		return nil, fmt.Errorf("choice must be pierre, feuille or ciseaux: %w", ErrInvalidInput)
	}

	var result *models.RPSResult
	err := s.playGame(ctx, userID, stake, func(sa *stakedAccount) error {
		botChoice := rpsChoices[rand.Intn(len(rpsChoices))]
		outcome, delta := settleRPS(s.cfg, stake, choice, botChoice)

		action := models.ActionRPSLose
		switch outcome {
		case models.OutcomeWin:
			action = models.ActionRPSWin
		case models.OutcomePush:
			action = models.ActionRPSTie
		}

		if err := applyGameDelta(ctx, sa, action, delta); err != nil {
			return err
		}
		level, err := grantExperience(ctx, sa.uow, s.cfg, sa.account, xpRPS)
		if err != nil {
			return err
		}

		sa.uow.EventBus().Publish(events.GameResolvedEvent{
			UserID:  userID,
			Game:    action,
			Outcome: outcome,
			Delta:   delta,
		})

		result = &models.RPSResult{
			PlayerChoice: choice,
			BotChoice:    botChoice,
			Outcome:      outcome,
			Delta:        delta,
			NewBalance:   sa.account.Balance,
			Level:        level,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
