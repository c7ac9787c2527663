package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"coinsbot/config"
	"coinsbot/events"
	"coinsbot/models"
)

// minesSession is the in-memory state of one minesweeper game: a 3x3
// grid (cells 1-9) hiding a single mine. The stake is escrowed at
// start.
type minesSession struct {
	bet       int64
	minePos   int
	revealed  map[int]bool
	safeCount int
}

const minesGridCells = 9

func (m *minesSession) revealedCells() []int {
	cells := make([]int, 0, len(m.revealed))
	for c := range m.revealed {
		cells = append(cells, c)
	}
	sort.Ints(cells)
	return cells
}

// minesCashoutMultiplier returns the running cashout multiplier after n
// safe reveals.
func minesCashoutMultiplier(cfg *config.Config, safeCount int) float64 {
	idx := safeCount - 1
	if idx >= len(cfg.MinesMultipliers) {
		idx = len(cfg.MinesMultipliers) - 1
	}
	return cfg.MinesMultipliers[idx]
}

// minesPayout converts a multiplier into a cashout amount, truncating
// like the original table.
func minesPayout(bet int64, mult float64) int64 {
	return int64(float64(bet) * mult)
}

type minesService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	locks      *AccountLocks
	sessions   *SessionStore
}

// NewMinesService creates a new minesweeper service
func NewMinesService(uowFactory UnitOfWorkFactory, cfg *config.Config, locks *AccountLocks, sessions *SessionStore) MinesService {
	return &minesService{
		uowFactory: uowFactory,
		cfg:        cfg,
		locks:      locks,
		sessions:   sessions,
	}
}

// Start escrows the stake and opens a session. The stake is gone from
// the balance immediately; hitting the mine or timing out forfeits it.
func (s *minesService) Start(ctx context.Context, userID int64, stake int64) (*models.MinesResult, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive: %w", ErrInvalidInput)
	}

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
	if account.Balance < stake {
		return nil, fmt.Errorf("have %d, need %d: %w", account.Balance, stake, ErrInsufficientFunds)
	}

	game := &minesSession{
		bet:      stake,
		minePos:  1 + rand.Intn(minesGridCells),
		revealed: make(map[int]bool),
	}
	if err := s.sessions.put(&session{
		userID:   userID,
		kind:     sessionKindMines,
		deadline: time.Now().Add(s.cfg.MinesTimeout),
		data:     game,
	}); err != nil {
		return nil, err
	}

	if err := debitBalance(ctx, uow, userID, stake, models.ActionMinesBet, account.Balance-stake); err != nil {
		s.sessions.remove(userID)
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		s.sessions.remove(userID)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.MinesResult{
		Bet:        stake,
		Revealed:   []int{},
		Outcome:    models.OutcomeOngoing,
		NewBalance: account.Balance - stake,
	}, nil
}

// Reveal opens a cell. The mine ends the session as a loss; the 8th
// safe reveal auto-resolves as a full clear at the capped multiplier.
func (s *minesService) Reveal(ctx context.Context, userID int64, cell int) (*models.MinesResult, error) {
	if cell < 1 || cell > minesGridCells {
		return nil, fmt.Errorf("cell must be within 1-9: %w", ErrInvalidInput)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	sess, err := s.sessions.get(userID, sessionKindMines)
	if err != nil {
		return nil, err
	}
	game := sess.data.(*minesSession)

	if game.revealed[cell] {
		return nil, fmt.Errorf("cell %d is already revealed: %w", cell, ErrStateConflict)
	}
	game.revealed[cell] = true

	if cell == game.minePos {
		result, err := s.resolveMines(ctx, userID, game, models.OutcomeLoss)
		if err != nil {
			// The reveal is abandoned with the failed settlement so
			// the session survives for a retry.
			delete(game.revealed, cell)
			return nil, err
		}
		s.sessions.remove(userID)
		return result, nil
	}

	game.safeCount++
	if game.safeCount == minesGridCells-1 {
		result, err := s.resolveMines(ctx, userID, game, models.OutcomeFullClear)
		if err != nil {
			delete(game.revealed, cell)
			game.safeCount--
			return nil, err
		}
		s.sessions.remove(userID)
		return result, nil
	}

	mult := minesCashoutMultiplier(s.cfg, game.safeCount)
	return &models.MinesResult{
		Bet:        game.bet,
		Revealed:   game.revealedCells(),
		SafeCount:  game.safeCount,
		Multiplier: mult,
		Payout:     minesPayout(game.bet, mult),
		Outcome:    models.OutcomeOngoing,
	}, nil
}

// Claim cashes out at the multiplier for the current safe count.
func (s *minesService) Claim(ctx context.Context, userID int64) (*models.MinesResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	sess, err := s.sessions.get(userID, sessionKindMines)
	if err != nil {
		return nil, err
	}
	game := sess.data.(*minesSession)

	if game.safeCount == 0 {
		return nil, fmt.Errorf("reveal at least one safe cell before claiming: %w", ErrStateConflict)
	}

	result, err := s.resolveMines(ctx, userID, game, models.OutcomeCashedOut)
	if err != nil {
		return nil, err
	}
	s.sessions.remove(userID)
	return result, nil
}

// resolveMines settles a finished session against the ledger: the stake
// was escrowed at start, so a loss credits nothing while a cashout or
// full clear credits the payout. Wins and losses count as draws; a
// cashout does not. Callers drop the session only after settlement
// succeeds, keeping the escrowed stake claimable across transient
// storage failures.
func (s *minesService) resolveMines(ctx context.Context, userID int64, game *minesSession, outcome models.GameOutcome) (*models.MinesResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}

	var (
		mult    float64
		payout  int64
		action  models.ActionType
		xp      config.RewardRange
		delta   int64
		counted bool
	)
	switch outcome {
	case models.OutcomeLoss:
		xp = xpMinesHit
		delta = -game.bet
		counted = true
	case models.OutcomeFullClear:
		mult = s.cfg.MinesFullClearMult
		payout = minesPayout(game.bet, mult)
		action = models.ActionMinesWin
		xp = xpMinesClear
		delta = payout - game.bet
		counted = true
	case models.OutcomeCashedOut:
		mult = minesCashoutMultiplier(s.cfg, game.safeCount)
		payout = minesPayout(game.bet, mult)
		action = models.ActionMinesClaim
		xp = xpMinesClaim
		delta = payout - game.bet
	}

	if payout > 0 {
		if err := creditBalance(ctx, uow, userID, payout, action, account.Balance+payout); err != nil {
			return nil, err
		}
		account.Balance += payout
	}
	if counted {
		if err := uow.AccountRepository().IncrementDraws(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to increment draws: %w", err)
		}
	}

	level, err := grantExperience(ctx, uow, s.cfg, account, xp)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.GameResolvedEvent{
		UserID:  userID,
		Game:    models.ActionMinesBet,
		Outcome: outcome,
		Delta:   delta,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.MinesResult{
		Bet:           game.bet,
		Revealed:      game.revealedCells(),
		MinePositions: []int{game.minePos},
		SafeCount:     game.safeCount,
		Multiplier:    mult,
		Payout:        payout,
		Outcome:       outcome,
		NewBalance:    account.Balance,
		Level:         level,
	}, nil
}
