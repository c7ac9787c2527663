package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"coinsbot/config"
	"coinsbot/events"
	"coinsbot/models"
)

// bjDeck is the card value multiset drawn from with replacement: 2-9 at
// face value, four ten-valued ranks, ace as 11.
var bjDeck = []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 10, 10, 10, 11}

const (
	bjTarget      = 21
	bjDealerStand = 17
)

func bjDraw() int {
	return bjDeck[rand.Intn(len(bjDeck))]
}

// bjScore sums a hand, demoting aces from 11 to 1 one at a time while
// the total busts.
func bjScore(cards []int) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c
		if c == 11 {
			aces++
		}
	}
	for total > bjTarget && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// bjPlayDealer draws for the dealer until it stands, appending to the
// hand. The dealer never draws on 17 or more, soft or hard.
func bjPlayDealer(dealer []int) []int {
	for bjScore(dealer) < bjDealerStand {
		dealer = append(dealer, bjDraw())
	}
	return dealer
}

// settleBlackjackStand compares final scores after a stand.
func settleBlackjackStand(bet int64, player, dealer int) (outcome models.GameOutcome, delta int64, action models.ActionType) {
	switch {
	case dealer > bjTarget || player > dealer:
		return models.OutcomeWin, bet, models.ActionBlackjackWin
	case player == dealer:
		return models.OutcomePush, 0, models.ActionBlackjackPush
	default:
		return models.OutcomeLoss, -bet, models.ActionBlackjackLose
	}
}

// blackjackSession is the in-memory state of one round. The stake is
// not escrowed; the net delta settles at resolution.
type blackjackSession struct {
	bet    int64
	player []int
	dealer []int
}

type blackjackService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	locks      *AccountLocks
	sessions   *SessionStore
}

// NewBlackjackService creates a new blackjack service
func NewBlackjackService(uowFactory UnitOfWorkFactory, cfg *config.Config, locks *AccountLocks, sessions *SessionStore) BlackjackService {
	return &blackjackService{
		uowFactory: uowFactory,
		cfg:        cfg,
		locks:      locks,
		sessions:   sessions,
	}
}

// Deal starts a round. A natural 21 resolves immediately against the
// dealer's two cards (push on double natural, otherwise 1.5x net) and
// no session is created.
func (s *blackjackService) Deal(ctx context.Context, userID int64, stake int64) (*models.BlackjackResult, error) {
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

	game := &blackjackSession{
		bet:    stake,
		player: []int{bjDraw(), bjDraw()},
		dealer: []int{bjDraw(), bjDraw()},
	}

	if err := uow.AccountRepository().IncrementDraws(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to increment draws: %w", err)
	}

	playerScore := bjScore(game.player)
	if playerScore == bjTarget {
		var (
			outcome models.GameOutcome
			delta   int64
			action  models.ActionType
		)
		if bjScore(game.dealer) == bjTarget {
			outcome, delta, action = models.OutcomePush, 0, models.ActionBlackjackPush
		} else {
			outcome, delta, action = models.OutcomeWin, stake*3/2, models.ActionBlackjack21
		}
		return s.settle(ctx, uow, account, game, outcome, delta, action)
	}

	if err := s.sessions.put(&session{
		userID:   userID,
		kind:     sessionKindBlackjack,
		deadline: time.Now().Add(s.cfg.BlackjackTimeout),
		data:     game,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		s.sessions.remove(userID)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BlackjackResult{
		Bet:         stake,
		PlayerHand:  append([]int(nil), game.player...),
		DealerHand:  []int{game.dealer[0]},
		PlayerScore: playerScore,
		Outcome:     models.OutcomeOngoing,
		NewBalance:  account.Balance,
	}, nil
}

// Hit draws one card for the player; exceeding 21 resolves as a bust
// loss immediately.
func (s *blackjackService) Hit(ctx context.Context, userID int64) (*models.BlackjackResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	sess, err := s.sessions.get(userID, sessionKindBlackjack)
	if err != nil {
		return nil, err
	}
	game := sess.data.(*blackjackSession)

	game.player = append(game.player, bjDraw())
	playerScore := bjScore(game.player)

	if playerScore > bjTarget {
		result, err := s.resolve(ctx, userID, game, models.OutcomeLoss, -game.bet, models.ActionBlackjackLose)
		if err != nil {
			// Undo the draw so the session survives a failed
			// settlement and the hit can be retried.
			game.player = game.player[:len(game.player)-1]
			return nil, err
		}
		s.sessions.remove(userID)
		return result, nil
	}

	return &models.BlackjackResult{
		Bet:         game.bet,
		PlayerHand:  append([]int(nil), game.player...),
		DealerHand:  []int{game.dealer[0]},
		PlayerScore: playerScore,
		Outcome:     models.OutcomeOngoing,
	}, nil
}

// Stand plays out the dealer to 17+ and settles the round.
func (s *blackjackService) Stand(ctx context.Context, userID int64) (*models.BlackjackResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	sess, err := s.sessions.get(userID, sessionKindBlackjack)
	if err != nil {
		return nil, err
	}
	game := sess.data.(*blackjackSession)

	upCards := len(game.dealer)
	game.dealer = bjPlayDealer(game.dealer)
	outcome, delta, action := settleBlackjackStand(game.bet, bjScore(game.player), bjScore(game.dealer))

	result, err := s.resolve(ctx, userID, game, outcome, delta, action)
	if err != nil {
		// Undo the dealer draws; a retried stand replays them.
		game.dealer = game.dealer[:upCards]
		return nil, err
	}
	s.sessions.remove(userID)
	return result, nil
}

// resolve runs a terminal settlement in its own transaction.
func (s *blackjackService) resolve(ctx context.Context, userID int64, game *blackjackSession, outcome models.GameOutcome, delta int64, action models.ActionType) (*models.BlackjackResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, s.cfg, userID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, uow, account, game, outcome, delta, action)
}

// settle applies the net delta, grants experience and commits. A loss
// is clamped to the available balance so a round played down to zero
// still resolves.
func (s *blackjackService) settle(ctx context.Context, uow UnitOfWork, account *models.Account, game *blackjackSession, outcome models.GameOutcome, delta int64, action models.ActionType) (*models.BlackjackResult, error) {
	if delta < 0 && -delta > account.Balance {
		delta = -account.Balance
	}

	sa := &stakedAccount{uow: uow, account: account}
	if err := applyGameDelta(ctx, sa, action, delta); err != nil {
		return nil, err
	}

	level, err := grantExperience(ctx, uow, s.cfg, account, xpBlackjack)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.GameResolvedEvent{
		UserID:  account.UserID,
		Game:    action,
		Outcome: outcome,
		Delta:   delta,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BlackjackResult{
		Bet:         game.bet,
		PlayerHand:  append([]int(nil), game.player...),
		DealerHand:  append([]int(nil), game.dealer...),
		PlayerScore: bjScore(game.player),
		DealerScore: bjScore(game.dealer),
		Outcome:     outcome,
		Delta:       delta,
		NewBalance:  account.Balance,
		Level:       level,
	}, nil
}
