package models

import (
	"time"
)

// LevelResult reports the outcome of an experience grant.
type LevelResult struct {
	Level     int
	XP        int64
	LeveledUp bool
	Bonus     int64
}

// RewardResult is returned by timed reward claims (daily/collect/gift).
type RewardResult struct {
	Reward     int64
	NewBalance int64
	Level      LevelResult
}

// TransferResult is returned by a player-to-player give.
type TransferResult struct {
	Amount           int64
	SenderBalance    int64
	RecipientBalance int64
}

// CooldownStatus reports remaining time per throttled action; zero means
// eligible now.
type CooldownStatus struct {
	Daily   time.Duration
	Collect time.Duration
	Gift    time.Duration
}

// LeaderboardEntry is one row of the player leaderboard.
type LeaderboardEntry struct {
	UserID  int64
	Balance int64
}

// ClanLeaderboardEntry is one row of the clan bank leaderboard.
type ClanLeaderboardEntry struct {
	Name string
	Bank int64
}

// GameOutcome classifies how a game action resolved.
type GameOutcome string

const (
	OutcomeWin       GameOutcome = "win"
	OutcomeLoss      GameOutcome = "loss"
	OutcomePush      GameOutcome = "push"
	OutcomeOngoing   GameOutcome = "ongoing"
	OutcomeCashedOut GameOutcome = "cashed_out"
	OutcomeFullClear GameOutcome = "full_clear"
)

// RouletteResult is the resolved outcome of one roulette spin.
type RouletteResult struct {
	Number     int
	Color      string
	Choice     string
	Won        bool
	Delta      int64
	NewBalance int64
	Level      LevelResult
}

// SlotsResult is the resolved outcome of one slot machine pull.
type SlotsResult struct {
	Reels      [3]string
	Multiplier int64
	Delta      int64
	NewBalance int64
	Level      LevelResult
}

// GuessResult is the resolved outcome of one number-guess round.
type GuessResult struct {
	Picked     int
	Drawn      int
	Won        bool
	Delta      int64
	NewBalance int64
	Level      LevelResult
}

// CoinFlipResult is the resolved outcome of one coin flip, including the
// streak-decayed win chances used and upcoming.
type CoinFlipResult struct {
	Won        bool
	ChanceUsed int
	NextChance int
	Delta      int64
	NewBalance int64
	Level      LevelResult
}

// RPSResult is the resolved outcome of one rock-paper-scissors round.
type RPSResult struct {
	PlayerChoice string
	BotChoice    string
	Outcome      GameOutcome
	Delta        int64
	NewBalance   int64
	Level        LevelResult
}

// MinesResult is the state of a minesweeper session after an action.
// Revealed and MinePositions describe the 3x3 grid (cells 1-9);
// MinePositions is only populated once the session is finished.
type MinesResult struct {
	Bet           int64
	Revealed      []int
	MinePositions []int
	SafeCount     int
	Multiplier    float64
	Payout        int64
	Outcome       GameOutcome
	NewBalance    int64
	Level         LevelResult
}

// BlackjackResult is the state of a blackjack round after an action.
// DealerHand holds only the visible up-card while the round is ongoing.
type BlackjackResult struct {
	Bet         int64
	PlayerHand  []int
	DealerHand  []int
	PlayerScore int
	DealerScore int
	Outcome     GameOutcome
	Delta       int64
	NewBalance  int64
	Level       LevelResult
}

// ProfileResult summarizes an account for the profile card.
type ProfileResult struct {
	Account  *Account
	XPNeeded int64
	ClanName string
	ClanRole ClanRole
	ClanBank int64
}
