package models

import (
	"time"
)

// ActionType labels a transaction log entry with the operation that
// produced the balance change.
type ActionType string

const (
	ActionInitial       ActionType = "initial"
	ActionDaily         ActionType = "daily"
	ActionCollect       ActionType = "collect"
	ActionGift          ActionType = "gift"
	ActionGiveSent      ActionType = "give_sent"
	ActionGiveReceived  ActionType = "give_received"
	ActionLevelBonus    ActionType = "level_bonus"
	ActionRoulette      ActionType = "roulette"
	ActionSlots         ActionType = "slots"
	ActionGuess         ActionType = "guess"
	ActionCoinFlip      ActionType = "coinflip"
	ActionRPSWin        ActionType = "rps_win"
	ActionRPSTie        ActionType = "rps_tie"
	ActionRPSLose       ActionType = "rps_lose"
	ActionMinesBet      ActionType = "mines_bet"
	ActionMinesClaim    ActionType = "mines_claim"
	ActionMinesWin      ActionType = "mines_win"
	ActionBlackjackWin  ActionType = "blackjack_win"
	ActionBlackjackLose ActionType = "blackjack_lose"
	ActionBlackjackPush ActionType = "blackjack_push"
	ActionBlackjack21   ActionType = "blackjack_natural"
	ActionClanDeposit   ActionType = "clan_deposit"
	ActionClanWithdraw  ActionType = "clan_withdraw"
)

// TransactionLogEntry is an append-only audit record of a balance change.
// Entries are write-once and never read back by core operations.
type TransactionLogEntry struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	Action    ActionType `db:"action"`
	Delta     int64      `db:"delta"`
	CreatedAt time.Time  `db:"created_at"`
}
