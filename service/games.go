package service

import (
	"fmt"
	"math/rand"
	"strconv"

	"coinsbot/config"
	"coinsbot/models"
)

// Roulette colors. The table keeps the original product's French
// vocabulary: players bet on rouge or noir, zero is vert.
const (
	RouletteRouge = "rouge"
	RouletteNoir  = "noir"
	RouletteVert  = "vert"
)

var rouletteRedNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true,
	27: true, 30: true, 32: true, 34: true, 36: true,
}

// rouletteColor returns the pocket color for a number in [0,36].
func rouletteColor(n int) string {
	if n == 0 {
		return RouletteVert
	}
	if rouletteRedNumbers[n] {
		return RouletteRouge
	}
	return RouletteNoir
}

// rouletteChoice is a parsed roulette bet: either a color or an exact
// number.
type rouletteChoice struct {
	color  string
	number int
	exact  bool
}

// parseRouletteChoice validates a raw bet choice.
func parseRouletteChoice(choice string) (rouletteChoice, error) {
	switch choice {
	case RouletteRouge, RouletteNoir:
		return rouletteChoice{color: choice}, nil
	}

	n, err := strconv.Atoi(choice)
	if err != nil {
		return rouletteChoice{}, fmt.Errorf("choice must be rouge, noir or a number 0-36: %w", ErrInvalidInput)
	}
	if n < 0 || n > 36 {
		return rouletteChoice{}, fmt.Errorf("number must be within 0-36: %w", ErrInvalidInput)
	}
	return rouletteChoice{number: n, exact: true}, nil
}

// settleRoulette resolves a bet against a spun number. Color bets pay
// 1:1 net and lose on zero; exact-number bets pay 35:1 net.
func settleRoulette(cfg *config.Config, stake int64, choice rouletteChoice, spin int) (won bool, delta int64) {
	if choice.exact {
		if spin == choice.number {
			return true, stake * cfg.RouletteNumberPayout
		}
		return false, -stake
	}

	if spin != 0 && rouletteColor(spin) == choice.color {
		return true, stake * cfg.RouletteColorPayout
	}
	return false, -stake
}

// slotSymbol is one entry of the weighted slot reel. Payout is the
// total multiplier for three of a kind.
type slotSymbol struct {
	symbol string
	weight int
	payout int64
}

var slotReel = []slotSymbol{
	{"🍒", 5, 4},
	{"🍋", 5, 3},
	{"🔔", 4, 5},
	{"⭐", 3, 6},
	{"💎", 2, 8},
	{"7️⃣", 1, 10},
}

var slotReelTotalWeight = func() int {
	total := 0
	for _, s := range slotReel {
		total += s.weight
	}
	return total
}()

// drawSlotSymbol maps a roll in [0, totalWeight) to a reel index.
func drawSlotSymbol(roll int) int {
	for i, s := range slotReel {
		if roll < s.weight {
			return i
		}
		roll -= s.weight
	}
	return len(slotReel) - 1
}

// settleSlots resolves a pull given three reel indexes. Three of a kind
// pays the symbol's multiplier, any two matching pays 2x total,
// otherwise the stake is lost. The returned delta is net.
func settleSlots(stake int64, reels [3]int) (multiplier int64, delta int64) {
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		multiplier = slotReel[reels[0]].payout
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		multiplier = 2
	}

	if multiplier == 0 {
		return 0, -stake
	}
	return multiplier, stake*multiplier - stake
}

// Rock-paper-scissors choices, in the original product's French
// vocabulary.
const (
	RPSPierre  = "pierre"
	RPSFeuille = "feuille"
	RPSCiseaux = "ciseaux"
)

var rpsChoices = []string{RPSPierre, RPSFeuille, RPSCiseaux}

var rpsBeats = map[string]string{
	RPSPierre:  RPSCiseaux,
	RPSFeuille: RPSPierre,
	RPSCiseaux: RPSFeuille,
}

// settleRPS resolves a round: win pays 1x net, tie refunds, loss
// forfeits the stake.
func settleRPS(cfg *config.Config, stake int64, player, opponent string) (outcome models.GameOutcome, delta int64) {
	switch {
	case rpsBeats[player] == opponent:
		return models.OutcomeWin, stake * cfg.RPSPayout
	case player == opponent:
		return models.OutcomePush, 0
	default:
		return models.OutcomeLoss, -stake
	}
}

// settleGuess resolves a number guess: an exact match pays the
// configured multiple net, otherwise the stake is lost.
func settleGuess(cfg *config.Config, stake int64, pick, drawn int) (won bool, delta int64) {
	if pick == drawn {
		return true, stake * cfg.GuessPayout
	}
	return false, -stake
}

// coinFlipChance returns the win probability in percent for a given
// consecutive-win streak: the base chance decays per win and is floored.
func coinFlipChance(cfg *config.Config, streak int) int {
	chance := cfg.CoinFlipBasePct - streak*cfg.CoinFlipDecayPct
	if chance < cfg.CoinFlipFloorPct {
		chance = cfg.CoinFlipFloorPct
	}
	return chance
}

// settleCoinFlip resolves a flip: a win pays half the stake net and
// extends the streak, a loss forfeits the stake and resets it.
func settleCoinFlip(stake int64, streak int, won bool) (delta int64, newStreak int) {
	if won {
		return stake / 2, streak + 1
	}
	return -stake, 0
}

// rollDie returns a uniform value in [1,n].
func rollDie(n int) int {
	return 1 + rand.Intn(n)
}
