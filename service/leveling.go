package service

import (
	"coinsbot/config"
)

// applyExperience adds gain to an account's progression and resolves
// level-ups. Leftover experience carries forward and may cascade further
// level-ups; a flat currency bonus accrues for every new level that is a
// multiple of cfg.LevelBonusEvery. Deterministic given its inputs.
func applyExperience(cfg *config.Config, level int, xp int64, gain int64) (newLevel int, newXP int64, leveledUp bool, bonus int64) {
	newLevel = level
	newXP = xp + gain

	for newXP >= xpNeededForLevel(cfg, newLevel) {
		newXP -= xpNeededForLevel(cfg, newLevel)
		newLevel++
		leveledUp = true
		if newLevel%cfg.LevelBonusEvery == 0 {
			bonus += cfg.LevelBonusAmount
		}
	}

	return newLevel, newXP, leveledUp, bonus
}

// xpNeededForLevel returns the experience required to advance past the
// given level.
func xpNeededForLevel(cfg *config.Config, level int) int64 {
	return cfg.LevelXPBase + int64(level-1)*cfg.LevelXPStep
}
