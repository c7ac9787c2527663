package models

import (
	"time"
)

// Account represents a player's wallet and progression state.
// Accounts are created lazily on first reference and never deleted.
type Account struct {
	UserID     int64     `db:"user_id"`
	Balance    int64     `db:"balance"`
	XP         int64     `db:"xp"`
	Level      int       `db:"level"`
	Draws      int64     `db:"draws"`
	FlipStreak int       `db:"flip_streak"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// XPNeededForLevel returns the experience required to advance past the
// given level: 200 + (L-1)*150.
func XPNeededForLevel(level int) int64 {
	return 200 + int64(level-1)*150
}
