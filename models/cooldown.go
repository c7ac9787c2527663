package models

import (
	"time"
)

// Cooldown keys for throttled reward commands.
const (
	CooldownKeyDaily   = "daily"
	CooldownKeyCollect = "collect"
	CooldownKeyGift    = "gift"
)

// CooldownTimer stores the next-eligible time for a throttled action.
// A missing row means the action has never been used and is eligible now.
type CooldownTimer struct {
	UserID int64     `db:"user_id"`
	Key    string    `db:"key"`
	NextAt time.Time `db:"next_at"`
}
