package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors classifying user-facing rejections. Every mutating
// operation validates against these before touching the store, so a
// rejection never leaves a partial effect. Anything not wrapping one of
// these is a storage/system failure and should be reported generically.
var (
	// ErrInvalidInput covers non-positive stakes, out-of-range choices
	// and malformed selections.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientFunds covers stakes, gifts, deposits and
	// withdrawals exceeding the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPermissionDenied covers role-gated clan actions attempted by
	// an ineligible member.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStateConflict covers acting on finished sessions, duplicate
	// clan names, duplicate memberships and mod-slot exhaustion.
	ErrStateConflict = errors.New("state conflict")

	// ErrNotFound covers missing clans, invites and game sessions.
	ErrNotFound = errors.New("not found")
)

// CooldownError rejects a timed reward claim that is still throttled,
// carrying the remaining wait so the caller can report it.
type CooldownError struct {
	Key       string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Key, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error {
	return ErrStateConflict
}

// IsUserError reports whether err belongs to the recoverable,
// user-caused taxonomy rather than a storage or system failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrStateConflict) ||
		errors.Is(err, ErrNotFound)
}
