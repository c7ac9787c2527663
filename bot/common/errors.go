package common

import (
	"errors"
	"fmt"

	"coinsbot/service"
)

// UserErrorMessage maps a service error to the message shown to the
// player. User-caused rejections keep their descriptive text; anything
// else is reported generically so storage details never leak into chat.
func UserErrorMessage(err error) (string, bool) {
	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return fmt.Sprintf("⏳ You can use this again in **%s**.", FormatDuration(cooldown.Remaining)), true
	}

	if service.IsUserError(err) {
		return "❌ " + rootMessage(err), true
	}

	return "Something went wrong. Please try again.", false
}

// rootMessage strips the wrapped sentinel suffix so the player sees
// "stake must be positive" rather than "...: invalid input".
func rootMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		service.ErrInvalidInput,
		service.ErrInsufficientFunds,
		service.ErrPermissionDenied,
		service.ErrStateConflict,
		service.ErrNotFound,
	} {
		suffix := ": " + sentinel.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}
