package common

import (
	"fmt"
	"strings"
	"time"
)

// CurrencyEmoji decorates every amount shown to players.
const CurrencyEmoji = "🪙"

// FormatBalance formats a currency amount with thousand separators
func FormatBalance(balance int64) string {
	str := fmt.Sprintf("%d", balance)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n > 3 {
		var result strings.Builder
		for i, digit := range str {
			if i > 0 && (n-i)%3 == 0 {
				result.WriteRune(',')
			}
			result.WriteRune(digit)
		}
		str = result.String()
	}

	if negative {
		return "-" + str
	}
	return str
}

// FormatAmount renders an amount with the currency emoji
func FormatAmount(amount int64) string {
	return fmt.Sprintf("%s %s", FormatBalance(amount), CurrencyEmoji)
}

// FormatDelta renders a signed net change with the currency emoji
func FormatDelta(delta int64) string {
	if delta >= 0 {
		return fmt.Sprintf("+%s %s", FormatBalance(delta), CurrencyEmoji)
	}
	return fmt.Sprintf("-%s %s", FormatBalance(-delta), CurrencyEmoji)
}

// FormatDuration renders a duration as "1h 05m 12s", dropping leading
// zero components
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
