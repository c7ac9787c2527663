package cmd

import (
	"fmt"

	"coinsbot/database"
)

// Migrate dispatches the migrate subcommand against the configured
// database.
func Migrate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: coinsbot migrate [up|down|status]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
}
