package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"coinsbot/cmd"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		return cmd.Migrate(os.Args[2:])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Run(ctx)
}
