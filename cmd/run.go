package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"coinsbot/bot"
	"coinsbot/config"
	"coinsbot/database"
	"coinsbot/events"
	"coinsbot/repository"
	"coinsbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting coins bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	locks := service.NewAccountLocks()
	sessions := service.NewSessionStore(30 * time.Second)
	economyService := service.NewEconomyService(uowFactory, cfg, locks)
	gameService := service.NewGameService(uowFactory, cfg, locks)
	minesService := service.NewMinesService(uowFactory, cfg, locks, sessions)
	blackjackService := service.NewBlackjackService(uowFactory, cfg, locks, sessions)
	clanService := service.NewClanService(uowFactory, cfg, locks)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, economyService, gameService, minesService, blackjackService, clanService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Stop the session janitor
	sessions.Stop()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
