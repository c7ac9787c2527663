package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"coinsbot/bot/common"
	"coinsbot/events"
	"coinsbot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config           Config
	session          *discordgo.Session
	economyService   service.EconomyService
	gameService      service.GameService
	minesService     service.MinesService
	blackjackService service.BlackjackService
	clanService      service.ClanService
	eventBus         *events.Bus
}

func New(config Config, economyService service.EconomyService, gameService service.GameService, minesService service.MinesService, blackjackService service.BlackjackService, clanService service.ClanService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:           config,
		session:          dg,
		economyService:   economyService,
		gameService:      gameService,
		minesService:     minesService,
		blackjackService: blackjackService,
		clanService:      clanService,
		eventBus:         eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleComponents)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	eventBus.Subscribe(events.EventTypeLevelUp, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.LevelUpEvent); ok {
			log.WithFields(log.Fields{
				"userID": e.UserID,
				"level":  e.NewLevel,
				"bonus":  e.Bonus,
			}).Info("Player leveled up")
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "bal":
		b.handleBalance(s, i)
	case "profil":
		b.handleProfile(s, i)
	case "daily":
		b.handleDaily(s, i)
	case "collect":
		b.handleCollect(s, i)
	case "gift":
		b.handleGift(s, i)
	case "timer":
		b.handleTimer(s, i)
	case "give":
		b.handleGive(s, i)
	case "top":
		b.handleTop(s, i)
	case "topclan":
		b.handleTopClan(s, i)
	case "roulette":
		b.handleRoulette(s, i)
	case "slots":
		b.handleSlots(s, i)
	case "nombre":
		b.handleGuess(s, i)
	case "cf":
		b.handleCoinFlip(s, i)
	case "rps":
		b.handleRPS(s, i)
	case "mines":
		b.handleMinesStart(s, i)
	case "bj":
		b.handleBlackjackDeal(s, i)
	case "clan":
		b.handleClanCommand(s, i)
	}
}

// handleComponents routes button presses. Custom IDs carry the owning
// player's ID so only they can act on their own game message.
func (b *Bot) handleComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	action, owner, ok := parseCustomID(customID)
	if !ok {
		return
	}

	userID, err := interactionUserID(i)
	if err != nil {
		log.Errorf("Failed to parse interaction user ID: %v", err)
		return
	}
	if userID != owner {
		respondEphemeral(s, i, "❌ This game is not yours.")
		return
	}

	switch {
	case strings.HasPrefix(action, "mines_reveal_"):
		b.handleMinesReveal(s, i, userID, strings.TrimPrefix(action, "mines_reveal_"))
	case action == "mines_claim":
		b.handleMinesClaim(s, i, userID)
	case action == "bj_hit":
		b.handleBlackjackHit(s, i, userID)
	case action == "bj_stand":
		b.handleBlackjackStand(s, i, userID)
	}
}

// parseCustomID splits "action:ownerID" component IDs.
func parseCustomID(customID string) (action string, owner int64, ok bool) {
	idx := strings.LastIndex(customID, ":")
	if idx < 0 {
		return "", 0, false
	}
	owner, err := strconv.ParseInt(customID[idx+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return customID[:idx], owner, true
}

// interactionUserID extracts the acting user's ID from a guild or DM
// interaction.
func interactionUserID(i *discordgo.InteractionCreate) (int64, error) {
	var raw string
	if i.Member != nil && i.Member.User != nil {
		raw = i.Member.User.ID
	} else if i.User != nil {
		raw = i.User.ID
	} else {
		return 0, fmt.Errorf("interaction has no user")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// respondServiceError reports a failed operation: user-caused
// rejections go back ephemerally with their message, system failures
// are logged and reported generically.
func respondServiceError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	msg, userCaused := common.UserErrorMessage(err)
	if !userCaused {
		log.Errorf("Command failed: %v", err)
	}
	respondEphemeral(s, i, msg)
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if err := common.RespondWithMessage(s, i, content, true); err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}
