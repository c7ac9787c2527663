package bot

import (
	"context"
	"fmt"

	"coinsbot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleClanCommand dispatches the /clan subcommands.
func (b *Bot) handleClanCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	sub := i.ApplicationCommandData().Options[0]
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		opts[opt.Name] = opt
	}

	targetID := func() (int64, bool) {
		opt, ok := opts["user"]
		if !ok {
			return 0, false
		}
		id, err := parseSnowflake(opt.UserValue(s).ID)
		if err != nil {
			return 0, false
		}
		return id, true
	}

	switch sub.Name {
	case "create":
		clan, err := b.clanService.Create(ctx, userID, opts["name"].StringValue())
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("Clan **%s** created. You are the owner.", clan.Name))

	case "invite":
		id, ok := targetID()
		if !ok {
			respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		clan, err := b.clanService.Invite(ctx, userID, id)
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("<@%d> has been invited to **%s**. They can join with `/clan accept`.", id, clan.Name))

	case "accept":
		clan, err := b.clanService.Accept(ctx, userID)
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("Welcome to **%s**!", clan.Name))

	case "leave":
		if err := b.clanService.Leave(ctx, userID); err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, "You left your clan.")

	case "info":
		b.handleClanInfo(ctx, s, i, userID)

	case "deposit":
		result, err := b.clanService.Deposit(ctx, userID, opts["amount"].IntValue())
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("Deposited **%s**. Clan bank: %s, your balance: %s.",
			common.FormatAmount(result.Amount), common.FormatAmount(result.Bank), common.FormatAmount(result.NewBalance)))

	case "withdraw":
		result, err := b.clanService.Withdraw(ctx, userID, opts["amount"].IntValue())
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("Withdrew **%s**. Clan bank: %s, your balance: %s.",
			common.FormatAmount(result.Amount), common.FormatAmount(result.Bank), common.FormatAmount(result.NewBalance)))

	case "setmod":
		id, ok := targetID()
		if !ok {
			respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		if _, err := b.clanService.SetMod(ctx, userID, id); err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("<@%d> is now a mod.", id))

	case "unmod":
		id, ok := targetID()
		if !ok {
			respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		if _, err := b.clanService.UnsetMod(ctx, userID, id); err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("<@%d> is no longer a mod.", id))

	case "transfer":
		id, ok := targetID()
		if !ok {
			respondEphemeral(s, i, "Unable to process request. Please try again.")
			return
		}
		clan, err := b.clanService.TransferOwnership(ctx, userID, id)
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("<@%d> now owns **%s**.", id, clan.Name))

	case "rename":
		clan, err := b.clanService.Rename(ctx, userID, opts["name"].StringValue())
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("Your clan is now called **%s**.", clan.Name))

	case "delete":
		clan, err := b.clanService.Delete(ctx, userID)
		if err != nil {
			respondServiceError(s, i, err)
			return
		}
		b.respondClanMessage(s, i, fmt.Sprintf("Clan **%s** has been deleted.", clan.Name))
	}
}

func (b *Bot) handleClanInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	info, err := b.clanService.Info(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed(info.Clan.Name)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Owner", Value: fmt.Sprintf("<@%d>", info.Clan.OwnerID), Inline: true},
		{Name: "Members", Value: fmt.Sprintf("%d (%d mods)", info.MemberCount, info.ModCount), Inline: true},
		{Name: "Bank", Value: common.FormatAmount(info.Clan.Bank), Inline: true},
		{Name: "Your role", Value: string(info.CallerRole), Inline: true},
		{Name: "Created", Value: info.Clan.CreatedAt.Format("2006-01-02"), Inline: true},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) respondClanMessage(s *discordgo.Session, i *discordgo.InteractionCreate, description string) {
	embed := baseEmbed("Clan")
	embed.Description = description
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}
