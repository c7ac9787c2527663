package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coinsbot/bot/common"
	"coinsbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const embedColor = 0xF1C40F

func baseEmbed(title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: embedColor,
	}
}

func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// cooldownLine renders a remaining cooldown, or readiness.
func cooldownLine(remaining time.Duration) string {
	if remaining <= 0 {
		return "✅ ready"
	}
	return "⏳ " + common.FormatDuration(remaining)
}

// commandOptions flattens a command's options by name.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		log.Errorf("Error parsing user ID: %v", err)
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	account, err := b.economyService.GetOrCreateAccount(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed("Balance")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Coins", Value: common.FormatAmount(account.Balance), Inline: true},
		{Name: "Level", Value: fmt.Sprintf("%d", account.Level), Inline: true},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	profile, err := b.economyService.Profile(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	clanLine := "No clan"
	if profile.ClanName != "" {
		clanLine = fmt.Sprintf("%s (%s)", profile.ClanName, profile.ClanRole)
	}

	embed := baseEmbed("Profile")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Coins", Value: common.FormatAmount(profile.Account.Balance), Inline: true},
		{Name: "Level", Value: fmt.Sprintf("%d", profile.Account.Level), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d / %d", profile.Account.XP, profile.XPNeeded), Inline: true},
		{Name: "Draws", Value: fmt.Sprintf("%d", profile.Account.Draws), Inline: true},
		{Name: "Clan", Value: clanLine, Inline: false},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleTimedReward(s, i, "Daily reward", b.economyService.ClaimDaily)
}

func (b *Bot) handleCollect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleTimedReward(s, i, "Collect", b.economyService.ClaimCollect)
}

func (b *Bot) handleGift(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleTimedReward(s, i, "Gift", b.economyService.ClaimGift)
}

func (b *Bot) handleTimedReward(s *discordgo.Session, i *discordgo.InteractionCreate, title string, claim func(context.Context, int64) (*models.RewardResult, error)) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := claim(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed(title)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Reward", Value: common.FormatDelta(result.Reward), Inline: true},
		{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: true},
	}
	appendLevelField(embed, result.Level)

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

// appendLevelField adds a level-up field when an action leveled the
// player up.
func appendLevelField(embed *discordgo.MessageEmbed, level models.LevelResult) {
	if !level.LeveledUp {
		return
	}
	value := fmt.Sprintf("🎉 Level **%d**", level.Level)
	if level.Bonus > 0 {
		value += fmt.Sprintf(" (bonus %s)", common.FormatDelta(level.Bonus))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "Level up", Value: value, Inline: false,
	})
}

func (b *Bot) handleTimer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	status, err := b.economyService.Cooldowns(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed("Cooldowns")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Daily", Value: cooldownLine(status.Daily), Inline: true},
		{Name: "Collect", Value: cooldownLine(status.Collect), Inline: true},
		{Name: "Gift", Value: cooldownLine(status.Gift), Inline: true},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := commandOptions(i)
	target := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	targetID, err := parseSnowflake(target.ID)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.economyService.Give(ctx, userID, targetID, amount)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed("Give")
	embed.Description = fmt.Sprintf("Gave %s to <@%d>", common.FormatAmount(result.Amount), targetID)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Your balance", Value: common.FormatAmount(result.SenderBalance), Inline: true},
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	limit := 10
	if opt, ok := commandOptions(i)["limit"]; ok {
		limit = int(opt.IntValue())
	}

	entries, err := b.economyService.TopPlayers(ctx, limit)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}
	if len(entries) == 0 {
		respondEphemeral(s, i, "No accounts yet.")
		return
	}

	var sb strings.Builder
	for rank, e := range entries {
		fmt.Fprintf(&sb, "**%d.** <@%d> — %s\n", rank+1, e.UserID, common.FormatAmount(e.Balance))
	}

	embed := baseEmbed("Richest players")
	embed.Description = sb.String()
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleTopClan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	limit := 10
	if opt, ok := commandOptions(i)["limit"]; ok {
		limit = int(opt.IntValue())
	}

	entries, err := b.clanService.TopClans(ctx, limit)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}
	if len(entries) == 0 {
		respondEphemeral(s, i, "No clans yet.")
		return
	}

	var sb strings.Builder
	for rank, e := range entries {
		fmt.Fprintf(&sb, "**%d.** %s — %s\n", rank+1, e.Name, common.FormatAmount(e.Bank))
	}

	embed := baseEmbed("Top clans")
	embed.Description = sb.String()
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}
