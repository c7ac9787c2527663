package bot

import (
	"context"
	"fmt"
	"strings"

	"coinsbot/bot/common"
	"coinsbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func outcomeLine(won bool, delta int64) string {
	if won {
		return fmt.Sprintf("✅ You won **%s**", common.FormatDelta(delta))
	}
	return fmt.Sprintf("❌ You lost **%s**", common.FormatDelta(delta))
}

func (b *Bot) handleRoulette(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := commandOptions(i)
	stake := opts["stake"].IntValue()
	choice := strings.ToLower(strings.TrimSpace(opts["choice"].StringValue()))

	result, err := b.gameService.PlayRoulette(ctx, userID, stake, choice)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed("Roulette")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Spin", Value: fmt.Sprintf("**%d** (%s)", result.Number, result.Color), Inline: true},
		{Name: "Your bet", Value: result.Choice, Inline: true},
		{Name: "Result", Value: outcomeLine(result.Won, result.Delta), Inline: false},
		{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
	}
	appendLevelField(embed, result.Level)

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleSlots(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	stake := commandOptions(i)["stake"].IntValue()

	result, err := b.gameService.PlaySlots(ctx, userID, stake)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	resultLine := outcomeLine(result.Delta > 0, result.Delta)
	if result.Multiplier > 0 {
		resultLine = fmt.Sprintf("✅ x%d — you won **%s**", result.Multiplier, common.FormatDelta(result.Delta))
	}

	embed := baseEmbed("Slots")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Reels", Value: strings.Join(result.Reels[:], " | "), Inline: false},
		{Name: "Result", Value: resultLine, Inline: false},
		{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
	}
	appendLevelField(embed, result.Level)

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleGuess(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := commandOptions(i)
	stake := opts["stake"].IntValue()
	pick := int(opts["choice"].IntValue())

	result, err := b.gameService.PlayGuess(ctx, userID, stake, pick)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed("Number guess")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Drawn", Value: fmt.Sprintf("**%d** (you picked %d)", result.Drawn, result.Picked), Inline: false},
		{Name: "Result", Value: outcomeLine(result.Won, result.Delta), Inline: false},
		{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
	}
	appendLevelField(embed, result.Level)

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleCoinFlip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	stake := commandOptions(i)["stake"].IntValue()

	result, err := b.gameService.PlayCoinFlip(ctx, userID, stake)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	embed := baseEmbed("Coin flip")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Result", Value: outcomeLine(result.Won, result.Delta), Inline: false},
		{Name: "Win chance", Value: fmt.Sprintf("%d%% (next: %d%%)", result.ChanceUsed, result.NextChance), Inline: true},
		{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: true},
	}
	appendLevelField(embed, result.Level)

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleRPS(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	opts := commandOptions(i)
	stake := opts["stake"].IntValue()
	choice := opts["choice"].StringValue()

	result, err := b.gameService.PlayRPS(ctx, userID, stake, choice)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	var resultLine string
	switch result.Outcome {
	case models.OutcomeWin:
		resultLine = outcomeLine(true, result.Delta)
	case models.OutcomePush:
		resultLine = "🤝 Tie, your stake is returned"
	default:
		resultLine = outcomeLine(false, result.Delta)
	}

	embed := baseEmbed("Rock-paper-scissors")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Moves", Value: fmt.Sprintf("You: **%s** — Bot: **%s**", result.PlayerChoice, result.BotChoice), Inline: false},
		{Name: "Result", Value: resultLine, Inline: false},
		{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
	}
	appendLevelField(embed, result.Level)

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}
