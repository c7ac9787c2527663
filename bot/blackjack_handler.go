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

// bjHandString prints a hand with aces shown as A. The hidden dealer
// card is rendered as "?" while the round is ongoing.
func bjHandString(cards []int, hidden bool) string {
	parts := make([]string, 0, len(cards)+1)
	for _, c := range cards {
		if c == 11 {
			parts = append(parts, "A")
		} else {
			parts = append(parts, fmt.Sprintf("%d", c))
		}
	}
	if hidden {
		parts = append(parts, "?")
	}
	return strings.Join(parts, " ")
}

func blackjackComponents(userID int64) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Hit",
				Style:    discordgo.PrimaryButton,
				CustomID: fmt.Sprintf("bj_hit:%d", userID),
			},
			discordgo.Button{
				Label:    "Stand",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("bj_stand:%d", userID),
			},
		}},
	}
}

func blackjackEmbed(result *models.BlackjackResult) *discordgo.MessageEmbed {
	embed := baseEmbed("Blackjack")

	ongoing := result.Outcome == models.OutcomeOngoing
	playerLine := fmt.Sprintf("%s (**%d**)", bjHandString(result.PlayerHand, false), result.PlayerScore)
	dealerLine := bjHandString(result.DealerHand, ongoing)
	if !ongoing {
		dealerLine = fmt.Sprintf("%s (**%d**)", dealerLine, result.DealerScore)
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Your hand", Value: playerLine, Inline: true},
		{Name: "Dealer", Value: dealerLine, Inline: true},
	}

	switch result.Outcome {
	case models.OutcomeOngoing:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Stake", Value: common.FormatAmount(result.Bet), Inline: false},
		)
	case models.OutcomeWin:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Result", Value: fmt.Sprintf("✅ You won **%s**", common.FormatDelta(result.Delta)), Inline: false},
			&discordgo.MessageEmbedField{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
		)
	case models.OutcomePush:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Result", Value: "🤝 Push, your stake is returned", Inline: false},
			&discordgo.MessageEmbedField{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
		)
	case models.OutcomeLoss:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Result", Value: fmt.Sprintf("❌ You lost **%s**", common.FormatDelta(result.Delta)), Inline: false},
			&discordgo.MessageEmbedField{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
		)
	}

	appendLevelField(embed, result.Level)
	return embed
}

func (b *Bot) handleBlackjackDeal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	stake := commandOptions(i)["stake"].IntValue()

	result, err := b.blackjackService.Deal(ctx, userID, stake)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	var components []discordgo.MessageComponent
	if result.Outcome == models.OutcomeOngoing {
		components = blackjackComponents(userID)
	}

	if err := common.RespondWithEmbed(s, i, blackjackEmbed(result), components, false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleBlackjackHit(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()

	result, err := b.blackjackService.Hit(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	b.updateBlackjackMessage(s, i, userID, result)
}

func (b *Bot) handleBlackjackStand(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()

	result, err := b.blackjackService.Stand(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	b.updateBlackjackMessage(s, i, userID, result)
}

func (b *Bot) updateBlackjackMessage(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64, result *models.BlackjackResult) {
	var components []discordgo.MessageComponent
	if result.Outcome == models.OutcomeOngoing {
		components = blackjackComponents(userID)
	}

	if err := common.UpdateWithEmbed(s, i, blackjackEmbed(result), components); err != nil {
		log.Errorf("Failed to update blackjack message: %v", err)
	}
}
