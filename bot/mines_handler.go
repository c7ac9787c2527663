package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"coinsbot/bot/common"
	"coinsbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// minesGrid renders the 3x3 grid: revealed safes as gems, mines as
// skulls once the game is over, everything else hidden.
func minesGrid(result *models.MinesResult) string {
	revealed := make(map[int]bool, len(result.Revealed))
	for _, c := range result.Revealed {
		revealed[c] = true
	}
	mines := make(map[int]bool, len(result.MinePositions))
	for _, c := range result.MinePositions {
		mines[c] = true
	}
	finished := result.Outcome != models.OutcomeOngoing

	var sb strings.Builder
	for cell := 1; cell <= 9; cell++ {
		switch {
		case mines[cell] && (revealed[cell] || finished):
			sb.WriteString("💀")
		case revealed[cell]:
			sb.WriteString("💎")
		default:
			sb.WriteString("❓")
		}
		if cell%3 == 0 {
			if cell < 9 {
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// minesComponents builds the reveal buttons plus the claim row, with
// already-revealed cells disabled.
func minesComponents(userID int64, result *models.MinesResult) []discordgo.MessageComponent {
	revealed := make(map[int]bool, len(result.Revealed))
	for _, c := range result.Revealed {
		revealed[c] = true
	}

	var rows []discordgo.MessageComponent
	for row := 0; row < 3; row++ {
		var buttons []discordgo.MessageComponent
		for col := 0; col < 3; col++ {
			cell := row*3 + col + 1
			buttons = append(buttons, discordgo.Button{
				Label:    strconv.Itoa(cell),
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("mines_reveal_%d:%d", cell, userID),
				Disabled: revealed[cell],
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}

	rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Claim",
			Style:    discordgo.SuccessButton,
			CustomID: fmt.Sprintf("mines_claim:%d", userID),
			Disabled: result.SafeCount == 0,
		},
	}})

	return rows
}

func minesEmbed(result *models.MinesResult) *discordgo.MessageEmbed {
	embed := baseEmbed("Minesweeper")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Grid", Value: minesGrid(result), Inline: false},
	}

	switch result.Outcome {
	case models.OutcomeOngoing:
		if result.SafeCount > 0 {
			embed.Fields = append(embed.Fields,
				&discordgo.MessageEmbedField{Name: "Safes found", Value: fmt.Sprintf("%d/8", result.SafeCount), Inline: true},
				&discordgo.MessageEmbedField{Name: "Cashout", Value: fmt.Sprintf("x%.1f (%s)", result.Multiplier, common.FormatAmount(result.Payout)), Inline: true},
			)
		} else {
			embed.Fields = append(embed.Fields,
				&discordgo.MessageEmbedField{Name: "Stake", Value: common.FormatAmount(result.Bet), Inline: true},
			)
		}
	case models.OutcomeLoss:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "💥 Mine hit", Value: fmt.Sprintf("You lost your stake of **%s**", common.FormatAmount(result.Bet)), Inline: false},
			&discordgo.MessageEmbedField{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
		)
	case models.OutcomeCashedOut:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Safes found", Value: fmt.Sprintf("%d/8", result.SafeCount), Inline: true},
			&discordgo.MessageEmbedField{Name: "Claimed", Value: fmt.Sprintf("x%.1f — **%s**", result.Multiplier, common.FormatDelta(result.Payout)), Inline: true},
			&discordgo.MessageEmbedField{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
		)
	case models.OutcomeFullClear:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "🎉 Full clear", Value: fmt.Sprintf("x%.1f — **%s**", result.Multiplier, common.FormatDelta(result.Payout)), Inline: false},
			&discordgo.MessageEmbedField{Name: "Balance", Value: common.FormatAmount(result.NewBalance), Inline: false},
		)
	}

	appendLevelField(embed, result.Level)
	return embed
}

func (b *Bot) handleMinesStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	stake := commandOptions(i)["stake"].IntValue()

	result, err := b.minesService.Start(ctx, userID, stake)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	if err := common.RespondWithEmbed(s, i, minesEmbed(result), minesComponents(userID, result), false); err != nil {
		log.Errorf("Failed to respond: %v", err)
	}
}

func (b *Bot) handleMinesReveal(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64, cellStr string) {
	ctx := context.Background()

	cell, err := strconv.Atoi(cellStr)
	if err != nil {
		respondEphemeral(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.minesService.Reveal(ctx, userID, cell)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	b.updateMinesMessage(s, i, userID, result)
}

func (b *Bot) handleMinesClaim(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64) {
	ctx := context.Background()

	result, err := b.minesService.Claim(ctx, userID)
	if err != nil {
		respondServiceError(s, i, err)
		return
	}

	b.updateMinesMessage(s, i, userID, result)
}

func (b *Bot) updateMinesMessage(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64, result *models.MinesResult) {
	var components []discordgo.MessageComponent
	if result.Outcome == models.OutcomeOngoing {
		components = minesComponents(userID, result)
	}

	if err := common.UpdateWithEmbed(s, i, minesEmbed(result), components); err != nil {
		log.Errorf("Failed to update mines message: %v", err)
	}
}
