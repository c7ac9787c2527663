package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func stakeOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "stake",
		Description: "Amount to bet",
		Required:    true,
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "bal",
			Description: "Check your current balance",
		},
		{
			Name:        "profil",
			Description: "Show your profile card",
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "collect",
			Description: "Collect a small reward",
		},
		{
			Name:        "gift",
			Description: "Open a random gift",
		},
		{
			Name:        "timer",
			Description: "Show your reward cooldowns",
		},
		{
			Name:        "give",
			Description: "Give coins to another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to give to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to give",
					Required:    true,
				},
			},
		},
		{
			Name:        "top",
			Description: "Richest players leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Number of players (max 20)",
					Required:    false,
				},
			},
		},
		{
			Name:        "topclan",
			Description: "Clan bank leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Number of clans (max 20)",
					Required:    false,
				},
			},
		},
		{
			Name:        "roulette",
			Description: "Bet on rouge/noir or an exact number",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "choice",
					Description: "rouge, noir or a number 0-36",
					Required:    true,
				},
			},
		},
		{
			Name:        "slots",
			Description: "Pull the slot machine",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
			},
		},
		{
			Name:        "nombre",
			Description: "Guess a number between 1 and 10",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "choice",
					Description: "Your pick (1-10)",
					Required:    true,
				},
			},
		},
		{
			Name:        "cf",
			Description: "Coin flip, win chance decays with your streak",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
			},
		},
		{
			Name:        "rps",
			Description: "Rock-paper-scissors against the bot",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "choice",
					Description: "Your move",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "pierre", Value: "pierre"},
						{Name: "feuille", Value: "feuille"},
						{Name: "ciseaux", Value: "ciseaux"},
					},
				},
			},
		},
		{
			Name:        "mines",
			Description: "Minesweeper 3x3, reveal safes and cash out",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
			},
		},
		{
			Name:        "bj",
			Description: "Play a round of blackjack",
			Options: []*discordgo.ApplicationCommandOption{
				stakeOption(),
			},
		},
		{
			Name:        "clan",
			Description: "Clan commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a clan",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Clan name (3-20 characters)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "invite",
					Description: "Invite a player (owner only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to invite",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "accept",
					Description: "Accept your latest clan invite",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leave",
					Description: "Leave your clan (the owner cannot)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "info",
					Description: "Show your clan",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "deposit",
					Description: "Deposit coins into the clan bank",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount to deposit",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "withdraw",
					Description: "Withdraw from the clan bank (owner/mod)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount to withdraw",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setmod",
					Description: "Promote a member to mod (owner only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Member to promote",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unmod",
					Description: "Demote a mod (owner only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Mod to demote",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "transfer",
					Description: "Transfer ownership (owner only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "New owner",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "rename",
					Description: "Rename your clan (owner only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "New name (3-20 characters)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete your clan (owner only)",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
