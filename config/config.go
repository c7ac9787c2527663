package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// RewardRange is an inclusive random range for rewards and experience.
type RewardRange struct {
	Min int64
	Max int64
}

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	// Database configuration
	DatabaseURL string `env:"DATABASE_URL"`

	// Economy configuration
	StartingBalance int64 `env:"STARTING_BALANCE" envDefault:"1000"`

	DailyCooldown   time.Duration `env:"DAILY_COOLDOWN" envDefault:"6h"`
	CollectCooldown time.Duration `env:"COLLECT_COOLDOWN" envDefault:"15m"`
	GiftCooldown    time.Duration `env:"GIFT_COOLDOWN" envDefault:"20m"`

	DailyRewardMin   int64 `env:"DAILY_REWARD_MIN" envDefault:"1500"`
	DailyRewardMax   int64 `env:"DAILY_REWARD_MAX" envDefault:"3000"`
	CollectRewardMin int64 `env:"COLLECT_REWARD_MIN" envDefault:"200"`
	CollectRewardMax int64 `env:"COLLECT_REWARD_MAX" envDefault:"900"`
	GiftRewardMin    int64 `env:"GIFT_REWARD_MIN" envDefault:"50"`
	GiftRewardMax    int64 `env:"GIFT_REWARD_MAX" envDefault:"350"`

	// Leveling: threshold for level L is XPBase + (L-1)*XPStep, with a
	// flat currency bonus every LevelBonusEvery levels.
	LevelXPBase      int64 `env:"LEVEL_XP_BASE" envDefault:"200"`
	LevelXPStep      int64 `env:"LEVEL_XP_STEP" envDefault:"150"`
	LevelBonusEvery  int   `env:"LEVEL_BONUS_EVERY" envDefault:"5"`
	LevelBonusAmount int64 `env:"LEVEL_BONUS_AMOUNT" envDefault:"5000"`

	// Clan configuration
	ClanMaxMods int `env:"CLAN_MAX_MODS" envDefault:"2"`

	// Game configuration: net payout multipliers on the stake
	RouletteColorPayout  int64 `env:"ROULETTE_COLOR_PAYOUT" envDefault:"1"`
	RouletteNumberPayout int64 `env:"ROULETTE_NUMBER_PAYOUT" envDefault:"35"`
	GuessPayout          int64 `env:"GUESS_PAYOUT" envDefault:"3"`
	RPSPayout            int64 `env:"RPS_PAYOUT" envDefault:"1"`

	// Coin flip: win chance starts at BasePct and decays by DecayPct per
	// consecutive win, floored at FloorPct.
	CoinFlipBasePct  int `env:"COINFLIP_BASE_PCT" envDefault:"50"`
	CoinFlipDecayPct int `env:"COINFLIP_DECAY_PCT" envDefault:"1"`
	CoinFlipFloorPct int `env:"COINFLIP_FLOOR_PCT" envDefault:"1"`

	// Mines: cumulative cashout multipliers for 1..8 safe reveals, and
	// the distinct full-clear payout multiplier.
	MinesMultipliers   []float64 `env:"MINES_MULTIPLIERS" envDefault:"0.5,0.9,1.2,1.7,2.2,2.7,3.2,4.0"`
	MinesFullClearMult float64   `env:"MINES_FULL_CLEAR_MULT" envDefault:"3.5"`

	// Session inactivity timeouts
	MinesTimeout     time.Duration `env:"MINES_TIMEOUT" envDefault:"60s"`
	BlackjackTimeout time.Duration `env:"BLACKJACK_TIMEOUT" envDefault:"90s"`

	// Environment: "development", "production" or "test"
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// DailyReward returns the reward range for the daily claim.
func (c *Config) DailyReward() RewardRange {
	return RewardRange{Min: c.DailyRewardMin, Max: c.DailyRewardMax}
}

// CollectReward returns the reward range for the collect claim.
func (c *Config) CollectReward() RewardRange {
	return RewardRange{Min: c.CollectRewardMin, Max: c.CollectRewardMax}
}

// GiftReward returns the reward range for the gift claim.
func (c *Config) GiftReward() RewardRange {
	return RewardRange{Min: c.GiftRewardMin, Max: c.GiftRewardMax}
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	if len(config.MinesMultipliers) == 0 {
		return nil, fmt.Errorf("MINES_MULTIPLIERS must not be empty")
	}

	return config, nil
}
