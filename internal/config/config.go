package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"CompSim/internal/bonus"
)

// Config holds all application configuration.
type Config struct {
	Engine struct {
		ActivationFee    int64 `yaml:"activation_fee"`
		StrictSponsors   bool  `yaml:"strict_sponsors"`
		SkipReactivation bool  `yaml:"skip_reactivation"`
	} `yaml:"engine"`
	Bonus struct {
		LevelRates       []string `yaml:"level_rates"`
		MatchingBase     string   `yaml:"matching_base"`
		MatchingRates    []string `yaml:"matching_rates"`
		CarRank          int      `yaml:"car_rank"`
		CarBonus         int64    `yaml:"car_bonus"`
		HouseRank        int      `yaml:"house_rank"`
		HouseBonus       int64    `yaml:"house_bonus"`
		SharingRank      int      `yaml:"sharing_rank"`
		SharingRate      string   `yaml:"sharing_rate"`
		SharingUpperRate string   `yaml:"sharing_upper_rate"`
	} `yaml:"bonus"`
	Roster struct {
		Path      string `yaml:"path"`
		OutputDir string `yaml:"output_dir"`
		Generate  struct {
			Members int   `yaml:"members"`
			Tier    int   `yaml:"tier"`
			Layers  []int `yaml:"layers"`
			Seed    int64 `yaml:"seed"`
			Enroll  bool  `yaml:"enroll"`
		} `yaml:"generate"`
	} `yaml:"roster"`
	Schedule struct {
		SeasonCron string `yaml:"season_cron"`
	} `yaml:"schedule"`
	Ledger struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ACTIVATION_FEE"); v != "" {
		var fee int64
		if _, err := fmt.Sscanf(v, "%d", &fee); err == nil {
			cfg.Engine.ActivationFee = fee
		}
	}
	if v := os.Getenv("MATCHING_BASE"); v != "" {
		cfg.Bonus.MatchingBase = strings.ToLower(v)
	}
	if v := os.Getenv("ROSTER_PATH"); v != "" {
		cfg.Roster.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SEASON_CRON"); v != "" {
		cfg.Schedule.SeasonCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Engine.ActivationFee == 0 {
		cfg.Engine.ActivationFee = 20790
	}
	if cfg.Bonus.MatchingBase == "" {
		cfg.Bonus.MatchingBase = string(bonus.MatchOnProduct)
	}
	if cfg.Roster.Path == "" && cfg.Roster.Generate.Members == 0 && len(cfg.Roster.Generate.Layers) == 0 {
		cfg.Roster.Path = "data/nodes.csv"
	}
	if cfg.Roster.OutputDir == "" {
		cfg.Roster.OutputDir = "data/seasons"
	}
	if cfg.Schedule.SeasonCron == "" {
		cfg.Schedule.SeasonCron = "0 0 9 1 1,4,7,10 *"
	}
	if cfg.Ledger.StateFile == "" {
		cfg.Ledger.StateFile = "data/ledger.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/compsim.db"
	}

	return cfg, nil
}

// BonusParams builds the bonus plan, starting from the defaults and
// replacing every value the file sets.
func (c *Config) BonusParams() (bonus.Params, error) {
	p := bonus.DefaultParams()
	b := c.Bonus

	if len(b.LevelRates) > 0 {
		if len(b.LevelRates) != len(p.LevelRates) {
			return p, fmt.Errorf("bonus.level_rates needs %d values, got %d", len(p.LevelRates), len(b.LevelRates))
		}
		for i, s := range b.LevelRates {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return p, fmt.Errorf("bonus.level_rates[%d]: %w", i, err)
			}
			p.LevelRates[i] = d
		}
	}
	if len(b.MatchingRates) > 0 {
		if len(b.MatchingRates) != len(p.MatchingRates) {
			return p, fmt.Errorf("bonus.matching_rates needs %d values, got %d", len(p.MatchingRates), len(b.MatchingRates))
		}
		for i, s := range b.MatchingRates {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return p, fmt.Errorf("bonus.matching_rates[%d]: %w", i, err)
			}
			p.MatchingRates[i] = d
		}
	}
	if b.MatchingBase != "" {
		p.Matching = bonus.MatchingBase(b.MatchingBase)
	}
	if b.CarRank != 0 {
		p.CarRank = b.CarRank
	}
	if b.CarBonus != 0 {
		p.CarBonus = b.CarBonus
	}
	if b.HouseRank != 0 {
		p.HouseRank = b.HouseRank
	}
	if b.HouseBonus != 0 {
		p.HouseBonus = b.HouseBonus
	}
	if b.SharingRank != 0 {
		p.SharingRank = b.SharingRank
	}
	if b.SharingRate != "" {
		d, err := decimal.NewFromString(b.SharingRate)
		if err != nil {
			return p, fmt.Errorf("bonus.sharing_rate: %w", err)
		}
		p.SharingRate = d
	}
	if b.SharingUpperRate != "" {
		d, err := decimal.NewFromString(b.SharingUpperRate)
		if err != nil {
			return p, fmt.Errorf("bonus.sharing_upper_rate: %w", err)
		}
		p.SharingUpperRate = d
	}
	return p, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Engine.ActivationFee <= 0 {
		return fmt.Errorf("engine.activation_fee must be positive")
	}
	p, err := c.BonusParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("bonus: %w", err)
	}
	if c.Roster.Path == "" && c.Roster.Generate.Members <= 0 && len(c.Roster.Generate.Layers) == 0 {
		return fmt.Errorf("roster.path or roster.generate is required")
	}
	return nil
}

// ValidateNotifier checks the Telegram settings needed by the daemon.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
