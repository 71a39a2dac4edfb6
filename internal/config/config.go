package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"MetalBoard/internal/model"
	"MetalBoard/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Data struct {
		Dir          string            `yaml:"dir"`
		Symbols      []string          `yaml:"symbols"`
		YahooSymbols map[string]string `yaml:"yahoo_symbols"`
		HistoryDays  int               `yaml:"history_days"`
	} `yaml:"data"`
	Strategy struct {
		Default   string `yaml:"default"`
		Crossover struct {
			Fast int `yaml:"fast"`
			Slow int `yaml:"slow"`
		} `yaml:"crossover"`
		Breakout struct {
			Fast    int `yaml:"fast"`
			Slow    int `yaml:"slow"`
			BaseLag int `yaml:"base_lag"`
		} `yaml:"breakout"`
		Channel struct {
			Window int `yaml:"window"`
		} `yaml:"channel"`
	} `yaml:"strategy"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	StateFile string `yaml:"state_file"`
	Proxy     string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// baseLagSet distinguishes an explicit base_lag: 0 from an absent key.
	baseLagSet := false

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
		var keys struct {
			Strategy struct {
				Breakout map[string]interface{} `yaml:"breakout"`
			} `yaml:"strategy"`
		}
		if yaml.Unmarshal(data, &keys) == nil {
			_, baseLagSet = keys.Strategy.Breakout["base_lag"]
		}
	}

	_ = godotenv.Load()

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Data.HistoryDays = n
		}
	}

	// Defaults
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "data"
	}
	if len(cfg.Data.Symbols) == 0 {
		cfg.Data.Symbols = []string{"AU.SHF", "AG.SHF", "Au9999.SGE"}
	}
	if cfg.Data.HistoryDays == 0 {
		cfg.Data.HistoryDays = 1500
	}
	if cfg.Strategy.Default == "" {
		cfg.Strategy.Default = string(model.KindCrossover)
	}
	if cfg.Strategy.Crossover.Fast == 0 {
		cfg.Strategy.Crossover.Fast = 10
	}
	if cfg.Strategy.Crossover.Slow == 0 {
		cfg.Strategy.Crossover.Slow = 30
	}
	if cfg.Strategy.Breakout.Fast == 0 {
		cfg.Strategy.Breakout.Fast = 10
	}
	if cfg.Strategy.Breakout.Slow == 0 {
		cfg.Strategy.Breakout.Slow = 30
	}
	if !baseLagSet && cfg.Strategy.Breakout.BaseLag == 0 {
		cfg.Strategy.Breakout.BaseLag = 1
	}
	if cfg.Strategy.Channel.Window == 0 {
		cfg.Strategy.Channel.Window = 20
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/metalboard.db"
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "data/alert_state.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the strategy section is usable.
func (c *Config) Validate() error {
	if _, err := strategy.ParseKind(c.Strategy.Default); err != nil {
		return errors.Wrap(err, "strategy.default")
	}
	for _, k := range []model.StrategyKind{model.KindCrossover, model.KindBreakout, model.KindChannel} {
		if _, err := c.StrategyFor(k); err != nil {
			return errors.Wrapf(err, "strategy.%s", k)
		}
	}
	if c.Data.HistoryDays < 0 {
		return errors.New("data.history_days must not be negative")
	}
	return nil
}

// RequireTelegram checks the fields the serve mode needs.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required")
	}
	return nil
}

// Params returns the configured parameters for a strategy kind.
func (c *Config) Params(kind model.StrategyKind) strategy.Params {
	switch kind {
	case model.KindBreakout:
		return strategy.Params{Fast: c.Strategy.Breakout.Fast, Slow: c.Strategy.Breakout.Slow, BaseLag: c.Strategy.Breakout.BaseLag}
	case model.KindChannel:
		return strategy.Params{Window: c.Strategy.Channel.Window}
	default:
		return strategy.Params{Fast: c.Strategy.Crossover.Fast, Slow: c.Strategy.Crossover.Slow}
	}
}

// StrategyFor builds the configured strategy of the given kind.
func (c *Config) StrategyFor(kind model.StrategyKind) (model.Strategy, error) {
	return strategy.New(kind, c.Params(kind))
}

// DefaultStrategy builds the strategy named by strategy.default.
func (c *Config) DefaultStrategy() (model.Strategy, error) {
	kind, err := strategy.ParseKind(c.Strategy.Default)
	if err != nil {
		return nil, err
	}
	return c.StrategyFor(kind)
}
