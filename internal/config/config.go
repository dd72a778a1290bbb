package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"txnrisk/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig          `mapstructure:"app"`
	Logging  logging.Config     `mapstructure:"logging"`
	Database DatabaseConfig     `mapstructure:"database"`
	Risk     RiskConfig         `mapstructure:"risk"`
	Rates    map[string]float64 `mapstructure:"rates"`
	Alerting AlertingConfig     `mapstructure:"alerting"`
	Watch    WatchConfig        `mapstructure:"watch"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity. An empty DSN keeps the
// application on the in-memory stores.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RiskConfig carries scoring defaults applied when a user has no stored
// profile, plus the merchant category keyword list.
type RiskConfig struct {
	ReferenceCurrency string   `mapstructure:"reference_currency"`
	MonthlyBudget     float64  `mapstructure:"monthly_budget"`
	DailyLimit        float64  `mapstructure:"daily_limit"`
	RiskTolerance     string   `mapstructure:"risk_tolerance"`
	RiskThreshold     int      `mapstructure:"risk_threshold"`
	BudgetAlerts      bool     `mapstructure:"budget_alerts"`
	HighRiskKeywords  []string `mapstructure:"high_risk_keywords"`
	BatchWorkers      int      `mapstructure:"batch_workers"`
}

// AlertingConfig defines budget alert thresholds and routing.
type AlertingConfig struct {
	Enabled    bool           `mapstructure:"enabled"`
	MonthlyPct float64        `mapstructure:"monthly_pct"`
	DailyPct   float64        `mapstructure:"daily_pct"`
	Cooldown   time.Duration  `mapstructure:"cooldown"`
	Channels   []string       `mapstructure:"channels"`
	Telegram   TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram delivery channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// WatchConfig governs the budget watch loop cadence.
type WatchConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TXNRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "txnrisk")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("risk.reference_currency", "USD")
	v.SetDefault("risk.monthly_budget", 5000.0)
	v.SetDefault("risk.daily_limit", 500.0)
	v.SetDefault("risk.risk_tolerance", "medium")
	v.SetDefault("risk.risk_threshold", 70)
	v.SetDefault("risk.budget_alerts", true)
	v.SetDefault("risk.batch_workers", 4)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.monthly_pct", 80.0)
	v.SetDefault("alerting.daily_pct", 80.0)
	v.SetDefault("alerting.cooldown", "6h")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("watch.interval", "15m")
	v.SetDefault("watch.align_to_interval", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.advisory_lock_key", int64(0x7478726b))
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Risk.MonthlyBudget <= 0 {
		return fmt.Errorf("risk.monthly_budget must be greater than zero")
	}
	if c.Risk.DailyLimit <= 0 {
		return fmt.Errorf("risk.daily_limit must be greater than zero")
	}
	if c.Risk.RiskThreshold < 0 || c.Risk.RiskThreshold > 100 {
		return fmt.Errorf("risk.risk_threshold must be within [0,100]")
	}
	switch c.Risk.RiskTolerance {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("risk.risk_tolerance must be one of low, medium, high")
	}
	for code, rate := range c.Rates {
		if rate <= 0 {
			return fmt.Errorf("rates.%s must be greater than zero", code)
		}
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Alerting.MonthlyPct < 0 || c.Alerting.DailyPct < 0 {
		return fmt.Errorf("alerting thresholds cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}
