package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "EUMENIDES_CONFIG"
	databaseDSNEnv      = "DATABASE_DSN"
	apiAddrEnv          = "API_ADDR"
	exportDirEnv        = "EUMENIDES_EXPORT_DIR"
	exportKeyEnv        = "EXPORT_KEY"
	exportHMACKeyEnv    = "EXPORT_HMAC_KEY"
	pollIntervalEnv     = "POLL_INTERVAL_SECONDS"
	riskThresholdEnv    = "RISK_THRESHOLD"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	defaultExportDir    = "/app/secure_exports"
	defaultPollInterval = 30
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	API           APIConfig          `yaml:"api"`
	Crawler       CrawlerConfig      `yaml:"crawler"`
	Risk          RiskConfig         `yaml:"risk"`
	Export        ExportConfig       `yaml:"export"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN keeps
// the process on the in-memory repository (development mode).
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// APIConfig describes the listing API listener.
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// CrawlerConfig defines what the ingestion worker polls and how often.
type CrawlerConfig struct {
	Platform            string   `yaml:"platform"`
	Seeds               []string `yaml:"seeds"`
	PollIntervalSeconds int      `yaml:"pollIntervalSeconds"`
	HandleDelayMillis   int      `yaml:"handleDelayMillis"`
}

// PollInterval resolves the poll interval as a duration.
func (c CrawlerConfig) PollInterval() time.Duration {
	seconds := c.PollIntervalSeconds
	if seconds <= 0 {
		seconds = defaultPollInterval
	}
	return time.Duration(seconds) * time.Second
}

// HandleDelay resolves the pause between consecutive handles in one pass.
func (c CrawlerConfig) HandleDelay() time.Duration {
	return time.Duration(c.HandleDelayMillis) * time.Millisecond
}

// RiskConfig carries the flag threshold.
type RiskConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// ExportConfig wires the secure export subscriber. Keys are hex-encoded
// secrets provisioned out-of-band via environment, never from the file.
type ExportConfig struct {
	Dir     string `yaml:"dir"`
	Key     string `yaml:"-"`
	HMACKey string `yaml:"-"`
	Contact string `yaml:"contact"`
}

// NotificationConfig encapsulates outbound alert channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send alert messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(apiAddrEnv); v != "" {
		c.API.Addr = v
	}

	if v := os.Getenv(exportDirEnv); v != "" {
		c.Export.Dir = v
	}

	if v := os.Getenv(exportKeyEnv); v != "" {
		c.Export.Key = v
	}

	if v := os.Getenv(exportHMACKeyEnv); v != "" {
		c.Export.HMACKey = v
	}

	if v := os.Getenv(pollIntervalEnv); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.Crawler.PollIntervalSeconds = seconds
		}
	}

	if v := os.Getenv(riskThresholdEnv); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil && threshold > 0 {
			c.Risk.Threshold = threshold
		}
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.API.Addr != "" {
		base.API = override.API
	}

	if override.Crawler.Platform != "" {
		base.Crawler.Platform = override.Crawler.Platform
	}
	if len(override.Crawler.Seeds) > 0 {
		base.Crawler.Seeds = override.Crawler.Seeds
	}
	if override.Crawler.PollIntervalSeconds > 0 {
		base.Crawler.PollIntervalSeconds = override.Crawler.PollIntervalSeconds
	}
	if override.Crawler.HandleDelayMillis > 0 {
		base.Crawler.HandleDelayMillis = override.Crawler.HandleDelayMillis
	}

	if override.Risk.Threshold > 0 {
		base.Risk.Threshold = override.Risk.Threshold
	}

	if override.Export.Dir != "" {
		base.Export.Dir = override.Export.Dir
	}
	if override.Export.Contact != "" {
		base.Export.Contact = override.Export.Contact
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{DSN: ""},
		API:      APIConfig{Addr: ":8000"},
		Crawler: CrawlerConfig{
			Platform:            "telegram",
			PollIntervalSeconds: defaultPollInterval,
			HandleDelayMillis:   800,
		},
		Risk:   RiskConfig{Threshold: 0.2},
		Export: ExportConfig{Dir: defaultExportDir},
	}
}
