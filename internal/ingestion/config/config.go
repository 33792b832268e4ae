package config

import (
	"time"

	"nepse-stock-scryper/pkg/config"
)

// Upsert modes for the market-data write.
const (
	UpsertModeBatch = "batch"
	UpsertModeRow   = "row"
)

// Ingestion holds the ingestion pipeline settings.
type Ingestion struct {
	TimeZone           string        `mapstructure:"time_zone"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	UpsertMode         string        `mapstructure:"upsert_mode"`
	ResolveConcurrency int           `mapstructure:"resolve_concurrency"`
	CompanyCacheTTL    time.Duration `mapstructure:"company_cache_ttl"`
	RunLogSize         int           `mapstructure:"run_log_size"`
}

// Scraper holds the page fetch settings shared by the in-process sources and cmd/scraper.
type Scraper struct {
	URL          string        `mapstructure:"url"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	WaitSelector string        `mapstructure:"wait_selector"`
	Headless     bool          `mapstructure:"headless"`
	ChromePath   string        `mapstructure:"chrome_path"`
}

// Trigger holds the external-process trigger settings.
type Trigger struct {
	Command        string        `mapstructure:"command"`
	Args           []string      `mapstructure:"args"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	IngestURL      string        `mapstructure:"ingest_url"`
	IngestTimeout  time.Duration `mapstructure:"ingest_timeout"`
	MinInterval    time.Duration `mapstructure:"min_interval"`
}

// Schedule holds the optional cron-driven in-process scrape. An empty Cron disables it.
type Schedule struct {
	Cron            string        `mapstructure:"cron"`
	Source          string        `mapstructure:"source"`
	PollingInterval time.Duration `mapstructure:"polling_interval"`
}

// Telegram holds the optional run notification settings.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the ingestion service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Ingestion Ingestion       `mapstructure:"ingestion"`
	Scraper   Scraper         `mapstructure:"scraper"`
	Trigger   Trigger         `mapstructure:"trigger"`
	Schedule  Schedule        `mapstructure:"schedule"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Defaults returns the values used when neither the file nor the environment sets a key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                      "nepse-ingestion-service",
		"app.env":                       "development",
		"logger.level":                  "info",
		"logger.encoding":               "json",
		"database.host":                 "localhost",
		"database.port":                 5432,
		"database.ssl_mode":             "disable",
		"database.log_level":            "warn",
		"redis.enabled":                 false,
		"redis.host":                    "localhost",
		"redis.port":                    6379,
		"redis.stream_max_len":          1000,
		"api.port":                      8080,
		"ingestion.time_zone":           "Asia/Kathmandu",
		"ingestion.request_timeout":     "60s",
		"ingestion.upsert_mode":         UpsertModeBatch,
		"ingestion.resolve_concurrency": 1,
		"ingestion.company_cache_ttl":   "1h",
		"ingestion.run_log_size":        100,
		"scraper.url":                   "https://nepalstock.com.np/today-price",
		"scraper.timeout":               "60s",
		"scraper.wait_selector":         "app-today-price table tbody tr",
		"scraper.headless":              true,
		"trigger.command":               "nepse-scraper",
		"trigger.process_timeout":       "120s",
		"trigger.ingest_timeout":        "60s",
		"trigger.min_interval":          "30s",
		"schedule.cron":                 "",
		"schedule.source":               "browser",
		"schedule.polling_interval":     "30s",
		"telegram.bot_token":            "",
		"telegram.chat_id":              0,
	}
}

// Load loads the ingestion configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
