package config

import "time"

// NotifierConfig is the root configuration for a notifier instance.
type NotifierConfig struct {
	Symbols  []string       `yaml:"symbols"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Poller   PollerConfig   `yaml:"poller"`
	Store    StoreConfig    `yaml:"store"`
	Telegram TelegramConfig `yaml:"telegram"`
	Insight  InsightConfig  `yaml:"insight"`
	Message  MessageConfig  `yaml:"message"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ExchangeConfig holds exchange REST API settings.
type ExchangeConfig struct {
	RestURL    string        `yaml:"rest_url"`
	QuoteAsset string        `yaml:"quote_asset"` // appended to symbols lacking it (BTC -> BTCUSDT)
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // 0: the next cycle is the retry
}

// PollerConfig holds scheduler settings.
type PollerConfig struct {
	Interval       time.Duration `yaml:"interval"`
	Schedule       string        `yaml:"schedule"` // optional cron expression, overrides interval
	StoreTimeout   time.Duration `yaml:"store_timeout"`
	InsightTimeout time.Duration `yaml:"insight_timeout"`
	NotifyTimeout  time.Duration `yaml:"notify_timeout"`
}

// Store backends.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
	StoreNone     = "none"
)

// StoreConfig selects and configures the last-price store.
type StoreConfig struct {
	Backend   string      `yaml:"backend"`
	KeyPrefix string      `yaml:"key_prefix"`
	Redis     RedisConfig `yaml:"redis"`
	Postgres  DBConfig    `yaml:"postgres"`
}

// RedisConfig holds the Redis connection.
type RedisConfig struct {
	URL         string        `yaml:"url"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// TelegramConfig holds messaging channel settings.
type TelegramConfig struct {
	BotToken    string        `yaml:"bot_token"`
	ChatID      string        `yaml:"chat_id"` // numeric id or @channel
	APIEndpoint string        `yaml:"api_endpoint"`
	ParseMode   string        `yaml:"parse_mode"`
	Timeout     time.Duration `yaml:"timeout"`
}

// InsightConfig holds text-generation settings. Enrichment is skipped
// entirely when APIKey is empty.
type InsightConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// Enabled reports whether insight generation is configured.
func (c InsightConfig) Enabled() bool {
	return c.APIKey != ""
}

// MessageConfig controls notification text.
type MessageConfig struct {
	Precision     int    `yaml:"precision"`
	OnlineMessage string `yaml:"online_message"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig holds the health and Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}
