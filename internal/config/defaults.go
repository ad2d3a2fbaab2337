package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultRestURL          = "https://api.binance.com"
	DefaultQuoteAsset       = "USDT"
	DefaultExchangeTimeout  = 10 * time.Second
	DefaultPollInterval     = 5 * time.Minute
	DefaultStoreTimeout     = 5 * time.Second
	DefaultInsightTimeout   = 20 * time.Second
	DefaultNotifyTimeout    = 20 * time.Second
	DefaultStoreBackend     = StoreRedis
	DefaultKeyPrefix        = "price:"
	DefaultRedisURL         = "redis://localhost:6379/0"
	DefaultRedisDialTimeout = 5 * time.Second
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 4
	DefaultMinConns         = 1
	DefaultTelegramEndpoint = "https://api.telegram.org/bot%s/%s"
	DefaultParseMode        = "Markdown"
	DefaultTelegramTimeout  = 20 * time.Second
	DefaultInsightModel     = "gpt-3.5-turbo"
	DefaultMaxTokens        = 60
	DefaultTemperature      = 0.3
	DefaultPrecision        = 2
	DefaultOnlineMessage    = "*Bot online* - price updates %s"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMetricsPort      = 8080
	DefaultMetricsPath      = "/metrics"
)

// DefaultSymbols is the watch list used when none is configured.
var DefaultSymbols = []string{
	"BTCUSDT",
	"ETHUSDT",
	"SOLUSDT",
	"XRPUSDT",
	"AAVEUSDT",
	"TRXUSDT",
}

// newConfig returns the starting point for loading. Fields where zero is
// a meaningful value are seeded here rather than in applyDefaults.
func newConfig() NotifierConfig {
	return NotifierConfig{
		Insight: InsightConfig{Temperature: DefaultTemperature},
		Message: MessageConfig{Precision: DefaultPrecision},
		Metrics: MetricsConfig{Enabled: true},
	}
}

func (c *NotifierConfig) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}
	for i, s := range c.Symbols {
		c.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	// Exchange defaults
	if c.Exchange.RestURL == "" {
		c.Exchange.RestURL = DefaultRestURL
	}
	c.Exchange.RestURL = strings.TrimRight(c.Exchange.RestURL, "/")
	if c.Exchange.QuoteAsset == "" {
		c.Exchange.QuoteAsset = DefaultQuoteAsset
	}
	c.Exchange.QuoteAsset = strings.ToUpper(c.Exchange.QuoteAsset)
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = DefaultExchangeTimeout
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.StoreTimeout == 0 {
		c.Poller.StoreTimeout = DefaultStoreTimeout
	}
	if c.Poller.InsightTimeout == 0 {
		c.Poller.InsightTimeout = DefaultInsightTimeout
	}
	if c.Poller.NotifyTimeout == 0 {
		c.Poller.NotifyTimeout = DefaultNotifyTimeout
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultStoreBackend
	}
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = DefaultKeyPrefix
	}
	if c.Store.Redis.URL == "" {
		c.Store.Redis.URL = DefaultRedisURL
	}
	if c.Store.Redis.DialTimeout == 0 {
		c.Store.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	applyDBDefaults(&c.Store.Postgres)

	// Telegram defaults
	if c.Telegram.APIEndpoint == "" {
		c.Telegram.APIEndpoint = DefaultTelegramEndpoint
	}
	if c.Telegram.ParseMode == "" {
		c.Telegram.ParseMode = DefaultParseMode
	}
	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = DefaultTelegramTimeout
	}

	// Insight defaults
	if c.Insight.Model == "" {
		c.Insight.Model = DefaultInsightModel
	}
	if c.Insight.MaxTokens == 0 {
		c.Insight.MaxTokens = DefaultMaxTokens
	}

	// Message defaults
	if c.Message.OnlineMessage == "" {
		c.Message.OnlineMessage = DefaultOnlineMessage
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
