package poller

import (
	"time"

	"github.com/rickgao/crypto-notifier/internal/config"
)

// Config holds poller configuration.
type Config struct {
	Symbols  []string      // Symbols in message order
	Interval time.Duration // Cycle interval (default: 5m)
	Schedule string        // Cron expression; overrides Interval when set

	FetchTimeout   time.Duration // Bound on fetching all symbols
	StoreTimeout   time.Duration // Bound on store writes and lookups
	InsightTimeout time.Duration // Bound on insight generation
	NotifyTimeout  time.Duration // Bound on one message send

	Precision     int    // Decimal places in messages
	OnlineMessage string // Startup announcement template
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Symbols:        append([]string(nil), config.DefaultSymbols...),
		Interval:       config.DefaultPollInterval,
		FetchTimeout:   time.Minute,
		StoreTimeout:   config.DefaultStoreTimeout,
		InsightTimeout: config.DefaultInsightTimeout,
		NotifyTimeout:  config.DefaultNotifyTimeout,
		Precision:      config.DefaultPrecision,
		OnlineMessage:  config.DefaultOnlineMessage,
	}
}

// FromConfig derives the poller configuration from a validated
// NotifierConfig. Fetches run one symbol at a time, so the fetch bound
// scales with the watch list.
func FromConfig(cfg *config.NotifierConfig) Config {
	return Config{
		Symbols:        cfg.Symbols,
		Interval:       cfg.Poller.Interval,
		Schedule:       cfg.Poller.Schedule,
		FetchTimeout:   cfg.Exchange.Timeout * time.Duration(len(cfg.Symbols)+1),
		StoreTimeout:   cfg.Poller.StoreTimeout,
		InsightTimeout: cfg.Poller.InsightTimeout,
		NotifyTimeout:  cfg.Poller.NotifyTimeout,
		Precision:      cfg.Message.Precision,
		OnlineMessage:  cfg.Message.OnlineMessage,
	}
}
