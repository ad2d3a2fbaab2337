package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/robfig/cron/v3"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// Validate checks that all required fields are set and values are valid.
func (c *NotifierConfig) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("symbols must not be empty")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if !symbolPattern.MatchString(s) {
			return fmt.Errorf("symbols: invalid symbol %q", s)
		}
		if seen[s] {
			return fmt.Errorf("symbols: duplicate symbol %q", s)
		}
		seen[s] = true
	}

	if _, err := url.ParseRequestURI(c.Exchange.RestURL); err != nil {
		return fmt.Errorf("exchange.rest_url is invalid: %w", err)
	}
	if c.Exchange.MaxRetries < 0 {
		return errors.New("exchange.max_retries must be >= 0")
	}

	if c.Poller.Interval < time.Second {
		return fmt.Errorf("poller.interval must be >= 1s, got %v", c.Poller.Interval)
	}
	if c.Poller.Schedule != "" {
		if _, err := cron.ParseStandard(c.Poller.Schedule); err != nil {
			return fmt.Errorf("poller.schedule is invalid: %w", err)
		}
	}

	switch c.Store.Backend {
	case StoreRedis:
		if c.Store.Redis.URL == "" {
			return errors.New("store.redis.url is required")
		}
	case StorePostgres:
		if err := c.Store.Postgres.validate("store.postgres"); err != nil {
			return err
		}
	case StoreMemory, StoreNone:
	default:
		return fmt.Errorf("store.backend must be one of redis, postgres, memory, none, got %q", c.Store.Backend)
	}

	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required")
	}
	// Messages are rendered as legacy Markdown only.
	if c.Telegram.ParseMode != DefaultParseMode {
		return fmt.Errorf("telegram.parse_mode must be %s, got %q", DefaultParseMode, c.Telegram.ParseMode)
	}

	if c.Insight.Enabled() && c.Insight.MaxTokens < 1 {
		return errors.New("insight.max_tokens must be >= 1")
	}
	if c.Insight.Temperature < 0 || c.Insight.Temperature > 2 {
		return fmt.Errorf("insight.temperature must be between 0 and 2, got %v", c.Insight.Temperature)
	}

	if c.Message.Precision < 0 || c.Message.Precision > 12 {
		return fmt.Errorf("message.precision must be between 0 and 12, got %d", c.Message.Precision)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
