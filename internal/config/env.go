package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envSpec is the flat environment layout used when no config file is given.
type envSpec struct {
	Symbols        []string `envconfig:"SYMBOLS"`
	ExchangeURL    string   `envconfig:"EXCHANGE_URL"`
	QuoteAsset     string   `envconfig:"QUOTE_ASSET"`
	PollInterval   int      `envconfig:"POLL_INTERVAL"` // seconds
	PollSchedule   string   `envconfig:"POLL_SCHEDULE"`
	StoreBackend   string   `envconfig:"STORE_BACKEND"`
	RedisURL       string   `envconfig:"REDIS_URL"`
	DatabaseHost   string   `envconfig:"DB_HOST"`
	DatabasePort   int      `envconfig:"DB_PORT"`
	DatabaseName   string   `envconfig:"DB_NAME"`
	DatabaseUser   string   `envconfig:"DB_USER"`
	DatabasePass   string   `envconfig:"DB_PASSWORD"`
	TelegramToken  string   `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID string   `envconfig:"TELEGRAM_CHAT_ID"`
	OpenAIKey      string   `envconfig:"OPENAI_API_KEY"`
	OpenAIModel    string   `envconfig:"OPENAI_MODEL"`
	OpenAIBaseURL  string   `envconfig:"OPENAI_BASE_URL"`
	OpenAITemp     float32  `envconfig:"OPENAI_TEMPERATURE" default:"0.3"`
	PricePrecision int      `envconfig:"PRICE_PRECISION" default:"2"`
	LogLevel       string   `envconfig:"LOG_LEVEL"`
	LogFormat      string   `envconfig:"LOG_FORMAT"`
	MetricsEnabled bool     `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsPort    int      `envconfig:"METRICS_PORT"`
}

// LoadFromEnv builds a config from environment variables only.
func LoadFromEnv() (*NotifierConfig, error) {
	_ = godotenv.Load()

	var env envSpec
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if env.PollInterval < 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be >= 0, got %d", env.PollInterval)
	}

	return &NotifierConfig{
		Symbols: env.Symbols,
		Exchange: ExchangeConfig{
			RestURL:    env.ExchangeURL,
			QuoteAsset: env.QuoteAsset,
		},
		Poller: PollerConfig{
			Interval: time.Duration(env.PollInterval) * time.Second,
			Schedule: env.PollSchedule,
		},
		Store: StoreConfig{
			Backend: env.StoreBackend,
			Redis:   RedisConfig{URL: env.RedisURL},
			Postgres: DBConfig{
				Host:     env.DatabaseHost,
				Port:     env.DatabasePort,
				Name:     env.DatabaseName,
				User:     env.DatabaseUser,
				Password: env.DatabasePass,
			},
		},
		Telegram: TelegramConfig{
			BotToken: env.TelegramToken,
			ChatID:   env.TelegramChatID,
		},
		Insight: InsightConfig{
			APIKey:      env.OpenAIKey,
			Model:       env.OpenAIModel,
			BaseURL:     env.OpenAIBaseURL,
			Temperature: env.OpenAITemp,
		},
		Message: MessageConfig{
			Precision: env.PricePrecision,
		},
		Log: LogConfig{
			Level:  env.LogLevel,
			Format: env.LogFormat,
		},
		Metrics: MetricsConfig{
			Enabled: env.MetricsEnabled,
			Port:    env.MetricsPort,
		},
	}, nil
}
