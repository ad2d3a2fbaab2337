package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rickgao/crypto-notifier/internal/config"
)

// Notifier delivers a rendered message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	channel   string
	parseMode string
	logger    *slog.Logger
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*telegramOptions)

type telegramOptions struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient sets the HTTP client used for Bot API calls.
func WithHTTPClient(hc *http.Client) TelegramOption {
	return func(o *telegramOptions) {
		o.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TelegramOption {
	return func(o *telegramOptions) {
		o.logger = logger
	}
}

// NewTelegram authenticates the bot with getMe. An error here means
// messages cannot be delivered at all.
func NewTelegram(cfg config.TelegramConfig, opts ...TelegramOption) (*Telegram, error) {
	o := telegramOptions{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Telegram{
		parseMode: cfg.ParseMode,
		logger:    o.logger,
	}

	chat := strings.TrimSpace(cfg.ChatID)
	if strings.HasPrefix(chat, "@") {
		t.channel = chat
	} else {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chat id %q: must be numeric or @channel", cfg.ChatID)
		}
		t.chatID = id
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, o.httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram bootstrap: %w", err)
	}
	t.bot = bot

	t.logger.Info("telegram bot authenticated",
		"bot", bot.Self.UserName,
		"chat", chat,
	)

	return t, nil
}

// Send posts text to the configured chat. The Bot API client is not
// context aware, so ctx only bounds how long Send waits; the HTTP client
// timeout bounds the request itself.
func (t *Telegram) Send(ctx context.Context, text string) error {
	msg := t.message(text)

	type result struct {
		msg tgbotapi.Message
		err error
	}
	done := make(chan result, 1)

	start := time.Now()
	go func() {
		m, err := t.bot.Send(msg)
		done <- result{msg: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send message: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("send message: %w", r.err)
		}
		t.logger.Debug("message sent",
			"message_id", r.msg.MessageID,
			"duration", time.Since(start),
		)
		return nil
	}
}

func (t *Telegram) message(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if t.channel != "" {
		msg = tgbotapi.NewMessageToChannel(t.channel, text)
	} else {
		msg = tgbotapi.NewMessage(t.chatID, text)
	}
	msg.ParseMode = t.parseMode
	msg.DisableWebPagePreview = true
	return msg
}

