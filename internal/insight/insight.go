package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/model"
)

const (
	// MaxPromptSymbols bounds the number of price lines sent in one prompt.
	MaxPromptSymbols = 50

	// MaxInsightLength bounds the returned text, in runes.
	MaxInsightLength = 280
)

// ErrEmptyInsight is returned when the model replies with no usable text.
var ErrEmptyInsight = errors.New("empty insight")

// Generator produces insights with a chat completion model.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
	httpClient  *http.Client
	baseURL     string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Generator) {
		g.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.httpClient.Timeout = d
	}
}

// New creates a Generator from cfg.
func New(cfg config.InsightConfig, opts ...Option) *Generator {
	g := &Generator{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      slog.Default(),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     cfg.BaseURL,
	}

	for _, opt := range opts {
		opt(g)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if g.baseURL != "" {
		clientCfg.BaseURL = g.baseURL
	}
	clientCfg.HTTPClient = g.httpClient
	g.client = openai.NewClientWithConfig(clientCfg)

	return g
}

// Generate returns a single line of commentary on snap.
func (g *Generator) Generate(ctx context.Context, snap model.Snapshot) (string, error) {
	if snap.Len() == 0 {
		return "", fmt.Errorf("generate insight: %w", ErrEmptyInsight)
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(snap)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyInsight)
	}

	text := FirstLine(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyInsight)
	}

	g.logger.Debug("insight generated",
		"model", g.model,
		"tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start),
	)

	return text, nil
}

// BuildPrompt renders the prompt for snap. Only this cycle's prices are
// included, at most MaxPromptSymbols of them.
func BuildPrompt(snap model.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are a concise crypto market assistant. Given the following latest spot prices (UTC), ")
	b.WriteString("provide a one-sentence summary indicating any notable observations ")
	b.WriteString("(e.g., big moves, relative strength, warnings).\n\nPrices:\n")

	for i, r := range snap.Readings {
		if i == MaxPromptSymbols {
			break
		}
		fmt.Fprintf(&b, "%s: %s\n", r.Symbol, r.Price.String())
	}

	b.WriteString("\nOne-sentence summary:")
	return b.String()
}

// FirstLine returns the first non-blank line of s, trimmed and cut to
// MaxInsightLength runes.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > MaxInsightLength {
			line = string(r[:MaxInsightLength])
		}
		return line
	}
	return ""
}
