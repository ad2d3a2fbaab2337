package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/model"
)

func testSnapshot() model.Snapshot {
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	return model.Snapshot{
		Readings: []model.PriceReading{
			{Symbol: "BTC", Price: decimal.RequireFromString("65000.12"), Time: at},
			{Symbol: "ETH", Price: decimal.RequireFromString("3200.50"), Time: at},
		},
		Failed: []string{"SOL"},
		Time:   at,
	}
}

func completionHandler(t *testing.T, content string, gotReq *chatRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":40,"completion_tokens":12,"total_tokens":52}}`, content)
	}
}

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestGenerator(url string, opts ...Option) *Generator {
	return New(config.InsightConfig{
		APIKey:      "sk-test",
		BaseURL:     url + "/v1",
		Model:       "gpt-3.5-turbo",
		MaxTokens:   60,
		Temperature: 0.3,
	}, opts...)
}

func TestGenerate(t *testing.T) {
	var req chatRequest
	server := httptest.NewServer(completionHandler(t, "\n  BTC holds above 65k while ETH lags.  \nSecond line.", &req))
	defer server.Close()

	g := newTestGenerator(server.URL)
	text, err := g.Generate(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "BTC holds above 65k while ETH lags.", text)

	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	assert.Equal(t, 60, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 0.0001)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "BTC: 65000.12")
}

func TestGenerateEmpty(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "   \n\n", nil))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), testSnapshot())
	assert.ErrorIs(t, err, ErrEmptyInsight)
}

func TestGenerateNoReadings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty snapshot")
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), model.Snapshot{Failed: []string{"BTC"}})
	assert.ErrorIs(t, err, ErrEmptyInsight)
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestGenerator(server.URL).Generate(ctx, testSnapshot())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testSnapshot())

	assert.Contains(t, prompt, "BTC: 65000.12\n")
	assert.Contains(t, prompt, "ETH: 3200.5\n")
	assert.NotContains(t, prompt, "SOL", "failed symbols carry no price")
	assert.True(t, strings.HasSuffix(prompt, "One-sentence summary:"))
}

func TestBuildPromptCapsSymbols(t *testing.T) {
	var snap model.Snapshot
	for i := 0; i < MaxPromptSymbols+10; i++ {
		snap.Readings = append(snap.Readings, model.PriceReading{
			Symbol: fmt.Sprintf("C%03d", i),
			Price:  decimal.NewFromInt(int64(i + 1)),
		})
	}

	prompt := BuildPrompt(snap)
	assert.Contains(t, prompt, fmt.Sprintf("C%03d:", MaxPromptSymbols-1))
	assert.NotContains(t, prompt, fmt.Sprintf("C%03d:", MaxPromptSymbols))
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single", "Markets calm.", "Markets calm."},
		{"leading blank lines", "\n\n  Up only.\nmore", "Up only."},
		{"blank", " \n\t\n", ""},
		{"long", strings.Repeat("é", MaxInsightLength+5), strings.Repeat("é", MaxInsightLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstLine(tt.in); got != tt.want {
				t.Errorf("FirstLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
