package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.httpClient.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 10*time.Second)
		}
		if c.maxRetries != 0 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 0)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with multiple options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		hc := &http.Client{}
		c := NewClient("https://api.example.com",
			WithHTTPClient(hc),
			WithTimeout(15*time.Second),
			WithRetries(2, 500*time.Millisecond),
			WithLogger(logger),
			WithAPIKey("key"),
			WithQuoteAsset("USDT"),
		)
		if c.httpClient != hc {
			t.Error("custom HTTP client not set")
		}
		if c.httpClient.Timeout != 15*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 15*time.Second)
		}
		if c.maxRetries != 2 || c.retryBackoff != 500*time.Millisecond {
			t.Errorf("retries = (%d, %v), want (2, 500ms)", c.maxRetries, c.retryBackoff)
		}
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
		if c.apiKey != "key" || c.quoteAsset != "USDT" {
			t.Errorf("apiKey/quoteAsset = %q/%q", c.apiKey, c.quoteAsset)
		}
	})
}

// TestAPIError tests the APIError type.
func TestAPIError(t *testing.T) {
	t.Run("Error method with exchange code", func(t *testing.T) {
		err := newAPIError(400, []byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		expected := "exchange api error 400 (code -1121): Invalid symbol."
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("Error method without body", func(t *testing.T) {
		err := newAPIError(502, []byte(`bad gateway`))
		expected := "exchange api error 502: Bad Gateway"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("IsRetryable", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{500, true},
			{503, true},
			{429, true},
			{418, false},
			{400, false},
			{404, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			if got := err.IsRetryable(); got != tt.expected {
				t.Errorf("IsRetryable() for status %d = %v, want %v", tt.code, got, tt.expected)
			}
		}
	})
}

// TestDoRequest tests the HTTP request functionality.
func TestDoRequest(t *testing.T) {
	t.Run("sends headers and query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q, want %q", r.Header.Get("Accept"), "application/json")
			}
			if r.Header.Get("X-MBX-APIKEY") != "test-key" {
				t.Errorf("X-MBX-APIKEY = %q, want %q", r.Header.Get("X-MBX-APIKEY"), "test-key")
			}
			if r.URL.Query().Get("symbol") != "BTCUSDT" {
				t.Errorf("symbol = %q, want %q", r.URL.Query().Get("symbol"), "BTCUSDT")
			}
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithAPIKey("test-key"))
		body, err := c.doRequest(context.Background(), http.MethodGet, "/test", map[string][]string{"symbol": {"BTCUSDT"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"status": "ok"}` {
			t.Errorf("body = %q, want %q", string(body), `{"status": "ok"}`)
		}
	})

	t.Run("no API key header by default", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-MBX-APIKEY") != "" {
				t.Errorf("X-MBX-APIKEY should be empty, got %q", r.Header.Get("X-MBX-APIKEY"))
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		if _, err := NewClient(server.URL).doRequest(context.Background(), http.MethodGet, "/test", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("4xx error returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).doRequest(context.Background(), http.MethodGet, "/test", nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != 400 || apiErr.Code != -1121 {
			t.Errorf("APIError = %d/%d, want 400/-1121", apiErr.StatusCode, apiErr.Code)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewClient(server.URL).doRequest(ctx, http.MethodGet, "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("error should contain 'context canceled', got %v", err)
		}
	})
}

// TestDoWithRetry tests the retry logic.
func TestDoWithRetry(t *testing.T) {
	t.Run("no retries by default", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewClient(server.URL).doWithRetry(context.Background(), http.MethodGet, "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if strings.Contains(err.Error(), "max retries exceeded") {
			t.Errorf("error should not mention retries when disabled, got %v", err)
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})

	t.Run("retries on 5xx and succeeds", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))
		if _, err := c.doWithRetry(context.Background(), http.MethodGet, "/test", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempts != 3 {
			t.Errorf("attempts = %d, want 3", attempts)
		}
	})

	t.Run("does not retry on 4xx (except 429)", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))
		if _, err := c.doWithRetry(context.Background(), http.MethodGet, "/test", nil); err == nil {
			t.Fatal("expected error, got nil")
		}
		if attempts != 1 {
			t.Errorf("attempts = %d, want 1", attempts)
		}
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(2, 10*time.Millisecond))
		_, err := c.doWithRetry(context.Background(), http.MethodGet, "/test", nil)
		if err == nil || !strings.Contains(err.Error(), "max retries exceeded") {
			t.Errorf("error should contain 'max retries exceeded', got %v", err)
		}
		// 1 initial + 2 retries = 3 attempts
		if attempts != 3 {
			t.Errorf("attempts = %d, want 3", attempts)
		}
	})
}

// TestPing tests the connectivity check.
func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ping" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/v3/ping")
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if err := NewClient(server.URL).Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

// TestGetTickerPrice tests the single-symbol price endpoint.
func TestGetTickerPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/v3/ticker/price")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"65000.12000000"}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).GetTickerPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetTickerPrice failed: %v", err)
	}
	if resp.Symbol != "BTCUSDT" {
		t.Errorf("Symbol = %q, want %q", resp.Symbol, "BTCUSDT")
	}
	if !resp.Price.Equal(decimal.RequireFromString("65000.12")) {
		t.Errorf("Price = %s, want 65000.12", resp.Price)
	}
}

// TestFetchPrices tests partial failure handling across symbols.
func TestFetchPrices(t *testing.T) {
	prices := map[string]string{
		"BTCUSDT":  `{"symbol":"BTCUSDT","price":"65000.12000000"}`,
		"ETHUSDT":  `{"symbol":"ETHUSDT","price":"3200.50000000"}`,
		"ZEROUSDT": `{"symbol":"ZEROUSDT","price":"0.00000000"}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := prices[r.URL.Query().Get("symbol")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}
		w.Write([]byte(body))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithQuoteAsset("USDT"))

	t.Run("all succeed", func(t *testing.T) {
		snap, err := c.FetchPrices(context.Background(), []string{"BTC", "ETH"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Len() != 2 || len(snap.Failed) != 0 {
			t.Fatalf("snapshot = %d readings / %v failed, want 2 / none", snap.Len(), snap.Failed)
		}
		if snap.Readings[0].Symbol != "BTC" || snap.Readings[1].Symbol != "ETH" {
			t.Errorf("order = %s,%s, want BTC,ETH", snap.Readings[0].Symbol, snap.Readings[1].Symbol)
		}
		if got := snap.Readings[1].Price.StringFixed(2); got != "3200.50" {
			t.Errorf("ETH price = %s, want 3200.50", got)
		}
	})

	t.Run("failed symbols are reported, not fabricated", func(t *testing.T) {
		snap, err := c.FetchPrices(context.Background(), []string{"BTC", "NOPE", "ZERO"})
		if err == nil {
			t.Fatal("expected joined error for failed symbols")
		}
		if snap.Len() != 1 {
			t.Errorf("Len() = %d, want 1", snap.Len())
		}
		if len(snap.Failed) != 2 || snap.Failed[0] != "NOPE" || snap.Failed[1] != "ZERO" {
			t.Errorf("Failed = %v, want [NOPE ZERO]", snap.Failed)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Code != -1121 {
			t.Errorf("joined error should contain the APIError, got %v", err)
		}
	})
}
