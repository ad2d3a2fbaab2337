package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/crypto-notifier/internal/api"
	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/insight"
	"github.com/rickgao/crypto-notifier/internal/metrics"
	"github.com/rickgao/crypto-notifier/internal/notify"
	"github.com/rickgao/crypto-notifier/internal/poller"
	"github.com/rickgao/crypto-notifier/internal/store"
	"github.com/rickgao/crypto-notifier/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty: environment only)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting notifier",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"symbols", cfg.Symbols,
		"interval", cfg.Poller.Interval,
		"store", cfg.Store.Backend,
		"insight", cfg.Insight.Enabled(),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}

	logger.Info("notifier stopped")
}

func run(cfg *config.NotifierConfig, logger *slog.Logger) error {
	// Create context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Messaging is the only hard dependency at startup.
	tg, err := notify.NewTelegram(cfg.Telegram,
		notify.WithLogger(logger),
		notify.WithHTTPClient(&http.Client{Timeout: cfg.Telegram.Timeout}),
	)
	if err != nil {
		return err
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.Exchange.RestURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Exchange.Timeout),
		api.WithRetries(cfg.Exchange.MaxRetries, time.Second),
		api.WithQuoteAsset(cfg.Exchange.QuoteAsset),
	)

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.Exchange.Timeout)
	if err := apiClient.Ping(pingCtx); err != nil {
		logger.Warn("exchange unreachable at startup, continuing", "error", err)
	} else {
		logger.Info("exchange reachable", "url", cfg.Exchange.RestURL)
	}
	pingCancel()

	// Connect to the store
	storeCtx, storeCancel := context.WithTimeout(ctx, cfg.Poller.StoreTimeout)
	st, err := store.Open(storeCtx, cfg.Store, logger)
	storeCancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if st != nil {
		defer st.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	deps := poller.Deps{
		Prices:   apiClient,
		Store:    st,
		Notifier: tg,
		Metrics:  m,
	}
	if cfg.Insight.Enabled() {
		deps.Insight = insight.New(cfg.Insight,
			insight.WithLogger(logger),
			insight.WithTimeout(cfg.Poller.InsightTimeout),
		)
	} else {
		logger.Warn("insight api key not set, updates will carry no analysis")
	}

	p := poller.New(poller.FromConfig(cfg), deps, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		healthServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           newHealthHandler(st, p, registry, cfg, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("starting health server", "port", cfg.Metrics.Port)
			if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return healthServer.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		if err := p.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Poller.NotifyTimeout+cfg.Poller.InsightTimeout+30*time.Second)
		defer cancel()
		return p.Stop(shutdownCtx)
	})

	return g.Wait()
}

// newLogger builds the process logger from cfg.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
