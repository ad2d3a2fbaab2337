// Command pricecheck fetches the configured prices once and prints the
// update the notifier would send. Nothing is stored or sent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rickgao/crypto-notifier/internal/api"
	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/insight"
	"github.com/rickgao/crypto-notifier/internal/model"
	"github.com/rickgao/crypto-notifier/internal/notify"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty: environment only)")
	symbols := flag.String("symbols", "", "comma-separated symbols, overrides config")
	withInsight := flag.Bool("insight", false, "also request an insight (needs an API key)")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *symbols != "" {
		cfg.Symbols = nil
		for _, s := range strings.Split(*symbols, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				cfg.Symbols = append(cfg.Symbols, s)
			}
		}
	}

	client := api.NewClient(
		cfg.Exchange.RestURL,
		api.WithTimeout(cfg.Exchange.Timeout),
		api.WithQuoteAsset(cfg.Exchange.QuoteAsset),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("=== Ping ===")
	if err := client.Ping(ctx); err != nil {
		log.Fatalf("Ping failed: %v", err)
	}
	fmt.Printf("Exchange reachable: %s\n", cfg.Exchange.RestURL)

	fmt.Println("\n=== FetchPrices ===")
	snap, err := client.FetchPrices(ctx, cfg.Symbols)
	for _, r := range snap.Readings {
		fmt.Printf("  %-10s %s (%s)\n", r.Symbol, r.Price.String(), api.PairFor(r.Symbol, cfg.Exchange.QuoteAsset))
	}
	if err != nil {
		fmt.Printf("Failed: %v\n", snap.Failed)
		fmt.Printf("  %v\n", err)
	}

	ins := model.NoInsight()
	if *withInsight {
		fmt.Println("\n=== Insight ===")
		if !cfg.Insight.Enabled() {
			log.Fatalf("no insight API key configured")
		}
		text, err := insight.New(cfg.Insight, insight.WithTimeout(cfg.Poller.InsightTimeout)).Generate(ctx, snap)
		if err != nil {
			fmt.Printf("Insight failed: %v\n", err)
		} else {
			fmt.Println(text)
			ins = model.SomeInsight(text)
		}
	}

	quotes := make([]model.Quote, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		if r, ok := snap.Lookup(s); ok {
			quotes = append(quotes, model.FreshQuote(r))
		} else {
			quotes = append(quotes, model.MissingQuote(s))
		}
	}

	fmt.Println("\n=== Message ===")
	interval := cfg.Poller.Interval
	if cfg.Poller.Schedule != "" {
		interval = 0
	}
	fmt.Println(notify.FormatUpdate(quotes, ins, time.Now(), cfg.Message.Precision, interval))
}
