package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rickgao/crypto-notifier/internal/model"
)

// Ping checks that the exchange is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct{}
	if err := c.get(ctx, "/api/v3/ping", nil, &resp); err != nil {
		return fmt.Errorf("ping exchange: %w", err)
	}
	return nil
}

// GetTickerPrice fetches the latest price for a trading pair.
func (c *Client) GetTickerPrice(ctx context.Context, pair string) (*TickerPriceResponse, error) {
	query := url.Values{}
	query.Set("symbol", pair)

	var resp TickerPriceResponse
	if err := c.get(ctx, "/api/v3/ticker/price", query, &resp); err != nil {
		return nil, fmt.Errorf("get ticker price %s: %w", pair, err)
	}
	return &resp, nil
}

// FetchPrices fetches each symbol in order. Symbols that fail are listed
// in Snapshot.Failed and their errors joined into the returned error;
// the snapshot is valid either way.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (model.Snapshot, error) {
	snap := model.Snapshot{Time: time.Now().UTC()}
	var errs []error

	for _, symbol := range symbols {
		reading, err := c.fetchOne(ctx, symbol)
		if err != nil {
			snap.Failed = append(snap.Failed, symbol)
			errs = append(errs, err)
			continue
		}
		snap.Readings = append(snap.Readings, reading)
	}

	return snap, errors.Join(errs...)
}

func (c *Client) fetchOne(ctx context.Context, symbol string) (model.PriceReading, error) {
	pair := PairFor(symbol, c.quoteAsset)

	resp, err := c.GetTickerPrice(ctx, pair)
	if err != nil {
		return model.PriceReading{}, err
	}

	reading, err := resp.ToReading(symbol, time.Now())
	if err != nil {
		return model.PriceReading{}, err
	}
	return reading, nil
}
