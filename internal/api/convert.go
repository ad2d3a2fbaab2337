package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/crypto-notifier/internal/model"
)

// PairFor returns the exchange pair for a configured symbol.
// "BTC", "USDT" -> "BTCUSDT"; "BTCUSDT", "USDT" -> "BTCUSDT".
func PairFor(symbol, quote string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if quote == "" || strings.HasSuffix(symbol, quote) {
		return symbol
	}
	return symbol + quote
}

// ToReading converts a ticker response into a reading for symbol.
// A non-positive price is rejected rather than reported.
func (r *TickerPriceResponse) ToReading(symbol string, at time.Time) (model.PriceReading, error) {
	if !r.Price.IsPositive() {
		return model.PriceReading{}, fmt.Errorf("invalid price %q for %s", r.Price.String(), symbol)
	}
	return model.PriceReading{
		Symbol: symbol,
		Price:  r.Price,
		Time:   at.UTC(),
	}, nil
}
