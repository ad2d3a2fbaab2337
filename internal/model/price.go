package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceReading is a spot price fetched for one symbol during one cycle.
type PriceReading struct {
	Symbol string          // Configured symbol (e.g. "BTC")
	Price  decimal.Decimal // Spot price in the quote asset
	Time   time.Time       // When the price was fetched (UTC)
}

// Snapshot is the result of fetching all configured symbols once.
type Snapshot struct {
	Readings []PriceReading // Successful fetches, in configured order
	Failed   []string       // Symbols with no data this cycle
	Time     time.Time      // Cycle start (UTC)
}

// Len returns the number of successful readings.
func (s Snapshot) Len() int {
	return len(s.Readings)
}

// Lookup returns the reading for symbol, if fetched.
func (s Snapshot) Lookup(symbol string) (PriceReading, bool) {
	for _, r := range s.Readings {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return PriceReading{}, false
}

// Quote is one line of a price update: a fresh price, a stale
// last-known price, or nothing.
type Quote struct {
	Symbol    string
	Price     decimal.Decimal
	Available bool
	Stale     bool
}

// FreshQuote builds a quote from this cycle's reading.
func FreshQuote(r PriceReading) Quote {
	return Quote{Symbol: r.Symbol, Price: r.Price, Available: true}
}

// StaleQuote builds a quote from a previously stored reading.
func StaleQuote(r PriceReading) Quote {
	return Quote{Symbol: r.Symbol, Price: r.Price, Available: true, Stale: true}
}

// MissingQuote builds a quote for a symbol with no known price.
func MissingQuote(symbol string) Quote {
	return Quote{Symbol: symbol}
}
