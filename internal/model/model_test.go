package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSnapshotLookup(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := Snapshot{
		Readings: []PriceReading{
			{Symbol: "BTC", Price: decimal.RequireFromString("65000.12"), Time: now},
			{Symbol: "ETH", Price: decimal.RequireFromString("3200.50"), Time: now},
		},
		Failed: []string{"SOL"},
		Time:   now,
	}

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	r, ok := s.Lookup("ETH")
	if !ok {
		t.Fatal("Lookup(ETH) not found")
	}
	if !r.Price.Equal(decimal.RequireFromString("3200.5")) {
		t.Errorf("ETH price = %s, want 3200.5", r.Price)
	}

	if _, ok := s.Lookup("SOL"); ok {
		t.Error("Lookup(SOL) should not find a failed symbol")
	}
}

func TestQuotes(t *testing.T) {
	r := PriceReading{Symbol: "BTC", Price: decimal.NewFromInt(1)}

	fresh := FreshQuote(r)
	if !fresh.Available || fresh.Stale {
		t.Errorf("FreshQuote = %+v, want available and not stale", fresh)
	}

	stale := StaleQuote(r)
	if !stale.Available || !stale.Stale {
		t.Errorf("StaleQuote = %+v, want available and stale", stale)
	}

	missing := MissingQuote("XRP")
	if missing.Available || missing.Symbol != "XRP" {
		t.Errorf("MissingQuote = %+v, want unavailable XRP", missing)
	}
}

func TestInsight(t *testing.T) {
	tests := []struct {
		name     string
		insight  Insight
		wantText string
		wantOK   bool
	}{
		{"zero value", Insight{}, "", false},
		{"none", NoInsight(), "", false},
		{"some", SomeInsight("BTC leads the market."), "BTC leads the market.", true},
		{"empty text is absent", SomeInsight(""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := tt.insight.Get()
			if text != tt.wantText || ok != tt.wantOK {
				t.Errorf("Get() = (%q, %v), want (%q, %v)", text, ok, tt.wantText, tt.wantOK)
			}
			if tt.insight.Present() != tt.wantOK {
				t.Errorf("Present() = %v, want %v", tt.insight.Present(), tt.wantOK)
			}
		})
	}
}
