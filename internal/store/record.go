package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/crypto-notifier/internal/model"
)

// record is the JSON value written to key-value backends.
type record struct {
	Price decimal.Decimal `json:"price"`
	TS    int64           `json:"ts"`  // Unix seconds
	ISO   string          `json:"iso"` // RFC 3339, UTC
}

func encodeRecord(r model.PriceReading) ([]byte, error) {
	t := r.Time.UTC()
	data, err := json.Marshal(record{
		Price: r.Price,
		TS:    t.Unix(),
		ISO:   t.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

func decodeRecord(symbol string, data []byte) (model.PriceReading, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.PriceReading{}, fmt.Errorf("unmarshal record: %w", err)
	}

	t := time.Unix(rec.TS, 0).UTC()
	if rec.ISO != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, rec.ISO); err == nil {
			t = parsed.UTC()
		}
	}

	return model.PriceReading{Symbol: symbol, Price: rec.Price, Time: t}, nil
}
