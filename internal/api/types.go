package api

import "github.com/shopspring/decimal"

// TickerPriceResponse from GET /api/v3/ticker/price?symbol=X
type TickerPriceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"` // Sent as a string, e.g. "65000.12000000"
}

// ErrorResponse is the body Binance returns alongside 4xx/5xx statuses.
type ErrorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
