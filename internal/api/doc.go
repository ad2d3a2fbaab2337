// Package api provides a client for the Binance spot REST API.
//
// Endpoints used:
//   - GET /api/v3/ping          connectivity check
//   - GET /api/v3/ticker/price  latest price for one symbol
//
// Production base URL: https://api.binance.com
package api
