// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Cycle counts and durations
//   - Per-symbol fetch failures and the latest fetched price
//   - Store, insight and notification failures
//   - Time of the last completed cycle
package metrics
