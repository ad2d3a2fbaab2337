// Package poller runs the price update cycle on a schedule.
//
// The Poller:
//   - Sends a one-time online message when started
//   - Runs a cycle immediately, then on a fixed interval or cron schedule
//   - Fetches prices, writes them to the store, asks for an insight and
//     sends the formatted update
//   - Never lets a step failure stop the loop; cycles never overlap
package poller
