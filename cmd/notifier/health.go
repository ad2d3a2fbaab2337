package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/poller"
	"github.com/rickgao/crypto-notifier/internal/store"
	"github.com/rickgao/crypto-notifier/internal/version"
)

// cycleReporter is the part of the poller the health check reads.
type cycleReporter interface {
	State() poller.State
	LastCycle() time.Time
}

// newHealthHandler creates the HTTP handler for health checks and metrics.
// st may be nil when no store is configured.
func newHealthHandler(st store.Store, p cycleReporter, gatherer prometheus.Gatherer, cfg *config.NotifierConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// A cycle is overdue after two missed intervals.
	maxAge := 2 * cfg.Poller.Interval
	if maxAge < time.Minute {
		maxAge = time.Minute
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check store. An unreachable store degrades updates but does not
		// stop them.
		switch {
		case st == nil:
			health.Components["store"] = "disabled"
		default:
			if err := st.Ping(ctx); err != nil {
				health.Status = "degraded"
				health.Components["store"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["store"] = "connected"
			}
		}

		// Check poller
		last := p.LastCycle()
		pollerInfo := map[string]any{
			"state": p.State().String(),
		}
		if last.IsZero() {
			pollerInfo["last_cycle"] = nil
		} else {
			age := time.Since(last)
			pollerInfo["last_cycle"] = last.Format(time.RFC3339)
			pollerInfo["age_seconds"] = int(age.Seconds())
			if age > maxAge {
				health.Status = "unhealthy"
			}
		}
		health.Components["poller"] = pollerInfo

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Debug("write health response", "error", err)
		}
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.Get())
	})

	r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
