// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package services

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ledgerline/internal/config"
)

// Progress reports what the running sync is doing, for /healthz.
type Progress interface {
	CurrentStream() string
}

// NewTelemetryRouter serves /metrics and /healthz. Both are rate limited
// per client IP.
func NewTelemetryRouter(cfg config.MetricsConfig, progress Progress) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	reqs, window := cfg.RateLimitReqs, cfg.RateLimitWindow
	if reqs <= 0 {
		reqs = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	r.Use(httprate.LimitByIP(reqs, window))

	started := time.Now()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{
			"status":         "ok",
			"uptime_seconds": int(time.Since(started).Seconds()),
		}
		if progress != nil {
			body["current_stream"] = progress.CurrentStream()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// NewTelemetryServer builds the metrics HTTP server on cfg.Addr.
func NewTelemetryServer(cfg config.MetricsConfig, progress Progress) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewTelemetryRouter(cfg, progress),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
