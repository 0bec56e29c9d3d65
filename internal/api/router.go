// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xglog "github.com/ManuGH/mailcfgd/internal/log"
)

// Handler builds the router with the canonical middleware stack applied:
// Recoverer (outermost safety net), RequestID (correlation early), Metrics
// (track all requests), Logging (captures full latency).
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(Metrics)
	r.Use(xglog.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/email/startup", s.handleEmailStartup)
		r.Get("/email/current", s.handleEmailCurrent)
		r.Get("/email/live", s.handleEmailLive)

		r.Get("/config", s.handleConfig)

		// Mutating routes are rate limited per client IP.
		r.With(httprate.LimitByIP(6, time.Minute)).
			Post("/config/reload", s.handleConfigReload)
		r.With(httprate.LimitByIP(3, time.Minute)).
			Post("/email/test", s.handleEmailTest)
	})

	return r
}
