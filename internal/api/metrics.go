// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailcfg_http_requests_total",
		Help: "Number of HTTP requests by status code, method and route",
	}, []string{"code", "method", "path"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mailcfg_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

func recordRequest(r *http.Request, status int, duration time.Duration) {
	path := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			path = pattern
		}
	}
	httpRequestsTotal.WithLabelValues(strconv.Itoa(status), r.Method, path).Inc()
	httpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}
