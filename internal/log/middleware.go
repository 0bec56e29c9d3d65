// SPDX-License-Identifier: MIT

package log

import (
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Middleware returns an HTTP middleware that logs one line per request with
// method, path, status, size and latency. The request-scoped logger is
// attached to the context for downstream handlers.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			l := Base().With().
				Str("method", r.Method).
				Str("path", r.URL.Path)
			if rid := RequestIDFromContext(r.Context()); rid != "" {
				l = l.Str("request_id", rid)
			}
			logger := l.Logger()

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(logger.WithContext(r.Context())))

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			logger.Info().
				Str("event", "http.request").
				Int("status", sw.status).
				Int("bytes", sw.bytes).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
