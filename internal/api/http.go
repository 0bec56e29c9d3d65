// SPDX-License-Identifier: MIT

// Package api provides the HTTP server for mailcfgd. The three email read
// endpoints expose the same configuration section through the three
// retrieval strategies: the startup snapshot captured here at construction,
// per-request resolution via the holder, and the push-updated monitor.
package api

import (
	"context"
	"time"

	"github.com/ManuGH/mailcfgd/internal/config"
)

// Mailer sends a message using the currently effective email settings.
// Implemented by mailer.Mailer; stubbed in tests.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// Server represents the HTTP API server for mailcfgd.
type Server struct {
	startup   config.EmailSettings // once-at-startup snapshot, never updated
	cfg       config.AppConfig     // resolved startup config (listen, metrics)
	holder    *config.Holder
	monitor   *config.Monitor
	mailer    Mailer
	startTime time.Time
}

// ServerOption allows functional configuration of the Server.
type ServerOption func(*Server)

// WithMailer attaches a mailer for the test-send endpoint.
func WithMailer(m Mailer) ServerOption {
	return func(s *Server) {
		s.mailer = m
	}
}

// New creates the API server. The email settings are deep-copied so later
// reloads can never leak into the startup snapshot.
func New(cfg config.AppConfig, holder *config.Holder, monitor *config.Monitor, opts ...ServerOption) *Server {
	s := &Server{
		startup:   cfg.Email.Clone(),
		cfg:       cfg.Clone(),
		holder:    holder,
		monitor:   monitor,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
