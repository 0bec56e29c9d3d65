// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"reflect"
	"time"

	"github.com/ManuGH/mailcfgd/internal/log"
)

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.holder == nil || s.monitor == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// configView is the redacted representation of the runtime config.
type configView struct {
	LogLevel string `json:"logLevel"`
	Listen   string `json:"listen"`
	Metrics  bool   `json:"metrics"`
	Version  string `json:"version,omitempty"`
	Email    struct {
		From string   `json:"from"`
		To   []string `json:"to"`
		CC   []string `json:"cc"`
		BCC  []string `json:"bcc"`
		SMTP struct {
			Host     string `json:"host"`
			Port     int    `json:"port"`
			Username string `json:"username"`
			Password string `json:"password,omitempty"` // masked, never the real value
			StartTLS bool   `json:"startTLS"`
			Timeout  string `json:"timeout"`
		} `json:"smtp"`
	} `json:"email"`
}

// handleConfig returns the current runtime configuration with secrets
// redacted.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.holder.Get()

	var view configView
	view.LogLevel = cfg.LogLevel
	view.Listen = cfg.Listen
	view.Metrics = cfg.MetricsEnabled
	view.Version = cfg.Version
	rec := cfg.Email.Recipients()
	view.Email.From = rec.From
	view.Email.To = rec.To
	view.Email.CC = rec.CC
	view.Email.BCC = rec.BCC
	view.Email.SMTP.Host = cfg.Email.SMTP.Host
	view.Email.SMTP.Port = cfg.Email.SMTP.Port
	view.Email.SMTP.Username = cfg.Email.SMTP.Username
	if cfg.Email.SMTP.Password != "" {
		view.Email.SMTP.Password = "***"
	}
	view.Email.SMTP.StartTLS = cfg.Email.SMTP.StartTLS
	view.Email.SMTP.Timeout = cfg.Email.SMTP.Timeout.String()

	writeJSON(w, r, http.StatusOK, view)
}

type reloadResponse struct {
	Changed bool `json:"changed"`
}

// handleConfigReload triggers a manual reload. On load or validation
// failure the old configuration is kept and 400 is returned.
func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "config")

	oldCfg := s.holder.Get()
	if err := s.holder.Reload(r.Context()); err != nil {
		logger.Warn().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("config reload failed")
		http.Error(w, "config reload failed", http.StatusBadRequest)
		return
	}

	newCfg := s.holder.Get()
	writeJSON(w, r, http.StatusOK, reloadResponse{
		Changed: !reflect.DeepEqual(oldCfg, newCfg),
	})
}
