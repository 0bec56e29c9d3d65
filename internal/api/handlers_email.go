// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ManuGH/mailcfgd/internal/log"
)

// handleEmailStartup serves the snapshot taken once at server construction.
// It keeps returning the original values after config changes.
func (s *Server) handleEmailStartup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.startup.Recipients())
}

// handleEmailCurrent re-resolves the settings from the holder on every
// request, so it reflects the last successful reload.
func (s *Server) handleEmailCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.holder.Settings().Recipients())
}

// handleEmailLive serves the monitor's push-updated value.
func (s *Server) handleEmailLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.monitor.Current().Recipients())
}

type emailTestRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type emailTestResponse struct {
	Sent bool     `json:"sent"`
	To   []string `json:"to"`
}

// handleEmailTest sends a test message via the live SMTP settings.
func (s *Server) handleEmailTest(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	if s.mailer == nil {
		http.Error(w, "mailer not configured", http.StatusNotImplemented)
		return
	}

	req := emailTestRequest{
		Subject: "mailcfgd test message",
		Body:    "This is a test message from mailcfgd.",
	}
	// An empty body keeps the defaults; chunked bodies have no ContentLength
	// so the decoder decides whether there is a payload.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.mailer.Send(r.Context(), req.Subject, req.Body); err != nil {
		logger.Error().
			Err(err).
			Str("event", "email.test_failed").
			Msg("test message delivery failed")
		http.Error(w, "test message delivery failed", http.StatusBadGateway)
		return
	}

	settings := s.monitor.Current()
	logger.Info().
		Str("event", "email.test_sent").
		Int("recipients", len(settings.To)).
		Msg("test message sent")
	writeJSON(w, r, http.StatusOK, emailTestResponse{Sent: true, To: settings.Recipients().To})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Msg("failed to write JSON response")
	}
}
