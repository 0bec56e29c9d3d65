// SPDX-License-Identifier: MIT

// Package mailer sends messages over SMTP using the live email settings.
// It subscribes to monitor change callbacks so credential changes take
// effect without a restart.
package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/ManuGH/mailcfgd/internal/config"
	"github.com/ManuGH/mailcfgd/internal/log"
)

// sendFunc dials and delivers a message; replaced in tests.
type sendFunc func(settings config.SMTPSettings, msg *gomail.Message) error

// Mailer composes and delivers mail from the currently effective settings.
type Mailer struct {
	mu       sync.RWMutex
	settings config.EmailSettings
	logger   zerolog.Logger
	send     sendFunc
}

// New creates a mailer seeded from the monitor and registers for setting
// updates.
func New(monitor *config.Monitor) *Mailer {
	m := &Mailer{
		settings: monitor.Current(),
		logger:   log.WithComponent("mailer"),
		send:     dialAndSend,
	}
	monitor.OnChange(m.apply)
	return m
}

func (m *Mailer) apply(settings config.EmailSettings) {
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()
	m.logger.Info().
		Str("event", "mailer.settings_updated").
		Str("host", settings.SMTP.Host).
		Int("port", settings.SMTP.Port).
		Msg("SMTP settings updated")
}

// Send delivers a plain-text message to the configured recipient lists.
// Delivery runs in a goroutine so a slow SMTP server cannot outlive ctx.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	m.mu.RLock()
	settings := m.settings.Clone()
	send := m.send
	m.mu.RUnlock()

	if settings.SMTP.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	if settings.From == "" {
		return fmt.Errorf("sender address not configured")
	}
	if len(settings.To) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", settings.From)
	msg.SetHeader("To", settings.To...)
	if len(settings.CC) > 0 {
		msg.SetHeader("Cc", settings.CC...)
	}
	if len(settings.BCC) > 0 {
		msg.SetHeader("Bcc", settings.BCC...)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- send(settings.SMTP, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send mail: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
	}

	m.logger.Info().
		Str("event", "mailer.sent").
		Int("to", len(settings.To)).
		Int("cc", len(settings.CC)).
		Int("bcc", len(settings.BCC)).
		Msg("message delivered")
	return nil
}

func dialAndSend(settings config.SMTPSettings, msg *gomail.Message) error {
	d := gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
	return d.DialAndSend(msg)
}
