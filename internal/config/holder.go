// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/mailcfgd/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder holds configuration with atomic reloading capability. It provides
// thread-safe access and supports hot reloading from file watch, SIGHUP or
// manual trigger via API.
type Holder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	// Reload notifications
	reloadMu        sync.RWMutex
	reloadListeners []chan<- EmailSettings
}

// NewHolder creates a new configuration holder with initial config.
func NewHolder(initial AppConfig, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:         initial,
		loader:          loader,
		configPath:      configPath,
		logger:          log.WithComponent("config"),
		reloadListeners: make([]chan<- EmailSettings, 0),
	}
}

// Get returns a copy of the current configuration (thread-safe read).
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Settings returns a copy of the current email settings. This is the
// per-request retrieval strategy: every call re-resolves from the holder.
func (h *Holder) Settings() EmailSettings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Email.Clone()
}

// Reload reloads configuration from file and validates it. If loading or
// validation fails, the old configuration is kept and an error is returned,
// so either the full config is valid and applied or nothing changes.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		reloadsTotal.WithLabelValues("error").Inc()
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	// Atomically swap configuration
	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg.Email.Clone())
	h.logChanges(oldCfg, newCfg)

	reloadsTotal.WithLabelValues("success").Inc()
	lastReloadTime.SetToCurrentTime()
	h.logger.Info().
		Str("event", "config.reload_success").
		Msg("configuration reloaded successfully")

	return nil
}

// StartWatcher starts watching the config file for changes. If configPath
// is empty, this is a no-op (config comes from ENV only).
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	h.watcher = watcher

	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)

	return nil
}

// watchLoop is the main file watcher loop.
func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			if h.watcher != nil {
				_ = h.watcher.Close()
			}
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Watch for Write and Create events (covers vim, nano, echo)
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				watchEventsTotal.Inc()
				h.logger.Debug().
					Str("event", "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				// Debounce: reset timer on each event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().
							Err(err).
							Str("event", "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive the new email settings
// whenever a reload succeeds. The caller owns the channel.
func (h *Holder) RegisterListener(ch chan<- EmailSettings) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new settings to all registered listeners
// (non-blocking).
func (h *Holder) notifyListeners(settings EmailSettings) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- settings:
		default:
			// Skip if channel is full (non-blocking send)
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges logs the differences between old and new configuration.
// Secrets are masked.
func (h *Holder) logChanges(old, newCfg AppConfig) {
	if old.Email.From != newCfg.Email.From {
		h.logger.Info().
			Str("old", old.Email.From).
			Str("new", newCfg.Email.From).
			Msg("config changed: email.from")
	}
	if len(old.Email.To) != len(newCfg.Email.To) {
		h.logger.Info().
			Int("old", len(old.Email.To)).
			Int("new", len(newCfg.Email.To)).
			Msg("config changed: email.to recipients")
	}
	if old.Email.SMTP.Host != newCfg.Email.SMTP.Host {
		h.logger.Info().
			Str("old", old.Email.SMTP.Host).
			Str("new", newCfg.Email.SMTP.Host).
			Msg("config changed: email.smtp.host")
	}
	if old.Email.SMTP.Port != newCfg.Email.SMTP.Port {
		h.logger.Info().
			Int("old", old.Email.SMTP.Port).
			Int("new", newCfg.Email.SMTP.Port).
			Msg("config changed: email.smtp.port")
	}
	if old.Email.SMTP.Password != newCfg.Email.SMTP.Password {
		h.logger.Info().
			Str("old", maskSecret(old.Email.SMTP.Password)).
			Str("new", maskSecret(newCfg.Email.SMTP.Password)).
			Msg("config changed: email.smtp.password")
	}
	if old.LogLevel != newCfg.LogLevel {
		h.logger.Info().
			Str("old", old.LogLevel).
			Str("new", newCfg.LogLevel).
			Msg("config changed: logLevel")
	}
}

// maskSecret is a helper to mask sensitive values for logging.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***redacted***"
}
