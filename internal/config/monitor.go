// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"sync"

	"github.com/ManuGH/mailcfgd/internal/log"
	"github.com/rs/zerolog"
)

// Monitor is the push-updated retrieval strategy. It subscribes to a
// Holder's reload notifications, caches the latest email settings and
// invokes registered change callbacks. Unlike Holder.Settings, Current
// never touches the loader: it returns whatever the watcher last pushed.
type Monitor struct {
	mu        sync.RWMutex
	current   EmailSettings
	callbacks []func(EmailSettings)
	holder    *Holder
	updates   chan EmailSettings
	logger    zerolog.Logger
}

// NewMonitor creates a monitor seeded with the holder's current settings
// and registers it for reload notifications. Start must be called to begin
// consuming updates.
func NewMonitor(h *Holder) *Monitor {
	m := &Monitor{
		current: h.Settings(),
		holder:  h,
		updates: make(chan EmailSettings, 1),
		logger:  log.WithComponent("monitor"),
	}
	h.RegisterListener(m.updates)
	return m
}

// Start launches the update loop. It returns immediately; the loop stops
// when ctx is cancelled.
//
// The listener channel is only a wake-up signal: the holder's fan-out is
// non-blocking and drops when the buffer is full, so the loop re-reads
// the holder on every wake-up. A burst of reloads while a callback is
// running then coalesces into one apply of the latest settings instead of
// leaving the cached value stale.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.logger.Info().Str("event", "monitor.stopped").Msg("config monitor stopped")
				return
			case <-m.updates:
				m.apply(m.holder.Settings())
			}
		}
	}()
}

// Current returns a copy of the most recently pushed settings.
func (m *Monitor) Current() EmailSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// OnChange registers a callback invoked with the new settings after every
// pushed update. Callbacks run on the monitor goroutine and must not block.
func (m *Monitor) OnChange(fn func(EmailSettings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

func (m *Monitor) apply(settings EmailSettings) {
	m.mu.Lock()
	m.current = settings
	callbacks := make([]func(EmailSettings), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	m.logger.Debug().
		Str("event", "monitor.updated").
		Int("callbacks", len(callbacks)).
		Msg("email settings updated")

	for _, fn := range callbacks {
		fn(settings.Clone())
	}
}
