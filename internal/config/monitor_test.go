// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestMonitor_InitialValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "initial@example.com")
	holder := loadInitial(t, configPath)

	monitor := NewMonitor(holder)

	got := monitor.Current()
	if len(got.To) != 1 || got.To[0] != "initial@example.com" {
		t.Errorf("expected monitor seeded with holder settings, got %v", got.To)
	}
}

func TestMonitor_CurrentReturnsCopy(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "initial@example.com")
	holder := loadInitial(t, configPath)

	monitor := NewMonitor(holder)

	got := monitor.Current()
	got.To[0] = "mutated@example.com"

	if monitor.Current().To[0] != "initial@example.com" {
		t.Error("Current() should return a deep copy, not shared slices")
	}
}

func TestMonitor_UpdatesAfterReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "old@example.com")
	holder := loadInitial(t, configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := NewMonitor(holder)
	monitor.Start(ctx)

	writeValidConfig(t, configPath, "new@example.com")
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	// The monitor applies the update asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := monitor.Current()
		if len(got.To) == 1 && got.To[0] == "new@example.com" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("monitor did not apply update, To=%v", monitor.Current().To)
}

func TestMonitor_OnChange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "old@example.com")
	holder := loadInitial(t, configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := NewMonitor(holder)

	changed := make(chan EmailSettings, 1)
	monitor.OnChange(func(s EmailSettings) {
		changed <- s
	})

	monitor.Start(ctx)

	writeValidConfig(t, configPath, "new@example.com")
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	select {
	case got := <-changed:
		if len(got.To) != 1 || got.To[0] != "new@example.com" {
			t.Errorf("expected callback with new To list, got %v", got.To)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnChange callback was not invoked")
	}
}

// A burst of reloads while the monitor goroutine is blocked in a callback
// overflows the buffer-1 listener channel. The monitor must still end up
// on the newest settings once the callback returns.
func TestMonitor_CoalescesBurstReloads(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "v0@example.com")
	holder := loadInitial(t, configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := NewMonitor(holder)

	release := make(chan struct{})
	monitor.OnChange(func(EmailSettings) {
		<-release
	})

	monitor.Start(ctx)

	for _, to := range []string{"v1@example.com", "v2@example.com", "v3@example.com"} {
		writeValidConfig(t, configPath, to)
		if err := holder.Reload(context.Background()); err != nil {
			t.Fatalf("Reload() failed: %v", err)
		}
	}
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := monitor.Current()
		if len(got.To) == 1 && got.To[0] == "v3@example.com" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("monitor stuck on stale settings, To=%v", monitor.Current().To)
}

func TestMonitor_StopsOnContextCancel(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "old@example.com")
	holder := loadInitial(t, configPath)

	ctx, cancel := context.WithCancel(context.Background())
	monitor := NewMonitor(holder)
	monitor.Start(ctx)
	cancel()

	// Give the loop a moment to exit, then verify updates are no longer applied
	time.Sleep(50 * time.Millisecond)

	writeValidConfig(t, configPath, "new@example.com")
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := monitor.Current(); len(got.To) == 1 && got.To[0] == "new@example.com" {
		t.Error("stopped monitor should not apply updates")
	}
}
