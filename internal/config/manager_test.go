// SPDX-License-Identifier: MIT

package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestManager_SaveRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := validTestConfig()
	cfg.Email.SMTP.Username = "mailer"
	cfg.Email.SMTP.Password = "s3cret"
	cfg.Email.SMTP.Timeout = 3 * time.Second

	if err := NewManager(configPath).Save(cfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := NewLoader(configPath, "test").Load()
	if err != nil {
		t.Fatalf("Load() of saved config failed: %v", err)
	}

	if loaded.Email.From != cfg.Email.From {
		t.Errorf("expected From %q, got %q", cfg.Email.From, loaded.Email.From)
	}
	if len(loaded.Email.To) != 1 || loaded.Email.To[0] != "ops@example.com" {
		t.Errorf("unexpected To list: %v", loaded.Email.To)
	}
	if loaded.Email.SMTP.Host != cfg.Email.SMTP.Host {
		t.Errorf("expected SMTP host %q, got %q", cfg.Email.SMTP.Host, loaded.Email.SMTP.Host)
	}
	if loaded.Email.SMTP.Port != cfg.Email.SMTP.Port {
		t.Errorf("expected SMTP port %d, got %d", cfg.Email.SMTP.Port, loaded.Email.SMTP.Port)
	}
	if loaded.Email.SMTP.Password != "s3cret" {
		t.Errorf("expected password round trip, got %q", loaded.Email.SMTP.Password)
	}
	if loaded.Email.SMTP.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", loaded.Email.SMTP.Timeout)
	}
}

func TestManager_SaveCreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	if err := NewManager(configPath).Save(validTestConfig()); err != nil {
		t.Fatalf("Save() into missing directory failed: %v", err)
	}

	if _, err := NewLoader(configPath, "test").Load(); err != nil {
		t.Fatalf("Load() of saved config failed: %v", err)
	}
}

func TestManager_SaveOverwritesAtomically(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeValidConfig(t, configPath, "old@example.com")

	cfg := validTestConfig()
	cfg.Email.To = []string{"replaced@example.com"}
	if err := NewManager(configPath).Save(cfg); err != nil {
		t.Fatalf("Save() over existing file failed: %v", err)
	}

	loaded, err := NewLoader(configPath, "test").Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(loaded.Email.To) != 1 || loaded.Email.To[0] != "replaced@example.com" {
		t.Errorf("expected overwritten To list, got %v", loaded.Email.To)
	}
}
