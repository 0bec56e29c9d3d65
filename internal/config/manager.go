// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// Save writes the configuration to disk atomically. Only user-configurable
// fields are written back.
func (m *Manager) Save(cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	port := cfg.Email.SMTP.Port
	fileCfg := FileConfig{
		LogLevel: cfg.LogLevel,
		Listen:   cfg.Listen,
		Metrics:  boolPtr(cfg.MetricsEnabled),
		Email: EmailFileConfig{
			From: cfg.Email.From,
			To:   cloneStrings(cfg.Email.To),
			CC:   cloneStrings(cfg.Email.CC),
			BCC:  cloneStrings(cfg.Email.BCC),
			SMTP: SMTPFileConfig{
				Host:     cfg.Email.SMTP.Host,
				Port:     &port,
				Username: cfg.Email.SMTP.Username,
				Password: cfg.Email.SMTP.Password,
				StartTLS: boolPtr(cfg.Email.SMTP.StartTLS),
				Timeout:  cfg.Email.SMTP.Timeout.String(),
			},
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fileCfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	if err := renameio.WriteFile(m.configPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func boolPtr(b bool) *bool { return &b }
