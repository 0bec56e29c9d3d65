// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied before file and environment merging.
const (
	DefaultListen      = ":8080"
	DefaultLogLevel    = "info"
	DefaultSMTPPort    = 587
	DefaultSMTPTimeout = 10 * time.Second
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader. An empty configPath means
// ENV-only operation.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
	}
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order is fixed: defaults, strict file parse, env overrides, validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{}
	l.setDefaults(&cfg)

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	mergeEnvConfig(&cfg)

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.Listen = DefaultListen
	cfg.LogLevel = DefaultLogLevel
	cfg.MetricsEnabled = true
	cfg.Email.SMTP.Port = DefaultSMTPPort
	cfg.Email.SMTP.StartTLS = true
	cfg.Email.SMTP.Timeout = DefaultSMTPTimeout
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields cause an error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// mergeFileConfig applies file values over defaults. Absent fields leave
// the defaults untouched.
func mergeFileConfig(cfg *AppConfig, file *FileConfig) error {
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.Listen != "" {
		cfg.Listen = file.Listen
	}
	if file.Metrics != nil {
		cfg.MetricsEnabled = *file.Metrics
	}

	if file.Email.From != "" {
		cfg.Email.From = file.Email.From
	}
	if file.Email.To != nil {
		cfg.Email.To = cloneStrings(file.Email.To)
	}
	if file.Email.CC != nil {
		cfg.Email.CC = cloneStrings(file.Email.CC)
	}
	if file.Email.BCC != nil {
		cfg.Email.BCC = cloneStrings(file.Email.BCC)
	}

	smtp := file.Email.SMTP
	if smtp.Host != "" {
		cfg.Email.SMTP.Host = smtp.Host
	}
	if smtp.Port != nil {
		cfg.Email.SMTP.Port = *smtp.Port
	}
	if smtp.Username != "" {
		cfg.Email.SMTP.Username = smtp.Username
	}
	if smtp.Password != "" {
		cfg.Email.SMTP.Password = smtp.Password
	}
	if smtp.StartTLS != nil {
		cfg.Email.SMTP.StartTLS = *smtp.StartTLS
	}
	if smtp.Timeout != "" {
		d, err := time.ParseDuration(smtp.Timeout)
		if err != nil {
			return fmt.Errorf("email.smtp.timeout: %w", err)
		}
		cfg.Email.SMTP.Timeout = d
	}

	return nil
}

// mergeEnvConfig overrides with environment variables (highest priority).
// The current value doubles as the default, so unset variables are no-ops.
func mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = ParseString("MAILCFG_LOG_LEVEL", cfg.LogLevel)
	cfg.Listen = ParseString("MAILCFG_LISTEN", cfg.Listen)
	cfg.MetricsEnabled = ParseBool("MAILCFG_METRICS", cfg.MetricsEnabled)

	cfg.Email.From = ParseString("MAILCFG_EMAIL_FROM", cfg.Email.From)
	cfg.Email.To = ParseStringSlice("MAILCFG_EMAIL_TO", cfg.Email.To)
	cfg.Email.CC = ParseStringSlice("MAILCFG_EMAIL_CC", cfg.Email.CC)
	cfg.Email.BCC = ParseStringSlice("MAILCFG_EMAIL_BCC", cfg.Email.BCC)

	cfg.Email.SMTP.Host = ParseString("MAILCFG_SMTP_HOST", cfg.Email.SMTP.Host)
	cfg.Email.SMTP.Port = ParseInt("MAILCFG_SMTP_PORT", cfg.Email.SMTP.Port)
	cfg.Email.SMTP.Username = ParseString("MAILCFG_SMTP_USERNAME", cfg.Email.SMTP.Username)
	cfg.Email.SMTP.Password = ParseString("MAILCFG_SMTP_PASSWORD", cfg.Email.SMTP.Password)
	cfg.Email.SMTP.StartTLS = ParseBool("MAILCFG_SMTP_STARTTLS", cfg.Email.SMTP.StartTLS)
	cfg.Email.SMTP.Timeout = ParseDuration("MAILCFG_SMTP_TIMEOUT", cfg.Email.SMTP.Timeout)
}
