// SPDX-License-Identifier: MIT

// Package config implements typed configuration for mailcfgd with the
// precedence ENV > file > defaults and three freshness strategies on top:
// a startup snapshot, per-request resolution via Holder.Get, and a
// push-updated Monitor fed by file-watch reloads.
package config

import "time"

// FileConfig is the on-disk YAML schema. Pointer and string fields
// distinguish "absent" from "zero" so file values only override defaults
// when actually present.
type FileConfig struct {
	LogLevel string          `yaml:"logLevel,omitempty"`
	Listen   string          `yaml:"listen,omitempty"`
	Metrics  *bool           `yaml:"metrics,omitempty"`
	Email    EmailFileConfig `yaml:"email"`
}

// EmailFileConfig is the "email" section of the config file.
type EmailFileConfig struct {
	From string         `yaml:"from,omitempty"`
	To   []string       `yaml:"to,omitempty"`
	CC   []string       `yaml:"cc,omitempty"`
	BCC  []string       `yaml:"bcc,omitempty"`
	SMTP SMTPFileConfig `yaml:"smtp,omitempty"`
}

// SMTPFileConfig carries the SMTP credentials in file form. Timeout is a Go
// duration string (e.g. "10s").
type SMTPFileConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     *int   `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	StartTLS *bool  `yaml:"startTLS,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	LogLevel       string
	Listen         string
	MetricsEnabled bool
	Version        string
	Email          EmailSettings
}

// EmailSettings is the typed binding of the "email" section. A resolved
// instance is immutable; every successful reload constructs a new one.
type EmailSettings struct {
	From string
	To   []string
	CC   []string
	BCC  []string
	SMTP SMTPSettings
}

// SMTPSettings holds the SMTP endpoint and credentials.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	StartTLS bool
	Timeout  time.Duration
}

// Recipients is the response projection of EmailSettings limited to the
// sender and recipient lists.
type Recipients struct {
	From string   `json:"from"`
	To   []string `json:"to"`
	CC   []string `json:"cc"`
	BCC  []string `json:"bcc"`
}

// Clone returns a deep copy. Slice headers must not be shared between the
// startup snapshot and reloaded configs.
func (e EmailSettings) Clone() EmailSettings {
	out := e
	out.To = cloneStrings(e.To)
	out.CC = cloneStrings(e.CC)
	out.BCC = cloneStrings(e.BCC)
	return out
}

// Recipients projects the settings to the read-endpoint response shape.
func (e EmailSettings) Recipients() Recipients {
	return Recipients{
		From: e.From,
		To:   cloneStrings(e.To),
		CC:   cloneStrings(e.CC),
		BCC:  cloneStrings(e.BCC),
	}
}

// Clone returns a deep copy of the whole runtime configuration.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.Email = c.Email.Clone()
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
