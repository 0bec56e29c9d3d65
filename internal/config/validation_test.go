// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"
)

func validTestConfig() AppConfig {
	return AppConfig{
		Listen:   ":8080",
		LogLevel: "info",
		Email: EmailSettings{
			From: "noreply@example.com",
			To:   []string{"ops@example.com"},
			CC:   []string{"audit@example.com"},
			BCC:  []string{"archive@example.com"},
			SMTP: SMTPSettings{
				Host:    "smtp.example.com",
				Port:    587,
				Timeout: 10 * time.Second,
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(*AppConfig) {},
		},
		{
			name: "empty_from_allowed",
			mutate: func(c *AppConfig) {
				c.Email.From = ""
			},
		},
		{
			name: "display_name_address_allowed",
			mutate: func(c *AppConfig) {
				c.Email.From = "Alerts <alerts@example.com>"
			},
		},
		{
			name: "invalid_from",
			mutate: func(c *AppConfig) {
				c.Email.From = "not an address"
			},
			wantErr: true,
		},
		{
			name: "invalid_to_entry",
			mutate: func(c *AppConfig) {
				c.Email.To = []string{"ok@example.com", "broken"}
			},
			wantErr: true,
		},
		{
			name: "invalid_cc_entry",
			mutate: func(c *AppConfig) {
				c.Email.CC = []string{"@nope"}
			},
			wantErr: true,
		},
		{
			name: "invalid_bcc_entry",
			mutate: func(c *AppConfig) {
				c.Email.BCC = []string{""}
			},
			wantErr: true,
		},
		{
			name: "port_zero",
			mutate: func(c *AppConfig) {
				c.Email.SMTP.Port = 0
			},
			wantErr: true,
		},
		{
			name: "port_too_large",
			mutate: func(c *AppConfig) {
				c.Email.SMTP.Port = 70000
			},
			wantErr: true,
		},
		{
			name: "negative_timeout",
			mutate: func(c *AppConfig) {
				c.Email.SMTP.Timeout = -time.Second
			},
			wantErr: true,
		},
		{
			name: "empty_listen",
			mutate: func(c *AppConfig) {
				c.Listen = "  "
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
