// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net/mail"
	"strings"
)

// Validate checks the resolved configuration. It is called on every load
// and reload; a failing reload must never replace a valid running config.
func Validate(cfg AppConfig) error {
	if strings.TrimSpace(cfg.Listen) == "" {
		return fmt.Errorf("listen address must not be empty")
	}

	if cfg.Email.From != "" {
		if _, err := mail.ParseAddress(cfg.Email.From); err != nil {
			return fmt.Errorf("email.from %q: %w", cfg.Email.From, err)
		}
	}

	for _, group := range []struct {
		name  string
		addrs []string
	}{
		{"email.to", cfg.Email.To},
		{"email.cc", cfg.Email.CC},
		{"email.bcc", cfg.Email.BCC},
	} {
		for _, addr := range group.addrs {
			if _, err := mail.ParseAddress(addr); err != nil {
				return fmt.Errorf("%s %q: %w", group.name, addr, err)
			}
		}
	}

	if cfg.Email.SMTP.Port < 1 || cfg.Email.SMTP.Port > 65535 {
		return fmt.Errorf("email.smtp.port %d out of range 1-65535", cfg.Email.SMTP.Port)
	}
	if cfg.Email.SMTP.Timeout < 0 {
		return fmt.Errorf("email.smtp.timeout must not be negative")
	}

	return nil
}
