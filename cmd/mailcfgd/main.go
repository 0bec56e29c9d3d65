// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/mailcfgd/internal/api"
	"github.com/ManuGH/mailcfgd/internal/config"
	xglog "github.com/ManuGH/mailcfgd/internal/log"
	"github.com/ManuGH/mailcfgd/internal/mailer"
	"github.com/rs/zerolog"
)

var (
	version   = "v0.3.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	initConfig := flag.Bool("init", false, "write a starter config file and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "mailcfgd",
		Version: version,
	})

	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via --config
	// - MAILCFG_CONFIG
	// - Otherwise auto-load ./config.yaml if it exists
	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		effectiveConfigPath = strings.TrimSpace(config.ParseString("MAILCFG_CONFIG", ""))
	}
	explicitConfigPath := effectiveConfigPath
	if effectiveConfigPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			effectiveConfigPath = "config.yaml"
		}
	}

	if *initConfig {
		os.Exit(runInit(effectiveConfigPath, logger))
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	// Apply the configured log level now that it is known
	xglog.SetLevel(cfg.LogLevel)

	if explicitConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", explicitConfigPath).
			Msg("loaded configuration from file")
	} else if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file(auto)").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.Listen).
		Msg("starting mailcfgd")

	logger.Info().Msgf("→ Sender: %s", cfg.Email.From)
	logger.Info().Msgf("→ Recipients: %d to, %d cc, %d bcc",
		len(cfg.Email.To), len(cfg.Email.CC), len(cfg.Email.BCC))
	logger.Info().Msgf("→ SMTP: %s:%d (auth: %v)",
		cfg.Email.SMTP.Host, cfg.Email.SMTP.Port, cfg.Email.SMTP.Username != "")

	// Hot reload support: watch config file and allow SIGHUP/API-triggered
	// reload.
	holder := config.NewHolder(cfg, config.NewLoader(effectiveConfigPath, version), effectiveConfigPath)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.watcher_failed").
			Msg("failed to start config watcher")
	}
	defer holder.Stop()

	// SIGHUP triggers a manual reload, independent of the file watcher.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := holder.Reload(ctx); err != nil {
					logger.Error().
						Err(err).
						Str("event", "config.sighup_reload_failed").
						Msg("SIGHUP config reload failed")
				}
			}
		}
	}()

	monitor := config.NewMonitor(holder)
	monitor.Start(ctx)

	s := api.New(cfg, holder, monitor, api.WithMailer(mailer.New(monitor)))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("event", "http.listening").
			Str("addr", cfg.Listen).
			Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().
				Err(err).
				Str("event", "http.serve_failed").
				Msg("HTTP server failed")
		}
	case <-ctx.Done():
		logger.Info().Str("event", "shutdown.start").Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().
				Err(err).
				Str("event", "shutdown.failed").
				Msg("graceful shutdown failed")
		}
	}

	logger.Info().Msg("server exiting")
}

// runInit writes a starter config file with the resolved defaults so
// operators have a complete schema to edit.
func runInit(path string, logger zerolog.Logger) int {
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		logger.Error().
			Str("path", path).
			Msg("config file already exists, refusing to overwrite")
		return 1
	}

	cfg, err := config.NewLoader("", version).Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to build default configuration")
		return 1
	}

	if err := config.NewManager(path).Save(cfg); err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to write starter config")
		return 1
	}

	logger.Info().
		Str("event", "config.init").
		Str("path", path).
		Msg("starter config written")
	return 0
}
