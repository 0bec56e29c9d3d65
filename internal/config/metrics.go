// SPDX-License-Identifier: MIT

package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailcfg_config_reloads_total",
		Help: "Number of configuration reload attempts by result",
	}, []string{"result"})

	lastReloadTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mailcfg_config_last_reload_timestamp",
		Help: "Timestamp of the last successful configuration reload (Unix timestamp)",
	})

	watchEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailcfg_config_watch_events_total",
		Help: "Number of file watcher events observed on the config file",
	})
)
