package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/sink"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll configured Aqua consoles on an interval",
	Long: `Run the collector daemon.

Every collector.interval seconds each configured Aqua instance is polled
once: login, dashboard, hosts, audit access totals and scan queue summary.
Emissions go to the enabled backends (DogStatsD, Prometheus, Zabbix
trapper). The config file is watched; edits swap the instance set without
a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := GetLogger()
		cfg := GetConfig()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		col, sinks, err := initCollector(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize collector: %w", err)
		}
		defer func() { _ = sinks.Close() }()

		if cfg.Prometheus.Enabled {
			srv := sink.NewServer(cfg.Prometheus.Listen, log)
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("Prometheus endpoint failed", slog.Any("error", err))
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Stop(shutdownCtx)
			}()
		}

		go func() {
			if err := config.Watch(ctx, cfgFile, log, func(next *config.Config) {
				col.SetInstances(next.Instances)
			}); err != nil {
				log.Error("Config watch failed, hot-reload disabled", slog.Any("error", err))
			}
		}()

		col.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
