// Package cmd wires the aquamon CLI: config loading, logging and telemetry
// bootstrap in the root command, one subcommand per operation.
package cmd

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/telemetry"
)

var (
	cfgFile      string
	verbose      bool
	cfg          *config.Config
	log          *slog.Logger
	otelShutdown func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "aquamon",
	Short: "Aqua CSP metrics collector",
	Long: `aquamon polls one or more Aqua Container Security Platform consoles
and republishes security posture gauges (image and vulnerability counts
by severity, container registration, enforcer connectivity, audit and
scan queue breakdowns) plus a connectivity service check into DogStatsD,
Prometheus or Zabbix.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that handle their own config
		if cmd.Name() == "version" || cmd.Name() == "migrate-config" {
			return nil
		}

		// Initialize logger
		log = newLogger(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Initialize OpenTelemetry
		otelShutdown, err = telemetry.Init(context.Background(), &cfg.Telemetry, verbose)
		if err != nil {
			return fmt.Errorf("failed to init telemetry: %w", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if otelShutdown != nil {
			return otelShutdown(context.Background())
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.FindConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func GetConfig() *config.Config {
	return cfg
}

func GetLogger() *slog.Logger {
	return log
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
