package cmd

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/aquamon/aquamon/internal/collector"
	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/sink"
	"github.com/aquamon/aquamon/internal/zabbix"
)

func initCollector(cfg *config.Config, log *slog.Logger) (*collector.Collector, *sink.Factory, error) {
	var (
		col     *collector.Collector
		factory *sink.Factory
	)
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, log),
		sink.Module,
		collector.Module,
		fx.Populate(&col, &factory),
	)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return col, factory, nil
}

func initZabbixClient(cfg *config.Config, log *slog.Logger) (*zabbix.Client, error) {
	var c *zabbix.Client
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, log),
		zabbix.Module,
		fx.Populate(&c),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return c, nil
}
