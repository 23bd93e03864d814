package collector

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/sink"
)

// Module provides the collector for fx injection.
var Module = fx.Module("collector",
	fx.Provide(func(cfg *config.Config, sinks *sink.Factory, log *slog.Logger) *Collector {
		return New(cfg, sinks, log)
	}),
)
