package sink

import (
	"fmt"

	"log/slog"

	"go.uber.org/fx"

	"github.com/aquamon/aquamon/internal/check"
	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/zabbix"
)

// Module provides the sink factory for fx injection.
var Module = fx.Module("sink",
	fx.Provide(NewFactory),
)

// Factory builds per-instance sinks from the backend configuration. The
// dogstatsd client and zabbix sender are shared across instances; Prometheus
// and trapper sinks only differ in their instance name.
type Factory struct {
	log          *slog.Logger
	dogstatsd    *DogStatsD
	prometheus   bool
	zabbixSender *zabbix.Sender
}

func NewFactory(cfg *config.Config, log *slog.Logger) (*Factory, error) {
	f := &Factory{log: log, prometheus: cfg.Prometheus.Enabled}

	if cfg.Dogstatsd.Enabled {
		d, err := NewDogStatsD(&cfg.Dogstatsd, log)
		if err != nil {
			return nil, fmt.Errorf("failed to set up dogstatsd sink: %w", err)
		}
		f.dogstatsd = d
	}

	if cfg.Zabbix.Enabled {
		f.zabbixSender = zabbix.NewSender(cfg, log)
	}

	if f.dogstatsd == nil && !f.prometheus && f.zabbixSender == nil {
		log.Warn("No metric backend enabled, poll results will be discarded")
	}

	return f, nil
}

// ForInstance returns the sink a runner for the named instance should emit
// into.
func (f *Factory) ForInstance(name string) check.Sink {
	var sinks []check.Sink
	if f.dogstatsd != nil {
		sinks = append(sinks, f.dogstatsd)
	}
	if f.prometheus {
		sinks = append(sinks, NewPrometheus(name, f.log))
	}
	if f.zabbixSender != nil {
		sinks = append(sinks, NewZabbixTrapper(name, f.zabbixSender, f.log))
	}
	return NewMulti(sinks...)
}

// Close releases backend connections.
func (f *Factory) Close() error {
	if f.dogstatsd != nil {
		return f.dogstatsd.Close()
	}
	return nil
}
