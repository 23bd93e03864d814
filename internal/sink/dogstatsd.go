// Package sink delivers poll cycle emissions to the configured monitoring
// backends. Every backend implements check.Sink; Multi fans one cycle out to
// several backends at once.
package sink

import (
	"fmt"

	"log/slog"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/aquamon/aquamon/internal/check"
	"github.com/aquamon/aquamon/internal/config"
)

// DogStatsD forwards gauges and service checks to a local Datadog agent over
// the dogstatsd protocol. Send failures are logged and swallowed so one bad
// datagram never aborts a poll cycle.
type DogStatsD struct {
	client *statsd.Client
	log    *slog.Logger
}

// NewDogStatsD connects a dogstatsd client to the configured agent address.
func NewDogStatsD(cfg *config.DogstatsdConfig, log *slog.Logger) (*DogStatsD, error) {
	client, err := statsd.New(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create dogstatsd client for %s: %w", cfg.Addr, err)
	}
	return &DogStatsD{client: client, log: log}, nil
}

func (d *DogStatsD) Gauge(name string, value float64, tags []string) {
	if err := d.client.Gauge(name, value, tags, 1); err != nil {
		d.log.Warn("Failed to send gauge to dogstatsd",
			slog.String("metric", name), slog.Any("error", err))
	}
}

func (d *DogStatsD) ServiceCheck(name string, status check.Status, tags []string, message string) {
	sc := statsd.NewServiceCheck(name, statsdStatus(status))
	sc.Tags = tags
	sc.Message = message
	if err := d.client.ServiceCheck(sc); err != nil {
		d.log.Warn("Failed to send service check to dogstatsd",
			slog.String("check", name), slog.Any("error", err))
	}
}

// Commit flushes buffered datagrams so a completed cycle is visible to the
// agent without waiting for the client's flush interval.
func (d *DogStatsD) Commit() {
	if err := d.client.Flush(); err != nil {
		d.log.Warn("Failed to flush dogstatsd client", slog.Any("error", err))
	}
}

// Close flushes and releases the underlying client.
func (d *DogStatsD) Close() error {
	return d.client.Close()
}

func statsdStatus(status check.Status) statsd.ServiceCheckStatus {
	switch status {
	case check.StatusOK:
		return statsd.Ok
	case check.StatusWarning:
		return statsd.Warn
	case check.StatusCritical:
		return statsd.Critical
	default:
		return statsd.Unknown
	}
}
