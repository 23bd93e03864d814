// Package collector drives the poll schedule: every tick it runs one check
// cycle against each configured Aqua instance, bounded by a worker limit.
package collector

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/aquamon/aquamon/internal/aqua"
	"github.com/aquamon/aquamon/internal/check"
	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/telemetry"
)

// SinkFactory hands out the sink a cycle for the named instance emits into.
// *sink.Factory satisfies it; tests substitute recorders.
type SinkFactory interface {
	ForInstance(name string) check.Sink
}

// Collector polls all configured instances on a fixed interval. The instance
// set can be swapped between ticks (config hot-reload); a cycle in flight
// keeps the set it started with.
type Collector struct {
	interval time.Duration
	workers  int
	sinks    SinkFactory
	log      *slog.Logger

	mu        sync.Mutex
	instances []config.Instance
}

// New wires a collector from the loaded configuration.
func New(cfg *config.Config, sinks SinkFactory, log *slog.Logger) *Collector {
	return &Collector{
		interval:  time.Duration(cfg.Collector.Interval) * time.Second,
		workers:   cfg.Collector.Workers,
		sinks:     sinks,
		log:       log,
		instances: cfg.Instances,
	}
}

// SetInstances replaces the instance set for subsequent cycles.
func (c *Collector) SetInstances(instances []config.Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances = instances
	c.log.Info("Instance set updated", slog.Int("instances", len(instances)))
}

func (c *Collector) snapshot() []config.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]config.Instance, len(c.instances))
	copy(out, c.instances)
	return out
}

// Run polls immediately, then on every interval tick, until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	c.log.Info("Starting collector",
		slog.Duration("interval", c.interval), slog.Int("workers", c.workers))

	c.RunCycle(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RunCycle(ctx)
		case <-ctx.Done():
			c.log.Info("Collector stopped")
			return
		}
	}
}

// RunCycle polls every instance once. Instances run concurrently, bounded by
// the worker limit; each owns its own client, token and sink, so cycles share
// no state. Per-instance failures are already reported through the health
// signal and logs, so the cycle as a whole never fails.
func (c *Collector) RunCycle(ctx context.Context) {
	ctx, span := telemetry.Tracer().Start(ctx, "collector.RunCycle")
	defer span.End()

	instances := c.snapshot()
	if len(instances) == 0 {
		c.log.Warn("No instances configured, nothing to poll")
		return
	}

	workers := c.workers
	if workers <= 0 {
		workers = 1
	}
	semaphore := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for _, inst := range instances {
		wg.Add(1)
		go func(inst config.Instance) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			log := c.log.With(slog.String("instance", inst.Name))
			client := aqua.NewClient(&inst, log)
			runner := check.NewRunner(&inst, client, c.sinks.ForInstance(inst.Name), log)
			if err := runner.Run(ctx); err != nil {
				log.Warn("Poll cycle failed", slog.Any("error", err))
			}
		}(inst)
	}
	wg.Wait()
}
