package check

import (
	"context"
	"fmt"

	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aquamon/aquamon/internal/aqua"
	"github.com/aquamon/aquamon/internal/config"
	"github.com/aquamon/aquamon/internal/telemetry"
)

// Runner executes poll cycles for one Aqua instance. A cycle keeps no state:
// the token is obtained fresh each time and passed down explicitly, so Run
// may be called repeatedly and concurrently with distinct sinks.
type Runner struct {
	inst   *config.Instance
	client *aqua.Client
	sink   Sink
	log    *slog.Logger
}

// NewRunner wires a runner from its dependencies.
func NewRunner(inst *config.Instance, client *aqua.Client, sink Sink, log *slog.Logger) *Runner {
	return &Runner{
		inst:   inst,
		client: client,
		sink:   sink,
		log:    log,
	}
}

// Run performs one poll cycle.
//
// A missing required instance field aborts before any network I/O and before
// any emission. A login failure emits exactly one CRITICAL aqua.can_connect
// and nothing else. After a successful login the health check is emitted
// first, then each metric family independently: a family that fails to fetch
// or extract is logged and skipped while the rest of the cycle proceeds, and
// the health status does not change.
func (r *Runner) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer().Start(ctx, "check.Run")
	defer span.End()

	span.SetAttributes(attribute.String("aqua.instance", r.inst.Name))

	if err := r.inst.Validate(); err != nil {
		return fmt.Errorf("invalid aqua instance %q: %w", r.inst.Name, err)
	}

	token, err := r.client.Login(ctx)
	if err != nil {
		r.log.Error("Failed to get Aqua token, skipping check",
			slog.String("instance", r.inst.Name), slog.Any("error", err))
		r.sink.ServiceCheck(ServiceCheckName, StatusCritical, r.inst.Tags, err.Error())
		r.sink.Commit()
		return err
	}
	r.sink.ServiceCheck(ServiceCheckName, StatusOK, r.inst.Tags, "")

	r.reportDashboard(ctx, token)
	r.reportEnforcerTotal(ctx, token)
	r.reportAuditAccess(ctx, token)
	r.reportScanQueue(ctx, token)

	r.sink.Commit()
	return nil
}

// reportDashboard emits the four families backed by /api/v1/dashboard:
// images, vulnerabilities, running containers and disconnected enforcers.
// One fetch failure loses all four; extraction failures lose one each.
func (r *Runner) reportDashboard(ctx context.Context, token string) {
	dashboard, err := r.client.Dashboard(ctx, token)
	if err != nil {
		r.log.Error("Failed to get base metrics, some metrics will be missing",
			slog.String("instance", r.inst.Name), slog.Any("error", err))
		return
	}

	images, err := flattenSeverities(MetricImages, dashboard.RegistryCounts.Images, r.inst.Tags)
	r.emit(images, err)

	vulnerabilities, err := flattenSeverities(MetricVulnerabilities, dashboard.RegistryCounts.Vulnerabilities, r.inst.Tags)
	r.emit(vulnerabilities, err)

	containers, err := flattenContainers(dashboard.RunningContainers, r.inst.Tags)
	r.emit(containers, err)

	disconnected, err := flattenDisconnectedEnforcers(dashboard.Hosts, r.inst.Tags)
	r.emit(disconnected, err)
}

func (r *Runner) reportEnforcerTotal(ctx context.Context, token string) {
	hosts, err := r.client.Hosts(ctx, token)
	if err != nil {
		r.log.Error("Failed to get enforcer metrics",
			slog.String("instance", r.inst.Name), slog.Any("error", err))
		return
	}
	metrics, err := flattenEnforcerTotal(*hosts, r.inst.Tags)
	r.emit(metrics, err)
}

func (r *Runner) reportAuditAccess(ctx context.Context, token string) {
	totals, err := r.client.AuditAccessTotals(ctx, token)
	if err != nil {
		r.log.Error("Failed to get audit access metrics",
			slog.String("instance", r.inst.Name), slog.Any("error", err))
		return
	}
	metrics, err := flattenAuditAccess(*totals, r.inst.Tags)
	r.emit(metrics, err)
}

func (r *Runner) reportScanQueue(ctx context.Context, token string) {
	summary, err := r.client.ScanQueueSummary(ctx, token)
	if err != nil {
		r.log.Error("Failed to get scan queue metrics",
			slog.String("instance", r.inst.Name), slog.Any("error", err))
		return
	}
	metrics, err := flattenScanQueue(*summary, r.inst.Tags)
	r.emit(metrics, err)
}

// emit forwards one extracted family to the sink, or logs why it is skipped.
func (r *Runner) emit(metrics []Metric, err error) {
	if err != nil {
		r.log.Error("Failed to extract metric family, skipping it",
			slog.String("instance", r.inst.Name), slog.Any("error", err))
		return
	}
	for _, m := range metrics {
		r.sink.Gauge(m.Name, m.Value, m.Tags)
	}
}
