package sink

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aquamon/aquamon/internal/check"
)

var (
	imagesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_images",
		Help: "Number of container images known to the Aqua registry by severity.",
	}, []string{"instance", "severity"})

	vulnerabilitiesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_vulnerabilities",
		Help: "Number of vulnerabilities found in registry images by severity.",
	}, []string{"instance", "severity"})

	runningContainersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_running_containers",
		Help: "Number of running containers by registration status.",
	}, []string{"instance", "status"})

	enforcersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_enforcers",
		Help: "Number of Aqua enforcers by connection status.",
	}, []string{"instance", "status"})

	auditAccessGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_audit_access",
		Help: "Audit access events over the last hour by outcome.",
	}, []string{"instance", "status"})

	scanQueueGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_scan_queue",
		Help: "Scan queue entries by state.",
	}, []string{"instance", "status"})

	canConnectGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aqua_can_connect",
		Help: "Whether the collector could authenticate against the Aqua console (1 or 0).",
	}, []string{"instance"})
)

// Prometheus exposes cycle emissions through the process-wide Prometheus
// registry. One value per instance is retained until the next cycle
// overwrites it.
type Prometheus struct {
	instance string
	log      *slog.Logger
}

func NewPrometheus(instance string, log *slog.Logger) *Prometheus {
	return &Prometheus{instance: instance, log: log}
}

func (p *Prometheus) Gauge(name string, value float64, tags []string) {
	switch name {
	case check.MetricImages:
		imagesGauge.WithLabelValues(p.instance, check.TagValue(tags, "severity")).Set(value)
	case check.MetricVulnerabilities:
		vulnerabilitiesGauge.WithLabelValues(p.instance, check.TagValue(tags, "severity")).Set(value)
	case check.MetricRunningContainers:
		runningContainersGauge.WithLabelValues(p.instance, check.TagValue(tags, "status")).Set(value)
	case check.MetricEnforcers:
		enforcersGauge.WithLabelValues(p.instance, check.TagValue(tags, "status")).Set(value)
	case check.MetricAuditAccess:
		auditAccessGauge.WithLabelValues(p.instance, check.TagValue(tags, "status")).Set(value)
	case check.MetricScanQueue:
		scanQueueGauge.WithLabelValues(p.instance, check.TagValue(tags, "status")).Set(value)
	default:
		p.log.Debug("Dropping gauge with no Prometheus mapping", slog.String("metric", name))
	}
}

func (p *Prometheus) ServiceCheck(name string, status check.Status, _ []string, _ string) {
	if name != check.ServiceCheckName {
		return
	}
	value := 0.0
	if status == check.StatusOK {
		value = 1
	}
	canConnectGauge.WithLabelValues(p.instance).Set(value)
}

// Commit is a no-op: gauges stay exposed until the next cycle replaces them.
func (p *Prometheus) Commit() {}
