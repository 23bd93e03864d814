// Package check runs one Aqua poll cycle: authenticate, fetch the console
// endpoints, flatten the payloads into tagged gauges and report instance
// health through a Sink.
package check

// Metric and service check names emitted per cycle.
const (
	MetricImages            = "aqua.images"
	MetricVulnerabilities   = "aqua.vulnerabilities"
	MetricRunningContainers = "aqua.running_containers"
	MetricEnforcers         = "aqua.enforcers"
	MetricAuditAccess       = "aqua.audit.access"
	MetricScanQueue         = "aqua.scan_queue"

	ServiceCheckName = "aqua.can_connect"
)

// Status is a service check status, numbered the way the Datadog wire
// protocol numbers them.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Sink receives the emissions of a poll cycle. Implementations forward them
// to a metrics pipeline (DogStatsD, Prometheus, Zabbix) or capture them in
// memory. Commit marks the end of a cycle so buffering sinks can flush.
type Sink interface {
	Gauge(name string, value float64, tags []string)
	ServiceCheck(name string, status Status, tags []string, message string)
	Commit()
}

// Family describes one metric family: its tag dimension and the tag values a
// complete poll cycle emits for it, in emission order. Zabbix trapper item
// provisioning and the Agent 2 key space are derived from this list.
type Family struct {
	Name      string
	Dimension string
	Values    []string
}

// Families returns the metric families of one poll cycle in emission order.
func Families() []Family {
	return []Family{
		{MetricImages, "severity", []string{"all", "high", "medium", "ok", "low"}},
		{MetricVulnerabilities, "severity", []string{"all", "high", "medium", "ok", "low"}},
		{MetricRunningContainers, "status", []string{"all", "unregistered", "registered"}},
		{MetricEnforcers, "status", []string{"disconnected", "all"}},
		{MetricAuditAccess, "status", []string{"all", "success", "blocked", "detect", "alert"}},
		{MetricScanQueue, "status", []string{"all", "failed", "in_progress", "finished", "pending"}},
	}
}
