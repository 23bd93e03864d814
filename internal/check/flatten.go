package check

import (
	"fmt"

	"github.com/aquamon/aquamon/internal/aqua"
)

// ExtractError reports a metric family whose payload is missing a field.
// The family is skipped as a whole; other families are unaffected.
type ExtractError struct {
	Family string
	Field  string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: response missing field %q", e.Family, e.Field)
}

// fieldTag pairs a payload field with the tag value it is emitted under.
// The slices below fix both the mapping and the emission order.
type fieldTag struct {
	Field string
	Tag   string
}

var severityOrder = []fieldTag{
	{"total", "all"},
	{"high", "high"},
	{"medium", "medium"},
	{"ok", "ok"},
	{"low", "low"},
}

var auditOrder = []fieldTag{
	{"total", "all"},
	{"success", "success"},
	{"blocked", "blocked"},
	{"detect", "detect"},
	{"alert", "alert"},
}

var scanQueueOrder = []fieldTag{
	{"total", "all"},
	{"failed", "failed"},
	{"in_progress", "in_progress"},
	{"finished", "finished"},
	{"pending", "pending"},
}

// flattenSeverities turns a severity breakdown into gauges tagged
// severity:<value>. A missing field fails the whole family.
func flattenSeverities(name string, counts aqua.SeverityCounts, tags []string) ([]Metric, error) {
	values := map[string]*float64{
		"total":  counts.Total,
		"high":   counts.High,
		"medium": counts.Medium,
		"ok":     counts.Ok,
		"low":    counts.Low,
	}
	out := make([]Metric, 0, len(severityOrder))
	for _, ft := range severityOrder {
		v := values[ft.Field]
		if v == nil {
			return nil, &ExtractError{Family: name, Field: ft.Field}
		}
		out = append(out, Metric{Name: name, Value: *v, Tags: withTag(tags, "severity:"+ft.Tag)})
	}
	return out, nil
}

// flattenContainers emits the running container counts. The registered count
// is not in the payload: it is derived as total minus unregistered.
func flattenContainers(counts aqua.ContainerCounts, tags []string) ([]Metric, error) {
	if counts.Total == nil {
		return nil, &ExtractError{Family: MetricRunningContainers, Field: "total"}
	}
	if counts.Unregistered == nil {
		return nil, &ExtractError{Family: MetricRunningContainers, Field: "unregistered"}
	}
	total, unregistered := *counts.Total, *counts.Unregistered
	return []Metric{
		{Name: MetricRunningContainers, Value: total, Tags: withTag(tags, "status:all")},
		{Name: MetricRunningContainers, Value: unregistered, Tags: withTag(tags, "status:unregistered")},
		{Name: MetricRunningContainers, Value: total - unregistered, Tags: withTag(tags, "status:registered")},
	}, nil
}

func flattenDisconnectedEnforcers(counts aqua.EnforcerCounts, tags []string) ([]Metric, error) {
	if counts.DisconnectedCount == nil {
		return nil, &ExtractError{Family: MetricEnforcers, Field: "disconnected_count"}
	}
	return []Metric{
		{Name: MetricEnforcers, Value: *counts.DisconnectedCount, Tags: withTag(tags, "status:disconnected")},
	}, nil
}

func flattenEnforcerTotal(hosts aqua.HostCount, tags []string) ([]Metric, error) {
	if hosts.Count == nil {
		return nil, &ExtractError{Family: MetricEnforcers, Field: "count"}
	}
	return []Metric{
		{Name: MetricEnforcers, Value: *hosts.Count, Tags: withTag(tags, "status:all")},
	}, nil
}

func flattenAuditAccess(totals aqua.AuditTotals, tags []string) ([]Metric, error) {
	values := map[string]*float64{
		"total":   totals.Total,
		"success": totals.Success,
		"blocked": totals.Blocked,
		"detect":  totals.Detect,
		"alert":   totals.Alert,
	}
	return flattenStatuses(MetricAuditAccess, auditOrder, values, tags)
}

func flattenScanQueue(summary aqua.ScanQueueSummary, tags []string) ([]Metric, error) {
	values := map[string]*float64{
		"total":       summary.Total,
		"failed":      summary.Failed,
		"in_progress": summary.InProgress,
		"finished":    summary.Finished,
		"pending":     summary.Pending,
	}
	return flattenStatuses(MetricScanQueue, scanQueueOrder, values, tags)
}

func flattenStatuses(name string, order []fieldTag, values map[string]*float64, tags []string) ([]Metric, error) {
	out := make([]Metric, 0, len(order))
	for _, ft := range order {
		v := values[ft.Field]
		if v == nil {
			return nil, &ExtractError{Family: name, Field: ft.Field}
		}
		out = append(out, Metric{Name: name, Value: *v, Tags: withTag(tags, "status:"+ft.Tag)})
	}
	return out, nil
}

// withTag returns a fresh tag slice so family emissions do not share backing
// arrays with the instance base tags.
func withTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag)
}
