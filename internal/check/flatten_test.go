package check

import (
	"errors"
	"testing"

	"github.com/aquamon/aquamon/internal/aqua"
)

func f64(v float64) *float64 { return &v }

func TestFlattenSeverities(t *testing.T) {
	counts := aqua.SeverityCounts{
		Total:  f64(10),
		High:   f64(2),
		Medium: f64(3),
		Ok:     f64(4),
		Low:    f64(1),
	}

	metrics, err := flattenSeverities(MetricImages, counts, []string{"env:prod"})
	if err != nil {
		t.Fatalf("flattenSeverities: %v", err)
	}

	want := []struct {
		value float64
		tag   string
	}{
		{10, "severity:all"},
		{2, "severity:high"},
		{3, "severity:medium"},
		{4, "severity:ok"},
		{1, "severity:low"},
	}
	if len(metrics) != len(want) {
		t.Fatalf("len(metrics) = %d, want %d", len(metrics), len(want))
	}
	for i, w := range want {
		m := metrics[i]
		if m.Name != MetricImages {
			t.Errorf("[%d] Name = %q, want %q", i, m.Name, MetricImages)
		}
		if m.Value != w.value {
			t.Errorf("[%d] Value = %g, want %g", i, m.Value, w.value)
		}
		if len(m.Tags) != 2 || m.Tags[0] != "env:prod" || m.Tags[1] != w.tag {
			t.Errorf("[%d] Tags = %v, want [env:prod %s]", i, m.Tags, w.tag)
		}
	}
}

func TestFlattenSeverities_MissingField(t *testing.T) {
	counts := aqua.SeverityCounts{
		Total:  f64(10),
		Medium: f64(3),
		Ok:     f64(4),
		Low:    f64(1),
	}

	_, err := flattenSeverities(MetricVulnerabilities, counts, nil)
	if err == nil {
		t.Fatal("expected error for missing high")
	}
	var extractErr *ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractError, got %T: %v", err, err)
	}
	if extractErr.Family != MetricVulnerabilities {
		t.Errorf("Family = %q, want %q", extractErr.Family, MetricVulnerabilities)
	}
	if extractErr.Field != "high" {
		t.Errorf("Field = %q, want high", extractErr.Field)
	}
}

func TestFlattenContainers(t *testing.T) {
	counts := aqua.ContainerCounts{Total: f64(50), Unregistered: f64(5)}

	metrics, err := flattenContainers(counts, nil)
	if err != nil {
		t.Fatalf("flattenContainers: %v", err)
	}

	if len(metrics) != 3 {
		t.Fatalf("len(metrics) = %d, want 3", len(metrics))
	}
	if metrics[0].Value != 50 || metrics[0].Tags[0] != "status:all" {
		t.Errorf("all = %+v", metrics[0])
	}
	if metrics[1].Value != 5 || metrics[1].Tags[0] != "status:unregistered" {
		t.Errorf("unregistered = %+v", metrics[1])
	}
	// registered is derived, not read from the payload
	if metrics[2].Value != 45 || metrics[2].Tags[0] != "status:registered" {
		t.Errorf("registered = %+v", metrics[2])
	}
}

func TestFlattenContainers_MissingField(t *testing.T) {
	_, err := flattenContainers(aqua.ContainerCounts{Total: f64(50)}, nil)
	var extractErr *ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractError, got %T: %v", err, err)
	}
	if extractErr.Field != "unregistered" {
		t.Errorf("Field = %q, want unregistered", extractErr.Field)
	}
}

func TestFlattenEnforcers(t *testing.T) {
	disconnected, err := flattenDisconnectedEnforcers(aqua.EnforcerCounts{DisconnectedCount: f64(2)}, []string{"env:prod"})
	if err != nil {
		t.Fatalf("flattenDisconnectedEnforcers: %v", err)
	}
	if len(disconnected) != 1 || disconnected[0].Value != 2 || disconnected[0].Tags[1] != "status:disconnected" {
		t.Errorf("disconnected = %+v", disconnected)
	}

	total, err := flattenEnforcerTotal(aqua.HostCount{Count: f64(12)}, nil)
	if err != nil {
		t.Fatalf("flattenEnforcerTotal: %v", err)
	}
	if len(total) != 1 || total[0].Value != 12 || total[0].Tags[0] != "status:all" {
		t.Errorf("total = %+v", total)
	}
}

func TestFlattenAuditAccess(t *testing.T) {
	totals := aqua.AuditTotals{
		Total:   f64(7),
		Success: f64(4),
		Blocked: f64(1),
		Detect:  f64(1),
		Alert:   f64(1),
	}

	metrics, err := flattenAuditAccess(totals, nil)
	if err != nil {
		t.Fatalf("flattenAuditAccess: %v", err)
	}

	wantTags := []string{"status:all", "status:success", "status:blocked", "status:detect", "status:alert"}
	if len(metrics) != len(wantTags) {
		t.Fatalf("len(metrics) = %d, want %d", len(metrics), len(wantTags))
	}
	for i, tag := range wantTags {
		if metrics[i].Tags[0] != tag {
			t.Errorf("[%d] tag = %q, want %q", i, metrics[i].Tags[0], tag)
		}
		if metrics[i].Name != MetricAuditAccess {
			t.Errorf("[%d] name = %q", i, metrics[i].Name)
		}
	}
}

func TestFlattenScanQueue(t *testing.T) {
	summary := aqua.ScanQueueSummary{
		Total:      f64(9),
		Failed:     f64(1),
		InProgress: f64(2),
		Finished:   f64(5),
		Pending:    f64(1),
	}

	metrics, err := flattenScanQueue(summary, nil)
	if err != nil {
		t.Fatalf("flattenScanQueue: %v", err)
	}

	wantTags := []string{"status:all", "status:failed", "status:in_progress", "status:finished", "status:pending"}
	for i, tag := range wantTags {
		if metrics[i].Tags[0] != tag {
			t.Errorf("[%d] tag = %q, want %q", i, metrics[i].Tags[0], tag)
		}
	}
}

func TestFlattenScanQueue_MissingField(t *testing.T) {
	summary := aqua.ScanQueueSummary{
		Total:    f64(9),
		Failed:   f64(1),
		Finished: f64(5),
		Pending:  f64(1),
	}

	_, err := flattenScanQueue(summary, nil)
	var extractErr *ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected *ExtractError, got %T: %v", err, err)
	}
	if extractErr.Field != "in_progress" {
		t.Errorf("Field = %q, want in_progress", extractErr.Field)
	}
}

func TestWithTag_DoesNotShareBackingArray(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "env:prod"

	a := withTag(base, "severity:all")
	b := withTag(base, "severity:high")

	if a[1] != "severity:all" || b[1] != "severity:high" {
		t.Errorf("tags overwrote each other: a=%v b=%v", a, b)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "OK"},
		{StatusWarning, "WARNING"},
		{StatusCritical, "CRITICAL"},
		{StatusUnknown, "UNKNOWN"},
		{Status(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestTagValue(t *testing.T) {
	tags := []string{"env:prod", "severity:high"}
	if v := TagValue(tags, "severity"); v != "high" {
		t.Errorf("TagValue severity = %q, want high", v)
	}
	if v := TagValue(tags, "status"); v != "" {
		t.Errorf("TagValue status = %q, want empty", v)
	}
}
