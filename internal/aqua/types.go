package aqua

// Decode targets for the Aqua API payloads. Counts are pointers so that a
// field absent from the response is distinguishable from a zero count.

// SeverityCounts holds per-severity totals as reported under
// registry_counts for images and vulnerabilities.
type SeverityCounts struct {
	Total  *float64 `json:"total"`
	High   *float64 `json:"high"`
	Medium *float64 `json:"medium"`
	Ok     *float64 `json:"ok"`
	Low    *float64 `json:"low"`
}

// ContainerCounts holds the running container totals from the dashboard.
type ContainerCounts struct {
	Total        *float64 `json:"total"`
	Unregistered *float64 `json:"unregistered"`
}

// EnforcerCounts holds the enforcer host totals from the dashboard.
type EnforcerCounts struct {
	DisconnectedCount *float64 `json:"disconnected_count"`
}

// RegistryCounts groups the image and vulnerability severity breakdowns.
type RegistryCounts struct {
	Images          SeverityCounts `json:"images"`
	Vulnerabilities SeverityCounts `json:"vulnerabilities"`
}

// Dashboard is the subset of GET /api/v1/dashboard that feeds metrics.
type Dashboard struct {
	RegistryCounts    RegistryCounts  `json:"registry_counts"`
	RunningContainers ContainerCounts `json:"running_containers"`
	Hosts             EnforcerCounts  `json:"hosts"`
}

// HostCount is the subset of GET /api/v1/hosts that feeds metrics.
type HostCount struct {
	Count *float64 `json:"count"`
}

// AuditTotals is the response of GET /api/v1/audit/access_totals.
type AuditTotals struct {
	Total   *float64 `json:"total"`
	Success *float64 `json:"success"`
	Blocked *float64 `json:"blocked"`
	Detect  *float64 `json:"detect"`
	Alert   *float64 `json:"alert"`
}

// ScanQueueSummary is the response of GET /api/v1/scanqueue/summary.
type ScanQueueSummary struct {
	Total      *float64 `json:"total"`
	Failed     *float64 `json:"failed"`
	InProgress *float64 `json:"in_progress"`
	Finished   *float64 `json:"finished"`
	Pending    *float64 `json:"pending"`
}
