package agent2

import (
	"sync"

	"github.com/aquamon/aquamon/internal/check"
)

// ReportCache holds the most recent completed poll report in a thread-safe
// manner. Export reads from it; the background poll loop replaces it.
type ReportCache struct {
	mu     sync.RWMutex
	report *check.Report
}

// NewReportCache creates a new empty cache.
func NewReportCache() *ReportCache {
	return &ReportCache{}
}

// Update replaces the cached report atomically.
func (c *ReportCache) Update(report *check.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
}

// Report returns the cached report (nil if no poll has completed yet).
func (c *ReportCache) Report() *check.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.report
}
