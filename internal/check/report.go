package check

import (
	"strings"
	"sync"
	"time"
)

// Metric is one tagged gauge sample.
type Metric struct {
	Name  string
	Value float64
	Tags  []string
}

// HealthEvent is one service check emission.
type HealthEvent struct {
	Name    string
	Status  Status
	Tags    []string
	Message string
}

// Report is the complete output of one poll cycle.
type Report struct {
	Metrics     []Metric
	Checks      []HealthEvent
	CompletedAt time.Time
}

// Lookup returns the value of the first metric with the given name carrying
// the given tag.
func (r *Report) Lookup(name, tag string) (float64, bool) {
	for _, m := range r.Metrics {
		if m.Name != name {
			continue
		}
		for _, t := range m.Tags {
			if t == tag {
				return m.Value, true
			}
		}
	}
	return 0, false
}

// Check returns the first service check emission with the given name.
func (r *Report) Check(name string) (HealthEvent, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return HealthEvent{}, false
}

// Recorder is a Sink that captures emissions in memory. It backs the
// one-shot CLI output, the Agent 2 item cache and tests.
type Recorder struct {
	mu      sync.Mutex
	metrics []Metric
	checks  []HealthEvent
	done    time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Gauge(name string, value float64, tags []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, Metric{Name: name, Value: value, Tags: cloneTags(tags)})
}

func (r *Recorder) ServiceCheck(name string, status Status, tags []string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, HealthEvent{Name: name, Status: status, Tags: cloneTags(tags), Message: message})
}

func (r *Recorder) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = time.Now()
}

// Report returns a snapshot of everything recorded so far.
func (r *Recorder) Report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep := &Report{
		Metrics:     make([]Metric, len(r.metrics)),
		Checks:      make([]HealthEvent, len(r.checks)),
		CompletedAt: r.done,
	}
	copy(rep.Metrics, r.metrics)
	copy(rep.Checks, r.checks)
	return rep
}

func cloneTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// TagValue extracts the value of a key:value tag from a tag list. It returns
// an empty string when the key is not present.
func TagValue(tags []string, key string) string {
	prefix := key + ":"
	for _, t := range tags {
		if strings.HasPrefix(t, prefix) {
			return strings.TrimPrefix(t, prefix)
		}
	}
	return ""
}
