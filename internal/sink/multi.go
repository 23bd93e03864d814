package sink

import "github.com/aquamon/aquamon/internal/check"

// Multi fans every emission out to all wrapped sinks. With no sinks it is a
// valid sink that drops everything.
type Multi struct {
	sinks []check.Sink
}

func NewMulti(sinks ...check.Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Gauge(name string, value float64, tags []string) {
	for _, s := range m.sinks {
		s.Gauge(name, value, tags)
	}
}

func (m *Multi) ServiceCheck(name string, status check.Status, tags []string, message string) {
	for _, s := range m.sinks {
		s.ServiceCheck(name, status, tags, message)
	}
}

func (m *Multi) Commit() {
	for _, s := range m.sinks {
		s.Commit()
	}
}
