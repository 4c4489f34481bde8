// Package monitoring reports failed runs to an error tracker. Until Init
// installs a monitor every report is discarded.
package monitoring

import (
	"maps"
	"time"
)

// Tags locate a failure: the component that raised it and the run it
// belongs to. Empty fields are left out of the report.
type Tags struct {
	Module   string
	Instance string
	RunID    string
	Strategy string
	// Extra carries component specific tags such as the MQTT message kind.
	Extra map[string]string
}

// Map flattens t into tracker tags.
func (t Tags) Map() map[string]string {
	m := make(map[string]string, 4+len(t.Extra))
	maps.Copy(m, t.Extra)
	for k, v := range map[string]string{
		"module":   t.Module,
		"instance": t.Instance,
		"run_id":   t.RunID,
		"strategy": t.Strategy,
	} {
		if v != "" {
			m[k] = v
		}
	}
	return m
}

// Monitor receives run failures.
type Monitor interface {
	CaptureException(err error, tags Tags)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, Tags) {}
func (NopMonitor) Flush(time.Duration)          {}

var current Monitor = NopMonitor{}

// Init installs m as the process monitor; nil keeps the current one.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException reports err, ignoring nil errors.
func CaptureException(err error, tags Tags) {
	if err != nil {
		current.CaptureException(err, tags)
	}
}

// Flush waits up to d for pending reports.
func Flush(d time.Duration) { current.Flush(d) }
