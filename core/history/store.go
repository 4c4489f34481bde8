// Package history persists one record per solver run so that runs can be
// compared across strategies and instances.
package history

import (
	"context"
	"time"
)

// Record captures the outcome of one run.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	RunID         string    `json:"run_id"`
	Instance      string    `json:"instance"`
	Strategy      string    `json:"strategy"`
	Status        string    `json:"status"`
	Makespan      *int      `json:"makespan,omitempty"`
	Cost          *int      `json:"cost,omitempty"`
	MakespanBound int       `json:"makespan_bound"`
	CostBound     int       `json:"cost_bound"`
	Solutions     int       `json:"solutions"`
	DurationMS    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start    time.Time
	End      time.Time
	Instance string
	Strategy string
	Status   string
	Limit    int
}

// Store persists Records and supports querying. Records come back in
// insertion order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Match reports whether r passes the filters of q other than Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Instance != "" && r.Instance != q.Instance {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return true
}

// limit keeps the last q.Limit records.
func (q Query) limit(res []Record) []Record {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}
