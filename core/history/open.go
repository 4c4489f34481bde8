package history

import (
	"fmt"

	"github.com/kilianp07/adsp/config"
	"github.com/kilianp07/adsp/core/metrics"
)

// Open creates the store described by cfg. JSONL stores rotate when
// MaxSizeMB is set.
func Open(cfg config.HistoryConfig) (Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	}
}

// FromRun converts a run outcome. Makespan and cost are only set for
// solved runs.
func FromRun(rec metrics.RunRecord) Record {
	r := Record{
		Timestamp:  rec.Time,
		RunID:      rec.RunID,
		Instance:   rec.Instance,
		Strategy:   rec.Strategy,
		Status:     rec.Status,
		DurationMS: rec.Duration.Milliseconds(),
		Error:      rec.Error,
	}
	if rec.Status == metrics.StatusSolved {
		mk, cost := rec.Makespan, rec.Cost
		r.Makespan, r.Cost = &mk, &cost
	}
	return r
}
