package history

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/adsp/core/metrics"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:history.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	mk, cost := 8, 80
	rec := Record{
		Timestamp: time.Now(),
		RunID:     "run-1",
		Instance:  "TwoOps",
		Strategy:  "LEX-AUTO",
		Status:    metrics.StatusSolved,
		Makespan:  &mk,
		Cost:      &cost,
		Solutions: 2,
	}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(context.Background(), Record{Timestamp: time.Now(), Instance: "Hangar", Status: metrics.StatusFailed}); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(context.Background(), Query{Status: metrics.StatusSolved})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0].Makespan == nil || *out[0].Makespan != 8 {
		t.Fatalf("unexpected makespan %+v", out[0].Makespan)
	}
}
