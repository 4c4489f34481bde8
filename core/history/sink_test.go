package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/core/metrics"
)

func TestSinkAppendsRun(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "h.jsonl"))
	require.NoError(t, err)
	sink := NewSink(store)
	var _ metrics.RunRecorder = sink
	var _ metrics.PhaseRecorder = sink

	require.NoError(t, sink.RecordSolution(metrics.SolutionRecord{RunID: "r1", Makespan: 9}))
	require.NoError(t, sink.RecordSolution(metrics.SolutionRecord{RunID: "r1", Makespan: 8}))
	require.NoError(t, sink.RecordSolution(metrics.SolutionRecord{RunID: "other"}))
	require.NoError(t, sink.RecordPhase(metrics.PhaseRecord{RunID: "r1", Objective: "makespan", Bound: 8}))
	require.NoError(t, sink.RecordPhase(metrics.PhaseRecord{RunID: "r1", Objective: "cost", Bound: 80}))
	require.NoError(t, sink.RecordRun(metrics.RunRecord{
		RunID: "r1", Instance: "TwoOps", Strategy: "LEX-AUTO", Status: metrics.StatusSolved,
		Makespan: 8, Cost: 80, Duration: time.Second, Time: time.Now(),
	}))

	out, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	r := out[0]
	assert.Equal(t, 2, r.Solutions)
	assert.Equal(t, 8, r.MakespanBound)
	assert.Equal(t, 80, r.CostBound)
	assert.Equal(t, 8, *r.Makespan)
	assert.Equal(t, "LEX-AUTO", r.Strategy)
}

func TestSinkFailedRun(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "h.jsonl"))
	require.NoError(t, err)
	sink := NewSink(store)
	require.NoError(t, sink.RecordRun(metrics.RunRecord{RunID: "r", Status: metrics.StatusFailed, Error: "engine: next: boom"}))
	out, err := store.Query(context.Background(), Query{Status: metrics.StatusFailed})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Makespan)
	assert.Equal(t, "engine: next: boom", out[0].Error)
}
