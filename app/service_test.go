package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/config"
	"github.com/kilianp07/adsp/core/history"
	coremetrics "github.com/kilianp07/adsp/core/metrics"
	"github.com/kilianp07/adsp/internal/fixture"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.CSV = true
	cfg.Report.Enabled = true
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(dir, "history.jsonl")
	cfg.Search.TimeLimitSeconds = 2
	cfg.Search.SecondTimeLimitSeconds = 1
	cfg.Search.Workers = 2
	cfg.Search.Seed = 7
	return cfg
}

func TestSolveWritesOutputs(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	svc.Start(context.Background())
	defer func() { _ = svc.Close() }()

	out, err := svc.Solve(context.Background(), Request{Instance: fixture.TwoOps(), Silent: true})
	require.NoError(t, err)
	require.NotNil(t, out.Result.Best)
	assert.Equal(t, 8, out.Result.Best.Makespan)
	assert.Equal(t, 80, out.Result.Best.Cost)
	assert.Equal(t, "LEX-AUTO", out.Result.Strategy)

	for _, name := range []string{
		filepath.Join("logs", "two-ops.json"),
		filepath.Join("solutions", "two-ops.json"),
		filepath.Join("solutions", "two-ops.csv"),
		filepath.Join("reports", "two-ops.html"),
	} {
		assert.FileExists(t, filepath.Join(cfg.Output.Dir, name))
	}
	assert.Len(t, out.Files, 4)

	recs, err := svc.History(context.Background(), history.Query{Instance: "two-ops"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, coremetrics.StatusSolved, recs[0].Status)
	assert.Equal(t, out.Result.RunID, recs[0].RunID)
	assert.Positive(t, recs[0].Solutions)
}

func TestSolveWarmStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = false
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	first, err := svc.Solve(context.Background(), Request{Instance: fixture.Hangar(), Strategy: "MK-AUTO", Silent: true})
	require.NoError(t, err)
	require.NotNil(t, first.Result.Best)

	prior := first.Result.Best
	second, err := svc.Solve(context.Background(), Request{Instance: prior.Instance, Prior: prior, Strategy: "CST-AUTO", Silent: true})
	require.NoError(t, err)
	require.NotNil(t, second.Result.Best)
	assert.LessOrEqual(t, second.Result.Best.Makespan, prior.Makespan)
	assert.LessOrEqual(t, second.Result.Best.Cost, prior.Cost)

	_, err = svc.History(context.Background(), history.Query{})
	assert.Error(t, err)
}

func TestSolveUnknownStrategyFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Enabled = false
	cfg.Output.CSV = false
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	out, err := svc.Solve(context.Background(), Request{Instance: fixture.TwoOps(), Strategy: "BOGUS", Silent: true})
	require.NoError(t, err)
	assert.Equal(t, "LEX-AUTO", out.Result.Strategy)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "reports"))
	assert.True(t, os.IsNotExist(err))
}

func TestSolveBuildError(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	_, err = svc.Solve(context.Background(), Request{Instance: fixture.Cyclic(), Silent: true})
	assert.Error(t, err)
	_, err = svc.Solve(context.Background(), Request{})
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	s, err := Stats(fixture.Hangar())
	require.NoError(t, err)
	assert.Equal(t, 13, s.MakespanLower)
	assert.Equal(t, 590, s.CostLower)
	assert.Equal(t, 8, s.Operations)
}
