package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/adsp/app"
	"github.com/kilianp07/adsp/config"
	"github.com/kilianp07/adsp/core/factory"
	"github.com/kilianp07/adsp/core/history"
	"github.com/kilianp07/adsp/internal/fixture"
	"github.com/kilianp07/adsp/test/util"
)

func TestMetricsHTTPExposure(t *testing.T) {
	addr, err := util.FreeAddr()
	if err != nil {
		t.Fatalf("free addr: %v", err)
	}
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Search.TimeLimitSeconds = 1
	cfg.Search.SecondTimeLimitSeconds = 1
	cfg.Search.Seed = 3
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus"}}
	cfg.Metrics.PrometheusAddr = addr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()
	svc.Start(ctx)

	if _, err := svc.Solve(ctx, app.Request{Instance: fixture.TwoOps(), Silent: true}); err != nil {
		t.Fatalf("solve: %v", err)
	}
	waitCtx, wcancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer wcancel()
	for _, m := range []string{"adsp_solutions_total", "adsp_best_objective", "adsp_runs_total"} {
		if err := util.WaitForMetric(waitCtx, "http://"+addr+"/metrics", m); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSQLiteHistoryAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Search.TimeLimitSeconds = 1
	cfg.Search.SecondTimeLimitSeconds = 1
	cfg.Search.Seed = 5
	cfg.History.Enabled = true
	cfg.History.Backend = "sqlite"
	cfg.History.Path = filepath.Join(dir, "history.db")

	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()
	ctx := context.Background()
	for _, s := range []string{"MK-AUTO", "CST-DF"} {
		if _, err := svc.Solve(ctx, app.Request{Instance: fixture.TwoOps(), Strategy: s, Silent: true}); err != nil {
			t.Fatalf("solve %s: %v", s, err)
		}
	}
	recs, err := svc.History(ctx, history.Query{Strategy: "CST-DF"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Cost == nil || *recs[0].Cost != 80 {
		t.Fatalf("unexpected cost %+v", recs[0].Cost)
	}
	all, err := svc.History(ctx, history.Query{Start: time.Now().Add(-time.Minute)})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
}
