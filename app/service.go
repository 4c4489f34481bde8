package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/adsp/app/plugins"
	"github.com/kilianp07/adsp/config"
	"github.com/kilianp07/adsp/core/bounds"
	"github.com/kilianp07/adsp/core/cpmodel"
	"github.com/kilianp07/adsp/core/history"
	coremetrics "github.com/kilianp07/adsp/core/metrics"
	"github.com/kilianp07/adsp/core/model"
	coremon "github.com/kilianp07/adsp/core/monitoring"
	"github.com/kilianp07/adsp/core/search"
	"github.com/kilianp07/adsp/infra/jsonfile"
	"github.com/kilianp07/adsp/infra/logger"
	"github.com/kilianp07/adsp/infra/metrics"
	"github.com/kilianp07/adsp/infra/monitoring"
	"github.com/kilianp07/adsp/infra/mqtt"
	"github.com/kilianp07/adsp/internal/eventbus"
	"github.com/kilianp07/adsp/pkg/export"
	"github.com/kilianp07/adsp/pkg/report"
)

// Request describes one solve.
type Request struct {
	Instance *model.Instance
	// Prior enables warm start from a known solution.
	Prior    *model.Solution
	Strategy string
	Silent   bool
}

// Outcome is the result of a solve together with the written files.
type Outcome struct {
	Result *search.Result
	Files  []string
}

// Service wires the solver with its outputs and observers.
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	sink    coremetrics.MetricsSink
	bus     *eventbus.Bus
	client  *mqtt.PahoClient
	store   history.Store
	forward <-chan struct{}
	cancel  context.CancelFunc
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc := &Service{cfg: cfg, log: logg, bus: eventbus.New()}

	var sinks []coremetrics.MetricsSink
	if _, ok := sink.(coremetrics.NopSink); !ok {
		sinks = append(sinks, sink)
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History)
		if err != nil {
			return nil, err
		}
		svc.store = store
		sinks = append(sinks, history.NewSink(store))
	}
	switch len(sinks) {
	case 0:
		svc.sink = coremetrics.NopSink{}
	case 1:
		svc.sink = sinks[0]
	default:
		svc.sink = coremetrics.NewMultiSink(sinks...)
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			svc.closeStore()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
	}
	return svc, nil
}

// Start launches the background observers: the Prometheus endpoint and the
// MQTT forwarder. They stop on Close or when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.client != nil {
		s.forward = mqtt.Forward(ctx, s.bus, s.client)
	}
}

// Solve builds the model of req.Instance, runs the configured strategy and
// writes the log, the solution and the optional CSV and HTML outputs.
func (s *Service) Solve(ctx context.Context, req Request) (*Outcome, error) {
	if req.Instance == nil {
		return nil, errors.New("no instance")
	}
	id := req.Strategy
	if id == "" {
		id = s.cfg.Search.Strategy
	}
	strategy, err := search.ParseStrategy(id)
	if err != nil {
		s.log.Warnf("%v", err)
	}

	runCfg := s.cfg.Search.Engine()
	runCfg.Silent = req.Silent
	if req.Prior != nil {
		runCfg.WarmStart = true
		runCfg.Prior = req.Prior
	}

	backend := s.cfg.Search.Backend
	backend.Conf = make(map[string]any, len(s.cfg.Search.Backend.Conf)+1)
	for k, v := range s.cfg.Search.Backend.Conf {
		backend.Conf[k] = v
	}
	if _, ok := backend.Conf["seed"]; !ok && s.cfg.Search.Seed != 0 {
		backend.Conf["seed"] = s.cfg.Search.Seed
	}
	factory, err := plugins.NewEngine(backend)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	m, err := cpmodel.Build(req.Instance, factory)
	if err != nil {
		coremon.CaptureException(err, coremon.Tags{Module: "cpmodel", Instance: req.Instance.Name, Strategy: strategy.ID})
		return nil, err
	}
	orch, err := search.New(m, runCfg, s.sink, s.bus, logger.New("search"))
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	res, err := orch.Run(ctx, strategy)
	if err != nil {
		coremon.CaptureException(err, coremon.Tags{Module: "search", Instance: req.Instance.Name, RunID: orch.RunID(), Strategy: strategy.ID})
		return nil, err
	}

	files, err := s.write(req.Instance, res)
	out := &Outcome{Result: res, Files: files}
	if err != nil {
		return out, fmt.Errorf("write outputs: %w", err)
	}
	return out, nil
}

func (s *Service) write(inst *model.Instance, res *search.Result) ([]string, error) {
	dir := s.cfg.Output.Dir
	files, err := jsonfile.WriteRun(dir, res.Log, res.Best)
	if err != nil {
		return files, err
	}
	if s.cfg.Output.CSV && res.Best != nil {
		p := filepath.Join(dir, jsonfile.SolutionsDir, inst.Name+".csv")
		if err := writeFile(p, func(f *os.File) error { return export.WriteCSV(f, res.Best) }); err != nil {
			return files, err
		}
		files = append(files, p)
	}
	if s.cfg.Report.Enabled && (res.Best != nil || len(res.Log.Entries) > 0) {
		p := filepath.Join(dir, "reports", inst.Name+".html")
		log := res.Log
		if err := writeFile(p, func(f *os.File) error { return report.Render(f, s.cfg.Report.Title, res.Best, &log) }); err != nil {
			return files, err
		}
		files = append(files, p)
	}
	for _, f := range files {
		s.log.Infof("wrote %s", f)
	}
	return files, nil
}

func writeFile(path string, fill func(*os.File) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fill(f)
}

// Stats returns the static characteristics of inst.
func Stats(inst *model.Instance) (bounds.Summary, error) {
	return bounds.Summarize(inst)
}

// History queries the run history. It fails when history is disabled.
func (s *Service) History(ctx context.Context, q history.Query) ([]history.Record, error) {
	if s.store == nil {
		return nil, errors.New("history is disabled")
	}
	return s.store.Query(ctx, q)
}

func (s *Service) closeStore() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warnf("history close: %v", err)
		}
	}
}

// Close drains the observers and releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.forward != nil {
		select {
		case <-s.forward:
		case <-time.After(5 * time.Second):
			s.log.Warnf("mqtt forwarder did not stop")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.client != nil {
		s.client.Disconnect()
	}
	s.closeStore()
	coremon.Flush(2 * time.Second)
	return nil
}
