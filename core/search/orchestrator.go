package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/adsp/core/bounds"
	"github.com/kilianp07/adsp/core/cpmodel"
	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/events"
	"github.com/kilianp07/adsp/core/logger"
	"github.com/kilianp07/adsp/core/metrics"
	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/internal/eventbus"
)

// ErrAlreadyRun is returned when an Orchestrator is asked to run twice.
var ErrAlreadyRun = errors.New("orchestrator already ran")

// Result is the outcome of a run. Best is nil when no solution was found,
// which is not an error.
type Result struct {
	RunID    string
	Strategy string
	Best     *model.Solution
	Log      model.Log
	Duration time.Duration
}

// Orchestrator drives the engine of one model through one or two search
// phases. It owns the model once created and closes it when the run ends.
type Orchestrator struct {
	model   *cpmodel.Model
	cfg     Config
	metrics metrics.MetricsSink
	bus     eventbus.EventBus
	logger  logger.Logger
	now     func() time.Time

	runID     string
	strategy  string
	state     State
	start     time.Time
	rec       *Recorder
	objective engine.Objective
}

// New validates cfg and returns an orchestrator for m. sink, bus and log
// may be nil. On error the caller still owns m.
func New(m *cpmodel.Model, cfg Config, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Orchestrator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("search config: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Orchestrator{
		model:   m,
		cfg:     cfg,
		metrics: sink,
		bus:     bus,
		logger:  log,
		now:     time.Now,
		runID:   uuid.NewString(),
	}, nil
}

// RunID identifies the run in events, metrics and history.
func (o *Orchestrator) RunID() string { return o.runID }

// State returns the current lifecycle state.
func (o *Orchestrator) State() State { return o.state }

// Run executes the given strategy.
func (o *Orchestrator) Run(ctx context.Context, s Strategy) (*Result, error) {
	o.strategy = s.ID
	s.Apply(&o.cfg)
	if s.Lexicographic {
		return o.RunLexicographic(ctx, s.Primary, s.Secondary)
	}
	return o.RunSingleObjective(ctx, s.Primary)
}

// RunSingleObjective minimises obj in a single phase.
func (o *Orchestrator) RunSingleObjective(ctx context.Context, obj cpmodel.Objective) (*Result, error) {
	if o.strategy == "" {
		o.strategy = "single-" + obj.String()
	}
	return o.run(ctx, func() error {
		_, err := o.phase(ctx, 1, obj, o.cfg.TimeLimit)
		return err
	})
}

// RunLexicographic minimises primary, freezes its best value and then
// minimises secondary with the time left plus SecondTimeLimit.
func (o *Orchestrator) RunLexicographic(ctx context.Context, primary, secondary cpmodel.Objective) (*Result, error) {
	if o.strategy == "" {
		o.strategy = "lex-" + primary.String() + "-" + secondary.String()
	}
	return o.run(ctx, func() error {
		elapsed, err := o.phase(ctx, 1, primary, o.cfg.TimeLimit)
		if err != nil {
			return err
		}
		remaining := o.cfg.TimeLimit - elapsed + o.cfg.SecondTimeLimit
		best := o.rec.Best()
		if remaining <= 0 || best == nil {
			o.logger.Infof("run %s: skipping %s phase (remaining %s, solution %t)",
				o.runID, secondary, remaining, best != nil)
			return nil
		}

		eng := o.model.Engine
		if err := eng.RemoveObjective(o.objective); err != nil {
			return engine.Wrap("remove objective", err)
		}
		if _, err := eng.AddLessOrEqual(o.model.Objective(primary), primary.Of(best)); err != nil {
			return engine.Wrap("freeze "+primary.String(), err)
		}
		if err := eng.SetStartingPoint(o.rec.Snapshot()); err != nil {
			return engine.Wrap("starting point", err)
		}
		_, err = o.phase(ctx, 2, secondary, remaining)
		return err
	})
}

func (o *Orchestrator) run(ctx context.Context, phases func() error) (res *Result, err error) {
	if o.state != Idle {
		return nil, ErrAlreadyRun
	}
	o.start = o.now()
	o.rec = NewRecorder(o.model, o.start, o.now, o.staticMakespanBound(), bounds.CostLowerBound(o.model.Instance), o.cfg.OnSolution)
	defer func() {
		if cerr := o.model.Close(); cerr != nil && err == nil {
			err = engine.Wrap("close", cerr)
		}
		if err != nil {
			o.state = Failed
			res = nil
		} else {
			o.state = Finished
		}
		o.finish(res, err)
	}()

	if o.cfg.WarmStart {
		if err := o.warmStart(); err != nil {
			return nil, err
		}
	}
	if err := phases(); err != nil {
		return nil, err
	}
	return &Result{
		RunID:    o.runID,
		Strategy: o.strategy,
		Best:     o.rec.Best(),
		Log:      o.rec.Log(),
		Duration: o.now().Sub(o.start),
	}, nil
}

func (o *Orchestrator) staticMakespanBound() int {
	lb, err := bounds.MakespanLowerBound(o.model.Instance)
	if err != nil {
		// the builder already rejected cyclic graphs
		o.logger.Warnf("makespan lower bound: %v", err)
		return 0
	}
	return lb
}

// warmStart seeds the engine with the prior solution and bounds both
// objectives by its values, whichever objective is optimised.
func (o *Orchestrator) warmStart() error {
	prior := o.cfg.Prior
	sp, err := o.model.StartingPoint(prior)
	if err != nil {
		return fmt.Errorf("warm start: %w", err)
	}
	eng := o.model.Engine
	if err := eng.SetStartingPoint(sp); err != nil {
		return engine.Wrap("starting point", err)
	}
	if _, err := eng.AddLessOrEqual(o.model.Makespan, prior.Makespan); err != nil {
		return engine.Wrap("warm start makespan", err)
	}
	if _, err := eng.AddLessOrEqual(o.model.Cost, prior.Cost); err != nil {
		return engine.Wrap("warm start cost", err)
	}
	o.logger.Infof("run %s: warm start from makespan %d cost %d", o.runID, prior.Makespan, prior.Cost)
	return nil
}

// phase minimises obj until the engine is exhausted or a limit is hit and
// returns the phase duration.
func (o *Orchestrator) phase(ctx context.Context, n int, obj cpmodel.Objective, limit time.Duration) (time.Duration, error) {
	eng := o.model.Engine
	handle, err := eng.Minimize(o.model.Objective(obj))
	if err != nil {
		return 0, engine.Wrap("minimize "+obj.String(), err)
	}
	o.objective = handle
	if err := eng.SetParams(o.params(limit)); err != nil {
		return 0, engine.Wrap("params", err)
	}

	running, done := Phase1Running, Phase1Done
	if n == 2 {
		running, done = Phase2Running, Phase2Done
	}
	began := o.now()
	o.state = running
	o.publish(events.PhaseEvent{RunID: o.runID, Instance: o.model.Instance.Name, Phase: n, Objective: obj.String()})
	o.logger.Infof("run %s: phase %d minimising %s for %s", o.runID, n, obj, limit)

	search, err := eng.StartSearch(ctx)
	if err != nil {
		return 0, engine.Wrap("start search", err)
	}
	found := 0
	for {
		ok, err := search.Next()
		if err != nil {
			_ = search.End()
			return 0, engine.Wrap("next", err)
		}
		if !ok {
			break
		}
		found++
		o.improved(n, obj, o.rec.Record())
	}
	if err := search.End(); err != nil {
		return 0, engine.Wrap("end search", err)
	}
	elapsed := o.now().Sub(began)
	o.state = done

	bound := eng.ObjectiveBound()
	if o.rec.AdoptBound(obj, bound) {
		o.logger.Debugw("engine bound adopted", map[string]any{"objective": obj.String(), "bound": bound})
	}
	l := o.rec.Log()
	reported := l.MakespanBound
	if obj == cpmodel.Cost {
		reported = l.CostBound
	}
	best := model.NoValue
	if b := o.rec.Best(); b != nil {
		best = obj.Of(b)
	}
	if r, ok := o.metrics.(metrics.PhaseRecorder); ok {
		if err := r.RecordPhase(metrics.PhaseRecord{
			RunID: o.runID, Instance: o.model.Instance.Name, Phase: n, Objective: obj.String(),
			Solutions: found, Best: best, Bound: reported, Duration: elapsed, Time: o.now(),
		}); err != nil {
			o.logger.Warnf("record phase: %v", err)
		}
	}
	o.publish(events.PhaseEvent{
		RunID: o.runID, Instance: o.model.Instance.Name, Phase: n, Objective: obj.String(),
		Done: true, Solutions: found, Bound: reported, Duration: elapsed,
	})
	o.logger.Infof("run %s: phase %d done, %d solutions, bound %d", o.runID, n, found, reported)
	return elapsed, nil
}

func (o *Orchestrator) params(limit time.Duration) engine.Params {
	p := engine.Params{
		TimeLimit: limit,
		FailLimit: o.cfg.FailLimit,
		Workers:   o.cfg.Workers,
		Search:    o.cfg.SearchType,
	}
	if o.cfg.FailureDirected {
		p.FailureDirectedEmphasis = float64(o.cfg.Workers)
		p.FailureDirectedMaxMemory = FailureDirectedMaxMemory
	}
	return p
}

func (o *Orchestrator) improved(n int, obj cpmodel.Objective, sol *model.Solution) {
	elapsed := o.now().Sub(o.start)
	optimal := o.model.Engine.ObjectiveGap() == 0
	if !o.cfg.Silent {
		o.logger.Infof("run %s: phase %d %s solution makespan=%d cost=%d at %.2fs",
			o.runID, n, obj, sol.Makespan, sol.Cost, elapsed.Seconds())
	}
	if err := o.metrics.RecordSolution(metrics.SolutionRecord{
		RunID: o.runID, Instance: o.model.Instance.Name, Phase: n, Objective: obj.String(),
		Makespan: sol.Makespan, Cost: sol.Cost, Elapsed: elapsed, Optimal: optimal, Time: o.now(),
	}); err != nil {
		o.logger.Warnf("record solution: %v", err)
	}
	o.publish(events.SolutionEvent{
		RunID: o.runID, Instance: o.model.Instance.Name, Phase: n, Objective: obj.String(),
		Solution: sol, Elapsed: elapsed, Optimal: optimal,
	})
}

func (o *Orchestrator) finish(res *Result, err error) {
	rec := metrics.RunRecord{
		RunID:    o.runID,
		Instance: o.model.Instance.Name,
		Strategy: o.strategy,
		Status:   metrics.StatusNoSolution,
		Makespan: model.NoValue,
		Cost:     model.NoValue,
		Duration: o.now().Sub(o.start),
		Time:     o.now(),
	}
	ev := events.RunEvent{RunID: o.runID, Instance: rec.Instance, Strategy: o.strategy, Duration: rec.Duration, Err: err}
	switch {
	case err != nil:
		rec.Status = metrics.StatusFailed
		rec.Error = err.Error()
		o.logger.Errorf("run %s failed: %v", o.runID, err)
	case res.Best != nil:
		rec.Status = metrics.StatusSolved
		rec.Makespan, rec.Cost = res.Best.Makespan, res.Best.Cost
		ev.Best = res.Best
		o.logger.Infof("run %s finished: makespan %d cost %d", o.runID, rec.Makespan, rec.Cost)
	default:
		o.logger.Warnf("run %s finished without solution", o.runID)
	}
	if r, ok := o.metrics.(metrics.RunRecorder); ok {
		if rerr := r.RecordRun(rec); rerr != nil {
			o.logger.Warnf("record run: %v", rerr)
		}
	}
	o.publish(ev)
}

func (o *Orchestrator) publish(e eventbus.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
