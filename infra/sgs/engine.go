// Package sgs is a reference engine.Engine built on randomized serial
// schedule generation. Each worker repeatedly builds a complete schedule by
// placing mandatory intervals in priority order at their earliest feasible
// time, and reports schedules that improve the incumbent. It is a heuristic:
// it never proves optimality beyond reaching a static lower bound.
package sgs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/logger"
)

var errNoObjective = errors.New("no such objective")

// Options configures an Engine.
type Options struct {
	// Seed of the random generators; zero seeds from the clock.
	Seed   int64
	Logger logger.Logger
}

type precedence struct {
	before, after engine.Interval
}

type alternative struct {
	principal  engine.Interval
	candidates []engine.Interval
	k          int
}

type cumulRange struct {
	expr     engine.CumulExpr
	min, max int
}

type limit struct {
	expr  engine.IntExpr
	bound int
}

// Engine implements engine.Engine. It is not safe for concurrent use; the
// parallelism of a search is internal.
type Engine struct {
	opts Options
	log  logger.Logger

	intervals    []engine.IntervalSpec
	sequences    [][]engine.Interval
	noOverlap    []engine.Sequence
	precedences  []precedence
	alternatives []alternative
	cumuls       []cumulRange
	limits       []limit
	constraints  int

	objectives map[engine.Objective]engine.IntExpr
	nextObj    engine.Objective

	params engine.Params
	start  engine.StartingPoint

	current []engine.IntervalValue
	bound   int
	gap     float64

	active *search
	closed bool
}

// New returns an empty engine.
func New(opts Options) *Engine {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	l := opts.Logger
	if l == nil {
		l = logger.NopLogger{}
	}
	return &Engine{opts: opts, log: l, objectives: map[engine.Objective]engine.IntExpr{}}
}

// Factory returns an engine.Factory creating engines with opts.
func Factory(opts Options) engine.Factory {
	return func() (engine.Engine, error) { return New(opts), nil }
}

func (e *Engine) mutable() error {
	if e.closed {
		return engine.ErrClosed
	}
	if e.active != nil {
		return engine.ErrSearchActive
	}
	return nil
}

func (e *Engine) known(ivs ...engine.Interval) error {
	for _, iv := range ivs {
		if iv < 0 || int(iv) >= len(e.intervals) {
			return fmt.Errorf("unknown interval %d", iv)
		}
	}
	return nil
}

func (e *Engine) constraint() engine.Constraint {
	e.constraints++
	return engine.Constraint(e.constraints)
}

func (e *Engine) NewInterval(spec engine.IntervalSpec) (engine.Interval, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if spec.Size < 0 {
		return 0, fmt.Errorf("interval %s: negative size %d", spec.Name, spec.Size)
	}
	if spec.Pinned && spec.Optional {
		return 0, fmt.Errorf("interval %s: pinned intervals are always present", spec.Name)
	}
	e.intervals = append(e.intervals, spec)
	return engine.Interval(len(e.intervals) - 1), nil
}

func (e *Engine) NewSequence(name string, intervals []engine.Interval) (engine.Sequence, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if err := e.known(intervals...); err != nil {
		return 0, fmt.Errorf("sequence %s: %w", name, err)
	}
	e.sequences = append(e.sequences, append([]engine.Interval(nil), intervals...))
	return engine.Sequence(len(e.sequences) - 1), nil
}

func (e *Engine) AddEndBeforeStart(before, after engine.Interval) (engine.Constraint, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if err := e.known(before, after); err != nil {
		return 0, err
	}
	if e.intervals[before].Optional || e.intervals[after].Optional {
		return 0, fmt.Errorf("precedence on optional interval is not supported")
	}
	e.precedences = append(e.precedences, precedence{before, after})
	return e.constraint(), nil
}

func (e *Engine) AddAlternative(principal engine.Interval, candidates []engine.Interval, k int) (engine.Constraint, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if err := e.known(append([]engine.Interval{principal}, candidates...)...); err != nil {
		return 0, err
	}
	spec := e.intervals[principal]
	if spec.Optional || spec.Pinned {
		return 0, fmt.Errorf("alternative principal %s must be mandatory", spec.Name)
	}
	if k < 0 || k > len(candidates) {
		return 0, fmt.Errorf("alternative on %s: cardinality %d out of range", spec.Name, k)
	}
	for _, c := range candidates {
		if !e.intervals[c].Optional {
			return 0, fmt.Errorf("alternative candidate %s must be optional", e.intervals[c].Name)
		}
	}
	e.alternatives = append(e.alternatives, alternative{principal, append([]engine.Interval(nil), candidates...), k})
	return e.constraint(), nil
}

func (e *Engine) AddNoOverlap(seq engine.Sequence) (engine.Constraint, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if seq < 0 || int(seq) >= len(e.sequences) {
		return 0, fmt.Errorf("unknown sequence %d", seq)
	}
	e.noOverlap = append(e.noOverlap, seq)
	return e.constraint(), nil
}

func (e *Engine) AddCumulRange(expr engine.CumulExpr, min, max int) (engine.Constraint, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if min > max {
		return 0, fmt.Errorf("empty cumul range [%d, %d]", min, max)
	}
	for _, t := range expr.Terms {
		if t.Kind != engine.Step {
			if err := e.known(t.Interval); err != nil {
				return 0, err
			}
		}
	}
	e.cumuls = append(e.cumuls, cumulRange{expr, min, max})
	return e.constraint(), nil
}

func (e *Engine) checkExpr(expr engine.IntExpr) error {
	if err := e.known(expr.Intervals...); err != nil {
		return err
	}
	switch expr.Kind {
	case engine.MaxEnd:
	case engine.PresenceSum:
		if len(expr.Weights) != len(expr.Intervals) {
			return fmt.Errorf("presence sum: %d weights for %d intervals", len(expr.Weights), len(expr.Intervals))
		}
	default:
		return fmt.Errorf("unknown expression kind %d", expr.Kind)
	}
	return nil
}

func (e *Engine) AddLessOrEqual(expr engine.IntExpr, bound int) (engine.Constraint, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if err := e.checkExpr(expr); err != nil {
		return 0, err
	}
	e.limits = append(e.limits, limit{expr, bound})
	return e.constraint(), nil
}

// Minimize sets the objective. Only one objective can be active.
func (e *Engine) Minimize(expr engine.IntExpr) (engine.Objective, error) {
	if err := e.mutable(); err != nil {
		return 0, err
	}
	if err := e.checkExpr(expr); err != nil {
		return 0, err
	}
	if len(e.objectives) > 0 {
		return 0, fmt.Errorf("an objective is already set")
	}
	e.nextObj++
	e.objectives[e.nextObj] = expr
	return e.nextObj, nil
}

func (e *Engine) RemoveObjective(obj engine.Objective) error {
	if err := e.mutable(); err != nil {
		return err
	}
	if _, ok := e.objectives[obj]; !ok {
		return fmt.Errorf("%w: %d", errNoObjective, obj)
	}
	delete(e.objectives, obj)
	return nil
}

func (e *Engine) SetParams(p engine.Params) error {
	if err := e.mutable(); err != nil {
		return err
	}
	if p.TimeLimit < 0 || p.FailLimit < 0 || p.Workers < 0 {
		return fmt.Errorf("negative search parameter")
	}
	e.params = p
	return nil
}

func (e *Engine) SetStartingPoint(sp engine.StartingPoint) error {
	if err := e.mutable(); err != nil {
		return err
	}
	for iv := range sp {
		if err := e.known(iv); err != nil {
			return fmt.Errorf("starting point: %w", err)
		}
	}
	e.start = sp
	return nil
}

// StartSearch compiles the model and starts the workers. The time limit
// bounds the whole search, measured from this call.
func (e *Engine) StartSearch(ctx context.Context) (engine.Search, error) {
	if err := e.mutable(); err != nil {
		return nil, err
	}
	p, err := e.compile()
	if err != nil {
		return nil, err
	}
	e.bound = p.bound
	e.gap = 1
	s := e.launch(ctx, p)
	e.active = s
	return s, nil
}

func (e *Engine) Start(iv engine.Interval) int {
	if int(iv) >= len(e.current) {
		return 0
	}
	return e.current[iv].Start
}

func (e *Engine) End(iv engine.Interval) int {
	if int(iv) >= len(e.current) {
		return 0
	}
	return e.current[iv].End
}

func (e *Engine) Present(iv engine.Interval) bool {
	if int(iv) >= len(e.current) {
		return false
	}
	return e.current[iv].Present
}

func (e *Engine) Value(expr engine.IntExpr) int {
	if e.current == nil {
		return 0
	}
	return evaluate(expr, e.current)
}

func (e *Engine) ObjectiveBound() int { return e.bound }

func (e *Engine) ObjectiveGap() float64 { return e.gap }

// Close stops any running search and releases the engine.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	if e.active != nil {
		_ = e.active.End()
	}
	e.closed = true
	return nil
}

func evaluate(expr engine.IntExpr, val []engine.IntervalValue) int {
	v := 0
	for i, iv := range expr.Intervals {
		if !val[iv].Present {
			continue
		}
		switch expr.Kind {
		case engine.MaxEnd:
			v = max(v, val[iv].End)
		case engine.PresenceSum:
			v += expr.Weights[i]
		}
	}
	return v
}
