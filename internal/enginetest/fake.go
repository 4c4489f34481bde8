// Package enginetest provides a scriptable engine.Engine for tests.
package enginetest

import (
	"context"
	"fmt"

	"github.com/kilianp07/adsp/core/engine"
)

// Call is one recorded engine call.
type Call struct {
	Method string
	Args   []any
}

// Fake records every call and replays scripted solutions. Each StartSearch
// consumes Solutions from the front; a search yields all of them and then
// terminates, or returns NextErr once they are exhausted.
type Fake struct {
	Calls     []Call
	Intervals []engine.IntervalSpec
	Params    []engine.Params
	Starts    []engine.StartingPoint
	// Fail makes the named method return the error.
	Fail map[string]error
	// Solutions is consumed one batch per StartSearch.
	Solutions [][]engine.StartingPoint
	NextErr   error
	Bound     int
	Gap       float64
	Closed    int

	current   engine.StartingPoint
	searching bool
}

// New returns an empty fake.
func New() *Fake { return &Fake{Fail: map[string]error{}} }

// Factory returns a factory handing out f and counting calls in n.
func (f *Fake) Factory(n *int) engine.Factory {
	return func() (engine.Engine, error) {
		if n != nil {
			*n++
		}
		if err := f.Fail["Factory"]; err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Count returns the number of calls to method.
func (f *Fake) Count(method string) int {
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CallsTo returns the calls to method in order.
func (f *Fake) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) record(method string, args ...any) error {
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
	if err := f.Fail[method]; err != nil {
		return err
	}
	if f.searching && method != "Close" {
		return engine.ErrSearchActive
	}
	return nil
}

func (f *Fake) NewInterval(spec engine.IntervalSpec) (engine.Interval, error) {
	if err := f.record("NewInterval", spec); err != nil {
		return 0, err
	}
	f.Intervals = append(f.Intervals, spec)
	return engine.Interval(len(f.Intervals) - 1), nil
}

func (f *Fake) NewSequence(name string, ivs []engine.Interval) (engine.Sequence, error) {
	if err := f.record("NewSequence", name, ivs); err != nil {
		return 0, err
	}
	return engine.Sequence(f.Count("NewSequence") - 1), nil
}

func (f *Fake) constraint(method string, args ...any) (engine.Constraint, error) {
	if err := f.record(method, args...); err != nil {
		return 0, err
	}
	return engine.Constraint(len(f.Calls)), nil
}

func (f *Fake) AddEndBeforeStart(before, after engine.Interval) (engine.Constraint, error) {
	return f.constraint("AddEndBeforeStart", before, after)
}

func (f *Fake) AddAlternative(p engine.Interval, c []engine.Interval, k int) (engine.Constraint, error) {
	return f.constraint("AddAlternative", p, c, k)
}

func (f *Fake) AddNoOverlap(seq engine.Sequence) (engine.Constraint, error) {
	return f.constraint("AddNoOverlap", seq)
}

func (f *Fake) AddCumulRange(expr engine.CumulExpr, min, max int) (engine.Constraint, error) {
	return f.constraint("AddCumulRange", expr, min, max)
}

func (f *Fake) AddLessOrEqual(expr engine.IntExpr, bound int) (engine.Constraint, error) {
	return f.constraint("AddLessOrEqual", expr, bound)
}

func (f *Fake) Minimize(expr engine.IntExpr) (engine.Objective, error) {
	if err := f.record("Minimize", expr); err != nil {
		return 0, err
	}
	return engine.Objective(f.Count("Minimize")), nil
}

func (f *Fake) RemoveObjective(obj engine.Objective) error { return f.record("RemoveObjective", obj) }

func (f *Fake) SetParams(p engine.Params) error {
	if err := f.record("SetParams", p); err != nil {
		return err
	}
	f.Params = append(f.Params, p)
	return nil
}

func (f *Fake) SetStartingPoint(sp engine.StartingPoint) error {
	if err := f.record("SetStartingPoint", sp); err != nil {
		return err
	}
	f.Starts = append(f.Starts, sp)
	return nil
}

func (f *Fake) StartSearch(ctx context.Context) (engine.Search, error) {
	if err := f.record("StartSearch"); err != nil {
		return nil, err
	}
	var batch []engine.StartingPoint
	if len(f.Solutions) > 0 {
		batch, f.Solutions = f.Solutions[0], f.Solutions[1:]
	}
	f.searching = true
	return &search{f: f, batch: batch}, nil
}

type search struct {
	f     *Fake
	batch []engine.StartingPoint
	done  bool
}

func (s *search) Next() (bool, error) {
	if s.done {
		return false, nil
	}
	if len(s.batch) == 0 {
		s.done = true
		return false, s.f.NextErr
	}
	s.f.current, s.batch = s.batch[0], s.batch[1:]
	return true, nil
}

func (s *search) End() error {
	s.done = true
	s.f.searching = false
	return s.f.Fail["End"]
}

func (f *Fake) Start(iv engine.Interval) int { return f.current[iv].Start }
func (f *Fake) End(iv engine.Interval) int { return f.current[iv].End }
func (f *Fake) Present(iv engine.Interval) bool {
	v, ok := f.current[iv]
	if !ok {
		return iv < engine.Interval(len(f.Intervals)) && !f.Intervals[iv].Optional
	}
	return v.Present
}

// Value evaluates expr on the current solution.
func (f *Fake) Value(expr engine.IntExpr) int {
	v := 0
	for i, iv := range expr.Intervals {
		switch expr.Kind {
		case engine.MaxEnd:
			if f.Present(iv) {
				v = max(v, f.End(iv))
			}
		case engine.PresenceSum:
			if f.Present(iv) {
				v += expr.Weights[i]
			}
		default:
			panic(fmt.Sprintf("enginetest: unknown expression kind %d", expr.Kind))
		}
	}
	return v
}

func (f *Fake) ObjectiveBound() int { return f.Bound }
func (f *Fake) ObjectiveGap() float64 { return f.Gap }

func (f *Fake) Close() error {
	f.Closed++
	f.Calls = append(f.Calls, Call{Method: "Close"})
	return nil
}
