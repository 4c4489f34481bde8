package search

import (
	"time"

	"github.com/kilianp07/adsp/core/cpmodel"
	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/model"
)

// Recorder turns the improving solutions reported by the engine into
// Solutions and log entries. It is owned by a single run.
type Recorder struct {
	model      *cpmodel.Model
	start      time.Time
	now        func() time.Time
	onSolution func(*model.Solution)

	log      model.Log
	best     *model.Solution
	snapshot engine.StartingPoint
}

// NewRecorder returns a recorder whose log starts with the given static
// bounds. Elapsed times are measured from start on the now clock, time.Now
// when nil.
func NewRecorder(m *cpmodel.Model, start time.Time, now func() time.Time, makespanBound, costBound int, onSolution func(*model.Solution)) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		model:      m,
		start:      start,
		now:        now,
		onSolution: onSolution,
		log: model.Log{
			Instance:      m.Instance.Name,
			MakespanBound: makespanBound,
			CostBound:     costBound,
			Entries:       []model.LogEntry{},
		},
	}
}

// Record reads the current engine solution back, appends a log entry and
// invokes the callback before returning.
func (r *Recorder) Record() *model.Solution {
	m, eng := r.model, r.model.Engine
	sol := &model.Solution{
		Instance:    m.Instance,
		Activities:  make([]model.Activity, len(m.Operations)),
		Assignments: []model.Assignment{},
		Makespan:    eng.Value(m.Makespan),
		Cost:        eng.Value(m.Cost),
	}
	for i, op := range m.Instance.Operations {
		iv := m.Operations[i]
		sol.Activities[i] = model.Activity{Operation: op.ID, Start: eng.Start(iv), End: eng.End(iv)}
	}
	for _, c := range m.Candidates {
		if !eng.Present(c.Interval) {
			continue
		}
		sol.Assignments = append(sol.Assignments, model.Assignment{
			Resource:    c.Resource,
			Operation:   c.Operation,
			Requirement: c.Requirement,
			Start:       eng.Start(c.Interval),
			End:         eng.End(c.Interval),
		})
	}

	r.log.Entries = append(r.log.Entries, model.LogEntry{
		Time:     r.now().Sub(r.start).Seconds(),
		Makespan: sol.Makespan,
		Cost:     sol.Cost,
		Optimal:  eng.ObjectiveGap() == 0,
	})
	r.best = sol
	r.snapshot = m.Snapshot()
	if r.onSolution != nil {
		r.onSolution(sol)
	}
	return sol
}

// AdoptBound replaces the logged bound of obj when the engine proved a
// tighter one.
func (r *Recorder) AdoptBound(obj cpmodel.Objective, bound int) bool {
	p := &r.log.MakespanBound
	if obj == cpmodel.Cost {
		p = &r.log.CostBound
	}
	if bound > *p {
		*p = bound
		return true
	}
	return false
}

// Best returns the last recorded solution, nil when none was found.
func (r *Recorder) Best() *model.Solution { return r.best }

// Snapshot returns the engine assignment of the last recorded solution.
func (r *Recorder) Snapshot() engine.StartingPoint { return r.snapshot }

// Log returns a copy of the accumulated log.
func (r *Recorder) Log() model.Log {
	l := r.log
	l.Entries = append([]model.LogEntry{}, r.log.Entries...)
	return l
}

// Count returns the number of recorded solutions.
func (r *Recorder) Count() int { return len(r.log.Entries) }
