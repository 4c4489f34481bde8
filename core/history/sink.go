package history

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/adsp/core/metrics"
)

// Sink is a metrics sink that appends one Record per finished run. It
// counts the solutions of each run and keeps the last phase bound of
// each objective.
type Sink struct {
	store   Store
	timeout time.Duration

	mu   sync.Mutex
	runs map[string]*Record
}

// NewSink wraps store.
func NewSink(store Store) *Sink {
	return &Sink{store: store, timeout: 5 * time.Second, runs: make(map[string]*Record)}
}

func (s *Sink) pending(runID string) *Record {
	r, ok := s.runs[runID]
	if !ok {
		r = &Record{RunID: runID}
		s.runs[runID] = r
	}
	return r
}

// RecordSolution counts the solution for its run.
func (s *Sink) RecordSolution(rec metrics.SolutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending(rec.RunID).Solutions++
	return nil
}

// RecordPhase keeps the bound reported for the phase objective.
func (s *Sink) RecordPhase(rec metrics.PhaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.pending(rec.RunID)
	switch rec.Objective {
	case "makespan":
		r.MakespanBound = rec.Bound
	case "cost":
		r.CostBound = rec.Bound
	}
	return nil
}

// RecordRun appends the completed record to the store.
func (s *Sink) RecordRun(rec metrics.RunRecord) error {
	s.mu.Lock()
	p := s.pending(rec.RunID)
	delete(s.runs, rec.RunID)
	s.mu.Unlock()

	r := FromRun(rec)
	r.Solutions = p.Solutions
	r.MakespanBound, r.CostBound = p.MakespanBound, p.CostBound
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.store.Append(ctx, r)
}
