package metrics

import "time"

// SolutionRecord describes one improving solution.
type SolutionRecord struct {
	RunID     string
	Instance  string
	Phase     int
	Objective string
	Makespan  int
	Cost      int
	Elapsed   time.Duration
	Optimal   bool
	Time      time.Time
}

// MetricsSink records improving solutions for observability purposes.
type MetricsSink interface {
	RecordSolution(rec SolutionRecord) error
}

// PhaseRecord summarises a finished search phase.
type PhaseRecord struct {
	RunID     string
	Instance  string
	Phase     int
	Objective string
	Solutions int
	Best      int // NoValue style sentinel when nothing was found
	Bound     int
	Duration  time.Duration
	Time      time.Time
}

// PhaseRecorder records phase summaries.
type PhaseRecorder interface {
	RecordPhase(rec PhaseRecord) error
}

// Run statuses.
const (
	StatusSolved     = "solved"
	StatusNoSolution = "no_solution"
	StatusFailed     = "failed"
)

// RunRecord is the outcome of one run.
type RunRecord struct {
	RunID    string
	Instance string
	Strategy string
	Status   string
	Makespan int
	Cost     int
	Duration time.Duration
	Time     time.Time
	Error    string
}

// RunRecorder records run outcomes.
type RunRecorder interface {
	RecordRun(rec RunRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolution(SolutionRecord) error { return nil }
func (NopSink) RecordPhase(PhaseRecord) error       { return nil }
func (NopSink) RecordRun(RunRecord) error           { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolution forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolution(rec SolutionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolution(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordPhase forwards phase summaries to the sinks supporting them.
func (m *MultiSink) RecordPhase(rec PhaseRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PhaseRecorder); ok {
			if err := r.RecordPhase(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRun forwards run outcomes to the sinks supporting them.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RunRecorder); ok {
			if err := r.RecordRun(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
