package events

import (
	"time"

	"github.com/kilianp07/adsp/core/model"
)

// SolutionEvent is published for every improving solution.
type SolutionEvent struct {
	RunID     string
	Instance  string
	Phase     int
	Objective string
	Solution  *model.Solution
	Elapsed   time.Duration
	Optimal   bool
}

// PhaseEvent is published when a phase starts (Done false) and ends.
type PhaseEvent struct {
	RunID     string
	Instance  string
	Phase     int
	Objective string
	Done      bool
	Solutions int
	Bound     int
	Duration  time.Duration
}

// RunEvent is published once per run. Err is nil on success, including
// runs that found no solution.
type RunEvent struct {
	RunID    string
	Instance string
	Strategy string
	Best     *model.Solution
	Duration time.Duration
	Err      error
}

// Durable keeps the run outcome from being dropped by a lagging subscriber.
func (RunEvent) Durable() {}
