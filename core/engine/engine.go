// Package engine defines the constraint engine capability surface used by
// the model builder and the search orchestrator. Implementations live in
// infra packages; nothing in core depends on a concrete engine.
package engine

import (
	"context"
	"time"
)

// Interval is a handle to an interval variable created by an Engine.
type Interval int

// Sequence is a handle to a sequence variable over a set of intervals.
type Sequence int

// Constraint is a handle to a posted constraint.
type Constraint int

// Objective is a handle to a posted objective.
type Objective int

// IntervalSpec describes an interval variable.
type IntervalSpec struct {
	Name     string
	Size     int  // fixed duration
	Optional bool // presence is a decision
	// Pinned fixes the interval to [Start, Start+Size).
	Pinned bool
	Start  int
}

// SearchType selects the engine exploration strategy.
type SearchType int

const (
	SearchAuto SearchType = iota
	SearchDepthFirst
)

func (s SearchType) String() string {
	switch s {
	case SearchAuto:
		return "Auto"
	case SearchDepthFirst:
		return "DepthFirst"
	default:
		return "unknown"
	}
}

// Params holds the engine limits and search settings. Zero values mean
// "engine default" except where noted.
type Params struct {
	TimeLimit time.Duration
	FailLimit int // 0 means unbounded
	Workers   int
	Search    SearchType
	// FailureDirectedEmphasis is the number of workers biased by failure
	// statistics. Zero disables failure-directed search.
	FailureDirectedEmphasis float64
	// FailureDirectedMaxMemory caps the memory, in bytes, used to keep
	// failure statistics.
	FailureDirectedMaxMemory int
}

// IntervalValue is the value of one interval in a starting point or
// snapshot.
type IntervalValue struct {
	Present bool
	Start   int
	End     int
}

// StartingPoint is a (partial) assignment of interval variables used to
// seed a search.
type StartingPoint map[Interval]IntervalValue

// Engine is the constraint engine used to solve one model. An Engine is not
// safe for concurrent use; the model may only be changed while no search is
// active.
type Engine interface {
	NewInterval(spec IntervalSpec) (Interval, error)
	NewSequence(name string, intervals []Interval) (Sequence, error)

	AddEndBeforeStart(before, after Interval) (Constraint, error)
	AddAlternative(principal Interval, candidates []Interval, cardinality int) (Constraint, error)
	AddNoOverlap(seq Sequence) (Constraint, error)
	AddCumulRange(expr CumulExpr, min, max int) (Constraint, error)
	AddLessOrEqual(expr IntExpr, bound int) (Constraint, error)

	Minimize(expr IntExpr) (Objective, error)
	RemoveObjective(obj Objective) error

	SetParams(p Params) error
	SetStartingPoint(sp StartingPoint) error

	// StartSearch begins a search for improving solutions of the current
	// objective.
	StartSearch(ctx context.Context) (Search, error)

	// Queries on the last solution reported by Search.Next.
	Start(iv Interval) int
	End(iv Interval) int
	Present(iv Interval) bool
	Value(expr IntExpr) int
	ObjectiveBound() int
	ObjectiveGap() float64

	// Close releases the engine. It is safe to call more than once.
	Close() error
}

// Search is a finite, non-restartable sequence of improving solutions.
type Search interface {
	// Next blocks until the engine finds a solution better than the
	// previous one (true) or the search terminates (false).
	Next() (bool, error)
	// End terminates the search and releases its workers.
	End() error
}

// Factory creates a fresh engine.
type Factory func() (Engine, error)
