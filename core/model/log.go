package model

import "math"

// NoValue is returned by the Log accessors when no entry matches.
const NoValue = math.MaxInt

// NoTime is returned by the Log time accessors when no entry matches.
const NoTime = math.MaxFloat64

// LogEntry records one improving solution found during a search.
type LogEntry struct {
	Time     float64 `json:"time" yaml:"time"` // seconds since the run started
	Makespan int     `json:"makespan" yaml:"makespan"`
	Cost     int     `json:"cost" yaml:"cost"`
	Optimal  bool    `json:"optimal" yaml:"optimal"`
}

// Log is the search report of one run.
type Log struct {
	Instance      string     `json:"instance" yaml:"instance"`
	MakespanBound int        `json:"makespanBound" yaml:"makespanBound"`
	CostBound     int        `json:"costBound" yaml:"costBound"`
	Entries       []LogEntry `json:"log" yaml:"log"`
}

// BestMakespan returns the smallest makespan in the log.
func (l Log) BestMakespan() int { return l.BestMakespanFrom(0) }

// BestCost returns the smallest cost in the log.
func (l Log) BestCost() int { return l.BestCostFrom(0) }

// BestMakespanFrom returns the smallest makespan among entries found at or
// after t.
func (l Log) BestMakespanFrom(t float64) int {
	best := NoValue
	for _, e := range l.Entries {
		if e.Time >= t && e.Makespan < best {
			best = e.Makespan
		}
	}
	return best
}

// BestCostFrom returns the smallest cost among entries found at or after t.
func (l Log) BestCostFrom(t float64) int {
	best := NoValue
	for _, e := range l.Entries {
		if e.Time >= t && e.Cost < best {
			best = e.Cost
		}
	}
	return best
}

// TimeToBestMakespan returns the earliest time the best makespan was reached.
func (l Log) TimeToBestMakespan() float64 { return l.TimeToBestMakespanFrom(0) }

// TimeToBestCost returns the earliest time the best cost was reached.
func (l Log) TimeToBestCost() float64 { return l.TimeToBestCostFrom(0) }

// TimeToBestMakespanFrom is TimeToBestMakespan restricted to entries at or
// after t.
func (l Log) TimeToBestMakespanFrom(t float64) float64 {
	return timeToBest(l.Entries, t, func(e LogEntry) int { return e.Makespan })
}

// TimeToBestCostFrom is TimeToBestCost restricted to entries at or after t.
func (l Log) TimeToBestCostFrom(t float64) float64 {
	return timeToBest(l.Entries, t, func(e LogEntry) int { return e.Cost })
}

func timeToBest(entries []LogEntry, from float64, obj func(LogEntry) int) float64 {
	best, bestT := NoValue, NoTime
	for _, e := range entries {
		if e.Time < from {
			continue
		}
		v := obj(e)
		if v < best || (v == best && e.Time < bestT) {
			best, bestT = v, e.Time
		}
	}
	return bestT
}

// IsMakespanOptimal reports whether the best makespan meets the bound.
func (l Log) IsMakespanOptimal() bool { return l.BestMakespan() == l.MakespanBound }

// IsCostOptimal reports whether the best cost meets the bound.
func (l Log) IsCostOptimal() bool { return l.BestCost() == l.CostBound }

// FirstMakespan returns the makespan of the first solution.
func (l Log) FirstMakespan() int {
	if len(l.Entries) == 0 {
		return NoValue
	}
	return l.Entries[0].Makespan
}

// FirstCost returns the cost of the first solution.
func (l Log) FirstCost() int {
	if len(l.Entries) == 0 {
		return NoValue
	}
	return l.Entries[0].Cost
}

// LastMakespan returns the makespan of the last solution.
func (l Log) LastMakespan() int {
	if len(l.Entries) == 0 {
		return NoValue
	}
	return l.Entries[len(l.Entries)-1].Makespan
}

// LastCost returns the cost of the last solution.
func (l Log) LastCost() int {
	if len(l.Entries) == 0 {
		return NoValue
	}
	return l.Entries[len(l.Entries)-1].Cost
}

// TimeToFirstSolution returns the time of the first entry.
func (l Log) TimeToFirstSolution() float64 {
	if len(l.Entries) == 0 {
		return NoTime
	}
	return l.Entries[0].Time
}

// TimeToLastSolution returns the time of the last entry.
func (l Log) TimeToLastSolution() float64 {
	if len(l.Entries) == 0 {
		return NoTime
	}
	return l.Entries[len(l.Entries)-1].Time
}

// FirstMakespanFrom returns the makespan of the first entry at or after t.
func (l Log) FirstMakespanFrom(t float64) int {
	for _, e := range l.Entries {
		if e.Time >= t {
			return e.Makespan
		}
	}
	return NoValue
}

// FirstCostFrom returns the cost of the first entry at or after t.
func (l Log) FirstCostFrom(t float64) int {
	for _, e := range l.Entries {
		if e.Time >= t {
			return e.Cost
		}
	}
	return NoValue
}

// IsLexicographic reports whether the log holds two consecutive entries
// with identical objectives, which happens when a second phase re-reports
// the incumbent it was seeded with.
func (l Log) IsLexicographic() bool { return l.SecondPhaseStart() != NoTime }

// SecondPhaseStart returns the time at which a second search phase
// re-reported its starting incumbent.
func (l Log) SecondPhaseStart() float64 {
	lastMk, lastCost := NoValue, NoValue
	for _, e := range l.Entries {
		if e.Makespan == lastMk && e.Cost == lastCost {
			return e.Time
		}
		lastMk, lastCost = e.Makespan, e.Cost
	}
	return NoTime
}

// Gap returns the relative distance of obj to bound.
func Gap(obj, bound float64) float64 {
	return (obj - bound) / bound
}
