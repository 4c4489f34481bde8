// Package bounds computes solver-free objective bounds of an instance.
// They are used as log defaults and as sanity bounds for the search.
package bounds

import (
	"fmt"
	"math"

	"github.com/kilianp07/adsp/core/model"
)

// CyclicGraphError is returned when the precedence graph is not a DAG.
type CyclicGraphError struct {
	Operation int // id of an operation on the cycle
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("precedence graph has a cycle through operation %d", e.Operation)
}

// UnknownOperationError is returned when a precedence references an
// operation id that does not exist.
type UnknownOperationError struct {
	Operation   int
	Predecessor int
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("operation %d has unknown predecessor %d", e.Operation, e.Predecessor)
}

type visit uint8

const (
	unvisited visit = iota
	inProgress
	done
)

// MakespanLowerBound returns the length of the longest duration-weighted
// path of the precedence graph.
func MakespanLowerBound(inst *model.Instance) (int, error) {
	est, err := EarliestStarts(inst)
	if err != nil {
		return 0, err
	}
	lb := 0
	for i, op := range inst.Operations {
		lb = max(lb, est[i]+op.Duration)
	}
	return lb, nil
}

// EarliestStarts returns, for each operation position, the earliest start
// time allowed by the precedences alone.
func EarliestStarts(inst *model.Instance) ([]int, error) {
	pos := make(map[int]int, len(inst.Operations))
	for i, op := range inst.Operations {
		pos[op.ID] = i
	}
	est := make([]int, len(inst.Operations))
	state := make([]visit, len(inst.Operations))

	var compute func(i int) error
	compute = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case inProgress:
			return &CyclicGraphError{Operation: inst.Operations[i].ID}
		}
		state[i] = inProgress
		start := 0
		for _, p := range inst.Operations[i].Precedences {
			j, ok := pos[p]
			if !ok {
				return &UnknownOperationError{Operation: inst.Operations[i].ID, Predecessor: p}
			}
			if err := compute(j); err != nil {
				return err
			}
			start = max(start, est[j]+inst.Operations[j].Duration)
		}
		est[i] = start
		state[i] = done
		return nil
	}

	for i := range inst.Operations {
		if err := compute(i); err != nil {
			return nil, err
		}
	}
	return est, nil
}

// MakespanUpperBound returns the schedule horizon.
func MakespanUpperBound(inst *model.Instance) int { return inst.MaxTime }

// CostLowerBound prices every requirement with the cheapest resource of an
// accepted category.
func CostLowerBound(inst *model.Instance) int {
	table := costTable(inst, func(a, b int) bool { return a < b })
	return requirementCost(inst, func(req model.Requirement) int {
		best, found := math.MaxInt, false
		for _, c := range req.Category {
			if v, ok := table[c]; ok && v < best {
				best, found = v, true
			}
		}
		if !found {
			return 0
		}
		return best
	})
}

// CostUpperBound prices every requirement with the most expensive resource
// of an accepted category.
func CostUpperBound(inst *model.Instance) int {
	table := costTable(inst, func(a, b int) bool { return a > b })
	return requirementCost(inst, func(req model.Requirement) int {
		best := 0
		for _, c := range req.Category {
			if v, ok := table[c]; ok && v > best {
				best = v
			}
		}
		return best
	})
}

// costTable maps each category to its preferred resource cost.
func costTable(inst *model.Instance, better func(a, b int) bool) map[string]int {
	table := make(map[string]int)
	for _, r := range inst.Resources {
		if cur, ok := table[r.Category]; !ok || better(r.Cost, cur) {
			table[r.Category] = r.Cost
		}
	}
	return table
}

func requirementCost(inst *model.Instance, unit func(model.Requirement) int) int {
	total := 0
	for _, op := range inst.Operations {
		for _, req := range op.Resources {
			total += unit(req) * req.Quantity * op.Duration
		}
	}
	return total
}

// Summary gathers the static characteristics of an instance.
type Summary struct {
	Name          string `json:"name"`
	Operations    int    `json:"operations"`
	Resources     int    `json:"resources"`
	Locations     int    `json:"locations"`
	MakespanLower int    `json:"makespanLowerBound"`
	MakespanUpper int    `json:"makespanUpperBound"`
	CostLower     int    `json:"costLowerBound"`
	CostUpper     int    `json:"costUpperBound"`
}

// Summarize computes the Summary of inst.
func Summarize(inst *model.Instance) (Summary, error) {
	mk, err := MakespanLowerBound(inst)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Name:          inst.Name,
		Operations:    len(inst.Operations),
		Resources:     len(inst.Resources),
		Locations:     len(inst.Locations),
		MakespanLower: mk,
		MakespanUpper: MakespanUpperBound(inst),
		CostLower:     CostLowerBound(inst),
		CostUpper:     CostUpperBound(inst),
	}, nil
}
