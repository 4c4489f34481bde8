package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/internal/fixture"
)

func twoOpsSolution() *model.Solution {
	return &model.Solution{
		Instance:   fixture.TwoOps(),
		Activities: []model.Activity{{Operation: 0, Start: 0, End: 5}, {Operation: 1, Start: 5, End: 8}},
		Assignments: []model.Assignment{
			{Resource: 0, Operation: 0, Requirement: 0, Start: 0, End: 5},
			{Resource: 0, Operation: 1, Requirement: 0, Start: 5, End: 8},
		},
		Makespan: 8,
		Cost:     80,
	}
}

func rules(vs []Violation) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestValidSolution(t *testing.T) {
	assert.NoError(t, Solution(twoOpsSolution()))
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Solution)
		rule   string
	}{
		{"wrong duration", func(s *model.Solution) {
			s.Activities[1].End = 9
			s.Assignments[1].End = 9
			s.Makespan, s.Cost = 9, 90
		}, RuleActivity},
		{"missing activity", func(s *model.Solution) {
			s.Activities = s.Activities[:1]
			s.Assignments = s.Assignments[:1]
			s.Makespan, s.Cost = 5, 50
		}, RuleActivity},
		{"beyond horizon", func(s *model.Solution) { s.Instance.MaxTime = 7 }, RuleActivity},
		{"precedence", func(s *model.Solution) {
			s.Activities[1] = model.Activity{Operation: 1, Start: 4, End: 7}
			s.Assignments[1].Start, s.Assignments[1].End = 4, 7
			s.Instance.Resources = append(s.Instance.Resources, model.Resource{ID: 1, Category: "A", Cost: 10})
			s.Assignments[1].Resource = 1
			s.Makespan = 7
		}, RulePrecedence},
		{"missing assignment", func(s *model.Solution) {
			s.Assignments = s.Assignments[:1]
			s.Cost = 50
		}, RuleAllocation},
		{"incompatible resource", func(s *model.Solution) {
			s.Instance.Resources[0].Category = "B"
		}, RuleAllocation},
		{"desynchronised assignment", func(s *model.Solution) {
			s.Instance.MaxTime = 200
			s.Assignments[1].Start, s.Assignments[1].End = 6, 9
		}, RuleAllocation},
		{"unavailable resource", func(s *model.Solution) {
			s.Instance.Resources[0].Unavailable = []model.TimeWindow{{Start: 6, End: 7}}
		}, RuleOverlap},
		{"occupancy", func(s *model.Solution) {
			s.Instance.Locations[0].Capacity = 0
		}, RuleOccupancy},
		{"objective", func(s *model.Solution) { s.Cost = 1 }, RuleObjective},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := twoOpsSolution()
			tt.mutate(sol)
			err := Solution(sol)
			require.Error(t, err)
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Contains(t, rules(cerr.Violations), tt.rule)
		})
	}
}

func TestOverlapBetweenAssignments(t *testing.T) {
	sol := twoOpsSolution()
	sol.Instance.Operations[1].Precedences = nil
	sol.Activities[1] = model.Activity{Operation: 1, Start: 2, End: 5}
	sol.Assignments[1].Start, sol.Assignments[1].End = 2, 5
	sol.Makespan = 5
	assert.Equal(t, []string{RuleOverlap}, rules(Violations(sol)))
}

func TestBalance(t *testing.T) {
	inst := fixture.Hangar()
	// removing only aft mass first tips the aircraft forward
	sol := &model.Solution{Instance: inst}
	for _, op := range inst.Operations {
		start := 0
		if op.ID == 1 || op.ID == 2 {
			start = 10
		}
		sol.Activities = append(sol.Activities, model.Activity{Operation: op.ID, Start: start, End: start + op.Duration})
	}
	vs := Violations(sol)
	assert.Contains(t, rules(vs), RuleBalance)

	inst.BalanceAF, inst.BalanceLR = 100, 100
	assert.NotContains(t, rules(Violations(sol)), RuleBalance)
}

func TestNilSolution(t *testing.T) {
	assert.Error(t, Solution(nil))
	assert.Error(t, Solution(&model.Solution{}))
}

func TestCost(t *testing.T) {
	assert.Equal(t, 80, Cost(twoOpsSolution()))
}
