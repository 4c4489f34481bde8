package sgs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/core/cpmodel"
	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/internal/fixture"
)

func build(t *testing.T, inst *model.Instance) *cpmodel.Model {
	t.Helper()
	m, err := cpmodel.Build(inst, Factory(Options{Seed: 42}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// drain runs a search to completion and returns the objective values seen.
func drain(t *testing.T, m *cpmodel.Model, expr engine.IntExpr) []int {
	t.Helper()
	s, err := m.Engine.StartSearch(context.Background())
	require.NoError(t, err)
	var values []int
	for {
		ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		values = append(values, m.Engine.Value(expr))
	}
	require.NoError(t, s.End())
	return values
}

func TestMinimizeMakespanTwoOps(t *testing.T) {
	m := build(t, fixture.TwoOps())
	_, err := m.Engine.Minimize(m.Makespan)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{TimeLimit: 5 * time.Second, Workers: 2}))

	start := time.Now()
	values := drain(t, m, m.Makespan)
	require.NotEmpty(t, values)
	assert.Equal(t, 8, values[len(values)-1])
	assert.Less(t, time.Since(start), 5*time.Second, "search stops at the static bound")
	assert.Equal(t, 8, m.Engine.ObjectiveBound())
	assert.Zero(t, m.Engine.ObjectiveGap())
	assert.Equal(t, 80, m.Engine.Value(m.Cost))

	op0, op1 := m.Operations[0], m.Operations[1]
	assert.Equal(t, 0, m.Engine.Start(op0))
	assert.Equal(t, 5, m.Engine.Start(op1))
	assert.Equal(t, 8, m.Engine.End(op1))
	for _, c := range m.Candidates {
		assert.True(t, m.Engine.Present(c.Interval))
	}
}

func TestValuesStrictlyImprove(t *testing.T) {
	m := build(t, fixture.Hangar())
	_, err := m.Engine.Minimize(m.Makespan)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{
		TimeLimit: 300 * time.Millisecond,
		Workers:   2,
		Search:    engine.SearchDepthFirst,
	}))

	values := drain(t, m, m.Makespan)
	require.NotEmpty(t, values, "hangar has feasible schedules")
	for i := 1; i < len(values); i++ {
		assert.Less(t, values[i], values[i-1])
	}
	assert.GreaterOrEqual(t, values[len(values)-1], 13)
	assert.LessOrEqual(t, values[0], 60)
}

func TestMinimizeCostReachesBound(t *testing.T) {
	m := build(t, fixture.TwoOps())
	_, err := m.Engine.Minimize(m.Cost)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{TimeLimit: 5 * time.Second, Workers: 1}))

	values := drain(t, m, m.Cost)
	require.Len(t, values, 1)
	assert.Equal(t, 80, values[0])
	assert.Equal(t, 80, m.Engine.ObjectiveBound())
}

func TestFailureDirectedFindsBalancedOrder(t *testing.T) {
	m := build(t, fixture.Hangar())
	_, err := m.Engine.Minimize(m.Makespan)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{
		TimeLimit:                200 * time.Millisecond,
		Workers:                  2,
		FailureDirectedEmphasis:  2,
		FailureDirectedMaxMemory: 1 << 20,
	}))
	assert.NotEmpty(t, drain(t, m, m.Makespan))
}

func TestBalancedPairStartsTogether(t *testing.T) {
	m := build(t, fixture.Paired())
	_, err := m.Engine.Minimize(m.Makespan)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{TimeLimit: 2 * time.Second, Workers: 2}))

	values := drain(t, m, m.Makespan)
	require.NotEmpty(t, values, "a forward and an aft removal starting together are balanced")
	assert.Equal(t, 5, values[len(values)-1])
	fwd, aft := m.Operations[0], m.Operations[1]
	assert.Equal(t, m.Engine.Start(fwd), m.Engine.Start(aft))
	assert.Equal(t, 100, m.Engine.Value(m.Cost))
}

func TestStartingPointIsReplayed(t *testing.T) {
	inst := fixture.TwoOps()
	inst.Resources = append(inst.Resources, model.Resource{ID: 1, Name: "r1", Category: "A", Cost: 20})
	m := build(t, inst)

	// a poor but feasible schedule on the expensive resource, with a gap
	prior := &model.Solution{
		Instance:   inst,
		Activities: []model.Activity{{Operation: 0, Start: 0, End: 5}, {Operation: 1, Start: 6, End: 9}},
		Assignments: []model.Assignment{
			{Resource: 1, Operation: 0, Requirement: 0, Start: 0, End: 5},
			{Resource: 1, Operation: 1, Requirement: 0, Start: 6, End: 9},
		},
	}
	sp, err := m.StartingPoint(prior)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetStartingPoint(sp))
	_, err = m.Engine.AddLessOrEqual(m.Makespan, 9)
	require.NoError(t, err)
	_, err = m.Engine.AddLessOrEqual(m.Cost, 160)
	require.NoError(t, err)
	_, err = m.Engine.Minimize(m.Cost)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{TimeLimit: 5 * time.Second, Workers: 1}))

	values := drain(t, m, m.Cost)
	require.NotEmpty(t, values)
	assert.Equal(t, 160, values[0], "first solution is the starting point")
	assert.Equal(t, 80, values[len(values)-1])
	assert.LessOrEqual(t, m.Engine.Value(m.Makespan), 9)
}

func TestInfeasibleStopsAtFailLimit(t *testing.T) {
	inst := fixture.TwoOps()
	inst.MaxTime = 7
	m := build(t, inst)
	_, err := m.Engine.Minimize(m.Makespan)
	require.NoError(t, err)
	require.NoError(t, m.Engine.SetParams(engine.Params{TimeLimit: 10 * time.Second, FailLimit: 5, Workers: 2}))

	start := time.Now()
	assert.Empty(t, drain(t, m, m.Makespan))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestNoMutationDuringSearch(t *testing.T) {
	m := build(t, fixture.TwoOps())
	require.NoError(t, m.Engine.SetParams(engine.Params{TimeLimit: time.Second}))
	s, err := m.Engine.StartSearch(context.Background())
	require.NoError(t, err)

	_, err = m.Engine.AddLessOrEqual(m.Makespan, 10)
	assert.ErrorIs(t, err, engine.ErrSearchActive)
	assert.ErrorIs(t, m.Engine.SetStartingPoint(nil), engine.ErrSearchActive)

	// satisfaction search: one solution then exhausted
	ok, err := s.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.End())

	_, err = m.Engine.AddLessOrEqual(m.Makespan, 10)
	assert.NoError(t, err)
}

func TestContextCancelStopsSearch(t *testing.T) {
	m := build(t, fixture.Hangar())
	_, err := m.Engine.Minimize(m.Makespan)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	s, err := m.Engine.StartSearch(ctx)
	require.NoError(t, err)
	cancel()
	for {
		ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.NoError(t, s.End())
}

func TestClosedEngine(t *testing.T) {
	e := New(Options{})
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	_, err := e.NewInterval(engine.IntervalSpec{Size: 1})
	assert.ErrorIs(t, err, engine.ErrClosed)
}

func TestModelValidation(t *testing.T) {
	e := New(Options{Seed: 1})
	a, err := e.NewInterval(engine.IntervalSpec{Name: "a", Size: 2})
	require.NoError(t, err)
	b, err := e.NewInterval(engine.IntervalSpec{Name: "b", Size: 2, Optional: true})
	require.NoError(t, err)

	_, err = e.NewInterval(engine.IntervalSpec{Name: "bad", Size: -1})
	assert.Error(t, err)
	_, err = e.AddAlternative(b, []engine.Interval{a}, 1)
	assert.Error(t, err, "optional principal")
	_, err = e.AddAlternative(a, []engine.Interval{b}, 2)
	assert.Error(t, err, "cardinality above candidate count")
	_, err = e.AddEndBeforeStart(a, 99)
	assert.Error(t, err)
	_, err = e.AddCumulRange(engine.CumulExpr{}, 3, 1)
	assert.Error(t, err)
	_, err = e.AddLessOrEqual(engine.WeightedPresence([]engine.Interval{a}, nil), 1)
	assert.Error(t, err)

	obj, err := e.Minimize(engine.MaxOfEnds([]engine.Interval{a}))
	require.NoError(t, err)
	_, err = e.Minimize(engine.MaxOfEnds([]engine.Interval{a}))
	assert.Error(t, err, "second objective")
	require.NoError(t, e.RemoveObjective(obj))
	assert.True(t, errors.Is(e.RemoveObjective(obj), errNoObjective))
}

func TestPrecedenceCycleRejectedAtStart(t *testing.T) {
	e := New(Options{Seed: 1})
	a, _ := e.NewInterval(engine.IntervalSpec{Name: "a", Size: 1})
	b, _ := e.NewInterval(engine.IntervalSpec{Name: "b", Size: 1})
	_, err := e.AddEndBeforeStart(a, b)
	require.NoError(t, err)
	_, err = e.AddEndBeforeStart(b, a)
	require.NoError(t, err)
	_, err = e.StartSearch(context.Background())
	assert.ErrorIs(t, err, errCycle)
}

func TestProfileWithin(t *testing.T) {
	val := []engine.IntervalValue{
		{Present: true, Start: 0, End: 4},
		{Present: true, Start: 4, End: 6},
		{Present: false},
	}
	placed := []bool{true, true, true}
	pulse := cumulRange{
		expr: engine.CumulExpr{}.Plus(engine.PulseOf(0, 2)).Plus(engine.PulseOf(1, 2)).Plus(engine.PulseOf(2, 5)),
		max:  2,
	}
	assert.True(t, profileWithin(pulse, val, placed), "back to back pulses do not stack")

	balance := cumulRange{
		expr: engine.CumulExpr{}.Plus(engine.StepAt(0, 5)).
			Plus(engine.StepAtStartOf(0, 4)).
			Minus(engine.StepAtStartOf(1, 4)),
		max: 8,
	}
	assert.False(t, profileWithin(balance, val, placed))
	balance.max = 9
	assert.True(t, profileWithin(balance, val, placed))
	placed[0] = false
	balance.max = 5
	balance.min = 1
	assert.True(t, profileWithin(balance, val, placed), "unplaced intervals are ignored")
}
