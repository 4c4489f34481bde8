package bounds

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/internal/fixture"
)

func TestMakespanLowerBound(t *testing.T) {
	cases := []struct {
		name string
		inst *model.Instance
		want int
	}{
		{"two ops", fixture.TwoOps(), 8},
		{"hangar", fixture.Hangar(), 13},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := MakespanLowerBound(c.inst)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestMakespanLowerBoundDiamond(t *testing.T) {
	// 0 -> {1, 2} -> 3 with the long branch through 2.
	inst := fixture.TwoOps()
	op := inst.Operations[0]
	inst.Operations = []model.Operation{
		{ID: 10, Duration: 2, Resources: op.Resources},
		{ID: 11, Duration: 1, Resources: op.Resources, Precedences: []int{10}},
		{ID: 12, Duration: 7, Resources: op.Resources, Precedences: []int{10}},
		{ID: 13, Duration: 3, Resources: op.Resources, Precedences: []int{11, 12}},
	}
	got, err := MakespanLowerBound(inst)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	est, err := EarliestStarts(inst)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 2, 9}, est)
}

func TestMakespanLowerBoundCycle(t *testing.T) {
	_, err := MakespanLowerBound(fixture.Cyclic())
	var cyc *CyclicGraphError
	require.True(t, errors.As(err, &cyc), "got %v", err)
}

func TestMakespanLowerBoundSelfLoop(t *testing.T) {
	inst := fixture.TwoOps()
	inst.Operations[0].Precedences = []int{0}
	_, err := MakespanLowerBound(inst)
	var cyc *CyclicGraphError
	require.True(t, errors.As(err, &cyc))
	assert.Equal(t, 0, cyc.Operation)
}

func TestMakespanLowerBoundUnknownPredecessor(t *testing.T) {
	inst := fixture.TwoOps()
	inst.Operations[1].Precedences = []int{42}
	_, err := MakespanLowerBound(inst)
	var unk *UnknownOperationError
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, 42, unk.Predecessor)
}

func TestCostBounds(t *testing.T) {
	two := fixture.TwoOps()
	assert.Equal(t, 80, CostLowerBound(two))
	assert.Equal(t, 80, CostUpperBound(two))

	hangar := fixture.Hangar()
	assert.Equal(t, 590, CostLowerBound(hangar))
	assert.Equal(t, 682, CostUpperBound(hangar))
	assert.LessOrEqual(t, CostLowerBound(hangar), CostUpperBound(hangar))
}

func TestCostBoundsUnknownCategory(t *testing.T) {
	inst := fixture.Dangling()
	assert.Equal(t, 50, CostLowerBound(inst))
	assert.Equal(t, 50, CostUpperBound(inst))
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(fixture.Hangar())
	require.NoError(t, err)
	assert.Equal(t, Summary{
		Name:          "hangar",
		Operations:    8,
		Resources:     4,
		Locations:     5,
		MakespanLower: 13,
		MakespanUpper: 60,
		CostLower:     590,
		CostUpper:     682,
	}, s)
}
