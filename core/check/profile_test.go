package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/internal/fixture"
)

func TestBalanceProfile(t *testing.T) {
	inst := fixture.Hangar()
	sol := &model.Solution{Instance: inst}
	for _, op := range inst.Operations {
		start := 0
		if op.ID == 1 || op.ID == 2 {
			start = 10
		}
		sol.Activities = append(sol.Activities, model.Activity{Operation: op.ID, Start: start, End: start + op.Duration})
	}
	af, lr, err := BalanceProfile(sol)
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, -2}, {10, 10}}, af)
	assert.Equal(t, []Point{{0, 5}}, lr)
}

func TestOccupancyProfile(t *testing.T) {
	occ, err := OccupancyProfile(twoOpsSolution())
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 1}, {5, 1}, {8, 0}}, occ[0])

	_, err = OccupancyProfile(nil)
	assert.Error(t, err)
}
