package check

import (
	"errors"

	"github.com/kilianp07/adsp/core/model"
)

// Point is the level of a profile from Time until the next point.
type Point struct {
	Time  int
	Level int
}

func profile(events []event) []Point {
	var out []Point
	levels(events, func(t, level int) {
		out = append(out, Point{Time: t, Level: level})
	})
	return out
}

func spansOf(sol *model.Solution) (*model.Index, map[int]model.Activity, error) {
	if sol == nil || sol.Instance == nil {
		return nil, nil, errors.New("solution has no instance")
	}
	idx, err := model.NewIndex(sol.Instance)
	if err != nil {
		return nil, nil, err
	}
	spans := make(map[int]model.Activity, len(sol.Activities))
	for _, a := range sol.Activities {
		spans[a.Operation] = a
	}
	return idx, spans, nil
}

// BalanceProfile returns the shifted AF and LR levels of sol. A level of
// balance means the aircraft is centred on that axis.
func BalanceProfile(sol *model.Solution) (af, lr []Point, err error) {
	idx, spans, err := spansOf(sol)
	if err != nil {
		return nil, nil, err
	}
	afEvents, lrEvents := balanceEvents(sol.Instance, idx, spans)
	return profile(afEvents), profile(lrEvents), nil
}

// OccupancyProfile returns the occupancy levels of every location keyed by
// location id. Locations never used have no points.
func OccupancyProfile(sol *model.Solution) (map[int][]Point, error) {
	_, spans, err := spansOf(sol)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]Point)
	for loc, events := range occupancyEvents(sol.Instance, spans) {
		out[loc] = profile(events)
	}
	return out, nil
}
