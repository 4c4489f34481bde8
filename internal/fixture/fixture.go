// Package fixture provides small hand-built instances shared by the tests.
package fixture

import "github.com/kilianp07/adsp/core/model"

// TwoOps is a single chain of two operations sharing one resource:
// op0 (5) precedes op1 (3), both need one "A" resource costing 10.
// Its optimum is makespan 8 and cost 80.
func TwoOps() *model.Instance {
	return &model.Instance{
		ID:        "two-ops",
		Name:      "two-ops",
		Version:   model.SchemaVersion,
		MaxTime:   100,
		BalanceAF: 0,
		BalanceLR: 0,
		Resources: []model.Resource{
			{ID: 0, Name: "r0", Category: "A", Cost: 10},
		},
		Locations: []model.Location{
			{ID: 0, Name: "cabin", Zone: "CAB", Capacity: 2},
		},
		Operations: []model.Operation{
			{ID: 0, Name: "op0", Card: "C0", Duration: 5, Location: 0, Occupancy: 1,
				Resources: []model.Requirement{{Category: []string{"A"}, Quantity: 1}}},
			{ID: 1, Name: "op1", Card: "C1", Duration: 3, Location: 0, Occupancy: 1,
				Resources:   []model.Requirement{{Category: []string{"A"}, Quantity: 1}},
				Precedences: []int{0}},
		},
	}
}

// Hangar is a small aircraft with the four balance zones, resource
// unavailability, a two-resource requirement and a multi-category
// requirement. Its makespan lower bound is 13, its cost bounds are
// 590 and 682.
func Hangar() *model.Instance {
	mech := []string{"mech"}
	return &model.Instance{
		ID:        "hangar-1",
		Name:      "hangar",
		Version:   model.SchemaVersion,
		MaxTime:   60,
		BalanceAF: 10,
		BalanceLR: 5,
		Resources: []model.Resource{
			{ID: 0, Name: "tech-a1", Category: "mech", Cost: 10, Unavailable: []model.TimeWindow{{Start: 0, End: 4}}},
			{ID: 1, Name: "tech-a2", Category: "mech", Cost: 14},
			{ID: 2, Name: "tech-b1", Category: "elec", Cost: 12, Unavailable: []model.TimeWindow{{Start: 10, End: 14}}},
			{ID: 3, Name: "crane", Category: "lift", Cost: 30},
		},
		Locations: []model.Location{
			{ID: 0, Name: "nose", Zone: model.ZoneForward, Capacity: 2},
			{ID: 1, Name: "tail", Zone: model.ZoneAft, Capacity: 2},
			{ID: 2, Name: "right wing", Zone: model.ZoneRight, Capacity: 1},
			{ID: 3, Name: "left wing", Zone: model.ZoneLeft, Capacity: 1},
			{ID: 4, Name: "cabin", Zone: "CAB", Capacity: 3},
		},
		Operations: []model.Operation{
			{ID: 0, Name: "open panels", Card: "OP-00", Duration: 3, Location: 4, Occupancy: 1,
				Resources: []model.Requirement{{Category: mech, Quantity: 1}}},
			{ID: 1, Name: "remove radome", Card: "OP-01", Duration: 4, Location: 0, Occupancy: 1, Mass: 6,
				Resources: []model.Requirement{{Category: mech, Quantity: 1}}, Precedences: []int{0}},
			{ID: 2, Name: "remove avionics", Card: "OP-02", Duration: 5, Location: 0, Occupancy: 1, Mass: 6,
				Resources: []model.Requirement{{Category: []string{"elec"}, Quantity: 1}}, Precedences: []int{0}},
			{ID: 3, Name: "remove APU", Card: "OP-03", Duration: 6, Location: 1, Occupancy: 1, Mass: 6,
				Resources: []model.Requirement{
					{Category: mech, Quantity: 1},
					{Category: []string{"lift"}, Quantity: 1},
				}, Precedences: []int{0}},
			{ID: 4, Name: "remove tail cone", Card: "OP-04", Duration: 4, Location: 1, Occupancy: 1, Mass: 6,
				Resources: []model.Requirement{{Category: []string{"lift"}, Quantity: 1}}, Precedences: []int{3}},
			{ID: 5, Name: "remove right flap", Card: "OP-05", Duration: 3, Location: 2, Occupancy: 1, Mass: 5,
				Resources: []model.Requirement{{Category: []string{"mech", "elec"}, Quantity: 1}}},
			{ID: 6, Name: "remove left flap", Card: "OP-06", Duration: 3, Location: 3, Occupancy: 1, Mass: 5,
				Resources: []model.Requirement{{Category: mech, Quantity: 1}}},
			{ID: 7, Name: "drain fuel", Card: "OP-07", Duration: 2, Location: 4, Occupancy: 2,
				Resources: []model.Requirement{{Category: mech, Quantity: 2}}, Precedences: []int{5, 6}},
		},
	}
}

// Paired has a forward and an aft removal of equal mass whose balance
// margin is smaller than their mass: they must start together, so its
// only schedules have makespan 5 and cost 100.
func Paired() *model.Instance {
	return &model.Instance{
		ID:        "paired",
		Name:      "paired",
		Version:   model.SchemaVersion,
		MaxTime:   20,
		BalanceAF: 5,
		Resources: []model.Resource{
			{ID: 0, Name: "r0", Category: "A", Cost: 10},
			{ID: 1, Name: "r1", Category: "A", Cost: 10},
		},
		Locations: []model.Location{
			{ID: 0, Name: "nose", Zone: model.ZoneForward, Capacity: 1},
			{ID: 1, Name: "tail", Zone: model.ZoneAft, Capacity: 1},
		},
		Operations: []model.Operation{
			{ID: 0, Name: "remove nose gear", Card: "P0", Duration: 5, Location: 0, Occupancy: 1, Mass: 6,
				Resources: []model.Requirement{{Category: []string{"A"}, Quantity: 1}}},
			{ID: 1, Name: "remove tail ballast", Card: "P1", Duration: 5, Location: 1, Occupancy: 1, Mass: 6,
				Resources: []model.Requirement{{Category: []string{"A"}, Quantity: 1}}},
		},
	}
}

// Cyclic returns an instance whose precedence graph contains the cycle
// op0 -> op1 -> op2 -> op0.
func Cyclic() *model.Instance {
	inst := TwoOps()
	inst.Name = "cyclic"
	inst.Operations = append(inst.Operations, model.Operation{
		ID: 2, Name: "op2", Card: "C2", Duration: 1, Location: 0, Occupancy: 1,
		Resources:   []model.Requirement{{Category: []string{"A"}, Quantity: 1}},
		Precedences: []int{1},
	})
	inst.Operations[0].Precedences = []int{2}
	return inst
}

// Dangling returns an instance with a requirement no resource can serve.
func Dangling() *model.Instance {
	inst := TwoOps()
	inst.Name = "dangling"
	inst.Operations[1].Resources = []model.Requirement{{Category: []string{"ghost"}, Quantity: 1}}
	return inst
}
