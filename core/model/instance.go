package model

import (
	"fmt"
	"slices"
)

// SchemaVersion is the only instance format version accepted by the loader.
const SchemaVersion = "0.4"

// Zone tags a location with the aircraft area it belongs to. Only the four
// balance zones influence the mass constraints.
type Zone string

const (
	ZoneForward Zone = "FWD"
	ZoneAft     Zone = "AFT"
	ZoneRight   Zone = "RH"
	ZoneLeft    Zone = "LH"
)

// TimeWindow is a closed-open interval [Start, End) on the schedule time line.
type TimeWindow struct {
	Start int `json:"start" yaml:"start" validate:"gte=0"`
	End   int `json:"end" yaml:"end" validate:"gtefield=Start"`
}

// Duration returns End - Start.
func (w TimeWindow) Duration() int { return w.End - w.Start }

// Resource is a technician or tool that can be allocated to requirements of
// a matching category.
type Resource struct {
	ID          int          `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Category    string       `json:"category" yaml:"category" validate:"required"`
	Unavailable []TimeWindow `json:"unavailable" yaml:"unavailable" validate:"dive"`
	Cost        int          `json:"cost" yaml:"cost" validate:"gte=0"`
}

// Location is a physical area of the aircraft with a bounded occupancy.
type Location struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Zone     Zone   `json:"zone" yaml:"zone"`
	Capacity int    `json:"capacity" yaml:"capacity" validate:"gte=0"`
}

// Requirement asks for Quantity resources of any of the listed categories
// for the whole span of its operation.
type Requirement struct {
	Category []string `json:"category" yaml:"category" validate:"min=1,dive,required"`
	Quantity int      `json:"quantity" yaml:"quantity" validate:"gte=0"`
}

// Accepts reports whether a resource of the given category satisfies r.
func (r Requirement) Accepts(category string) bool {
	return slices.Contains(r.Category, category)
}

// Operation is a single disassembly task.
type Operation struct {
	ID          int           `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Card        string        `json:"card" yaml:"card"`
	Duration    int           `json:"duration" yaml:"duration" validate:"gte=0"`
	Location    int           `json:"location" yaml:"location"`
	Occupancy   int           `json:"occupancy" yaml:"occupancy" validate:"gte=0"`
	Mass        int           `json:"mass" yaml:"mass" validate:"gte=0"`
	Resources   []Requirement `json:"resources" yaml:"resources" validate:"dive"`
	Precedences []int         `json:"precedences" yaml:"precedences"`
}

// Instance is a complete scheduling problem. It is never modified after
// being loaded.
type Instance struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name" validate:"required"`
	Version    string      `json:"version" yaml:"version"`
	MaxTime    int         `json:"maxTime" yaml:"maxTime" validate:"gte=0"`
	BalanceAF  int         `json:"balanceAF" yaml:"balanceAF" validate:"gte=0"`
	BalanceLR  int         `json:"balanceLR" yaml:"balanceLR" validate:"gte=0"`
	Resources  []Resource  `json:"resources" yaml:"resources" validate:"dive"`
	Locations  []Location  `json:"locations" yaml:"locations" validate:"dive"`
	Operations []Operation `json:"operations" yaml:"operations" validate:"dive"`
}

// Index resolves operation, resource and location ids to their position in
// the instance slices.
type Index struct {
	operations map[int]int
	resources  map[int]int
	locations  map[int]int
}

// NewIndex builds the id tables of inst. Duplicate ids are rejected.
func NewIndex(inst *Instance) (*Index, error) {
	idx := &Index{
		operations: make(map[int]int, len(inst.Operations)),
		resources:  make(map[int]int, len(inst.Resources)),
		locations:  make(map[int]int, len(inst.Locations)),
	}
	for i, op := range inst.Operations {
		if _, dup := idx.operations[op.ID]; dup {
			return nil, fmt.Errorf("duplicate operation id %d", op.ID)
		}
		idx.operations[op.ID] = i
	}
	for i, res := range inst.Resources {
		if _, dup := idx.resources[res.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %d", res.ID)
		}
		idx.resources[res.ID] = i
	}
	for i, loc := range inst.Locations {
		if _, dup := idx.locations[loc.ID]; dup {
			return nil, fmt.Errorf("duplicate location id %d", loc.ID)
		}
		idx.locations[loc.ID] = i
	}
	return idx, nil
}

// Operation returns the position of the operation with the given id.
func (x *Index) Operation(id int) (int, bool) {
	i, ok := x.operations[id]
	return i, ok
}

// Resource returns the position of the resource with the given id.
func (x *Index) Resource(id int) (int, bool) {
	i, ok := x.resources[id]
	return i, ok
}

// Location returns the position of the location with the given id.
func (x *Index) Location(id int) (int, bool) {
	i, ok := x.locations[id]
	return i, ok
}

// LocationOf returns the location an operation is performed at.
func (inst *Instance) LocationOf(x *Index, op Operation) (Location, bool) {
	i, ok := x.Location(op.Location)
	if !ok {
		return Location{}, false
	}
	return inst.Locations[i], true
}
