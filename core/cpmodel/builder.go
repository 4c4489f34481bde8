// Package cpmodel encodes a scheduling instance into interval variables and
// constraints of a core/engine.Engine.
package cpmodel

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/kilianp07/adsp/core/engine"
	"github.com/kilianp07/adsp/core/model"
)

// Objective selects one of the two objective expressions of a Model.
type Objective int

const (
	Makespan Objective = iota
	Cost
)

func (o Objective) String() string {
	if o == Cost {
		return "cost"
	}
	return "makespan"
}

// Of returns the value of o in sol.
func (o Objective) Of(sol *model.Solution) int {
	if o == Cost {
		return sol.Cost
	}
	return sol.Makespan
}

// Candidate is an optional interval allocating one resource to one
// requirement of an operation.
type Candidate struct {
	Operation   int // operation id
	Requirement int // position in Operation.Resources
	Resource    int // resource id
	Interval    engine.Interval
	Weight      int // duration * resource cost
}

type candidateKey struct {
	operation, requirement, resource int
}

// Model is an instance encoded into an engine. The Model owns the engine
// and releases it on Close.
type Model struct {
	Instance *model.Instance
	Index    *model.Index
	Engine   engine.Engine

	// Operations holds the mandatory interval of each operation, in the
	// order of Instance.Operations.
	Operations []engine.Interval
	Candidates []Candidate
	// Windows holds the pinned unavailability intervals.
	Windows []engine.Interval

	DiffAF   engine.CumulExpr
	DiffLR   engine.CumulExpr
	Makespan engine.IntExpr
	Cost     engine.IntExpr

	candidates map[candidateKey]int
}

// Build validates inst and encodes it into an engine obtained from factory.
// Instance errors are reported as *ModelBuildError without calling factory.
// Engine failures are reported as *engine.EngineError; the engine is closed
// before returning.
func Build(inst *model.Instance, factory engine.Factory) (*Model, error) {
	idx, err := model.NewIndex(inst)
	if err != nil {
		return nil, &ModelBuildError{Instance: inst.Name, Err: err}
	}
	if err := check(inst, idx); err != nil {
		return nil, &ModelBuildError{Instance: inst.Name, Err: err}
	}

	eng, err := factory()
	if err != nil {
		return nil, engine.Wrap("create", err)
	}
	m := &Model{
		Instance:   inst,
		Index:      idx,
		Engine:     eng,
		candidates: make(map[candidateKey]int),
	}
	if err := m.encode(); err != nil {
		_ = eng.Close()
		return nil, engine.Wrap("build", err)
	}
	return m, nil
}

// check rejects instances the engine cannot represent.
func check(inst *model.Instance, idx *model.Index) error {
	g := simple.NewDirectedGraph()
	for i := range inst.Operations {
		g.AddNode(simple.Node(i))
	}
	for i, op := range inst.Operations {
		if _, ok := idx.Location(op.Location); !ok {
			return fmt.Errorf("operation %d: %w %d", op.ID, ErrUnknownLocation, op.Location)
		}
		for r, req := range op.Resources {
			n := 0
			for _, res := range inst.Resources {
				if req.Accepts(res.Category) {
					n++
				}
			}
			switch {
			case n == 0:
				return fmt.Errorf("operation %d requirement %d %v: %w", op.ID, r, req.Category, ErrDanglingCategory)
			case n < req.Quantity:
				return fmt.Errorf("operation %d requirement %d needs %d, has %d: %w", op.ID, r, req.Quantity, n, ErrTooFewCandidates)
			}
		}
		for _, p := range op.Precedences {
			j, ok := idx.Operation(p)
			if !ok {
				return fmt.Errorf("operation %d: %w %d", op.ID, ErrUnknownPredecessor, p)
			}
			// simple graphs panic on self edges
			if j == i {
				return fmt.Errorf("operation %d precedes itself: %w", op.ID, ErrCyclicPrecedence)
			}
			g.SetEdge(simple.Edge{F: simple.Node(j), T: simple.Node(i)})
		}
	}
	if _, err := topo.Sort(g); err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) && len(cycles) > 0 {
			ids := make([]int, 0, len(cycles[0]))
			for _, n := range cycles[0] {
				ids = append(ids, inst.Operations[n.ID()].ID)
			}
			slices.Sort(ids)
			return fmt.Errorf("operations %v: %w", ids, ErrCyclicPrecedence)
		}
		return fmt.Errorf("%w: %v", ErrCyclicPrecedence, err)
	}
	return nil
}

func (m *Model) encode() error {
	inst, eng := m.Instance, m.Engine

	m.Operations = make([]engine.Interval, len(inst.Operations))
	for i, op := range inst.Operations {
		iv, err := eng.NewInterval(engine.IntervalSpec{Name: fmt.Sprintf("O[%d]", op.ID), Size: op.Duration})
		if err != nil {
			return err
		}
		m.Operations[i] = iv
	}

	for i, op := range inst.Operations {
		for _, p := range op.Precedences {
			j, _ := m.Index.Operation(p)
			if _, err := eng.AddEndBeforeStart(m.Operations[j], m.Operations[i]); err != nil {
				return err
			}
		}
	}

	if err := m.encodeBalance(); err != nil {
		return err
	}
	if err := m.encodeOccupancy(); err != nil {
		return err
	}
	if err := m.encodeAllocation(); err != nil {
		return err
	}
	if err := m.encodeExclusivity(); err != nil {
		return err
	}

	m.Makespan = engine.MaxOfEnds(m.Operations)
	if _, err := eng.AddLessOrEqual(m.Makespan, inst.MaxTime); err != nil {
		return err
	}
	ivs := make([]engine.Interval, len(m.Candidates))
	weights := make([]int, len(m.Candidates))
	for i, c := range m.Candidates {
		ivs[i] = c.Interval
		weights[i] = c.Weight
	}
	m.Cost = engine.WeightedPresence(ivs, weights)
	return nil
}

// encodeBalance keeps the signed forward/aft and right/left mass
// differences, shifted by the allowed balance, within [0, 2*balance].
func (m *Model) encodeBalance() error {
	inst := m.Instance
	m.DiffAF = engine.CumulExpr{}.Plus(engine.StepAt(0, inst.BalanceAF))
	m.DiffLR = engine.CumulExpr{}.Plus(engine.StepAt(0, inst.BalanceLR))
	for i, op := range inst.Operations {
		if op.Mass <= 0 {
			continue
		}
		loc, _ := inst.LocationOf(m.Index, op)
		step := engine.StepAtStartOf(m.Operations[i], op.Mass)
		switch loc.Zone {
		case model.ZoneForward:
			m.DiffAF = m.DiffAF.Plus(step)
		case model.ZoneAft:
			m.DiffAF = m.DiffAF.Minus(step)
		case model.ZoneRight:
			m.DiffLR = m.DiffLR.Plus(step)
		case model.ZoneLeft:
			m.DiffLR = m.DiffLR.Minus(step)
		}
	}
	if _, err := m.Engine.AddCumulRange(m.DiffAF, 0, 2*inst.BalanceAF); err != nil {
		return err
	}
	_, err := m.Engine.AddCumulRange(m.DiffLR, 0, 2*inst.BalanceLR)
	return err
}

func (m *Model) encodeOccupancy() error {
	inst := m.Instance
	usage := make([]engine.CumulExpr, len(inst.Locations))
	for i, op := range inst.Operations {
		l, _ := m.Index.Location(op.Location)
		usage[l] = usage[l].Plus(engine.PulseOf(m.Operations[i], op.Occupancy))
	}
	for l, expr := range usage {
		if len(expr.Terms) == 0 {
			continue
		}
		if _, err := m.Engine.AddCumulRange(expr, 0, inst.Locations[l].Capacity); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) encodeAllocation() error {
	inst := m.Instance
	for i, op := range inst.Operations {
		for r, req := range op.Resources {
			var alts []engine.Interval
			for _, res := range inst.Resources {
				if !req.Accepts(res.Category) {
					continue
				}
				iv, err := m.Engine.NewInterval(engine.IntervalSpec{
					Name:     fmt.Sprintf("R[%d,%d,%d]", op.ID, r, res.ID),
					Size:     op.Duration,
					Optional: true,
				})
				if err != nil {
					return err
				}
				m.candidates[candidateKey{op.ID, r, res.ID}] = len(m.Candidates)
				m.Candidates = append(m.Candidates, Candidate{
					Operation:   op.ID,
					Requirement: r,
					Resource:    res.ID,
					Interval:    iv,
					Weight:      op.Duration * res.Cost,
				})
				alts = append(alts, iv)
			}
			if _, err := m.Engine.AddAlternative(m.Operations[i], alts, req.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) encodeExclusivity() error {
	byResource := make(map[int][]engine.Interval, len(m.Instance.Resources))
	for _, c := range m.Candidates {
		byResource[c.Resource] = append(byResource[c.Resource], c.Interval)
	}
	for _, res := range m.Instance.Resources {
		ivs := byResource[res.ID]
		for w, win := range res.Unavailable {
			iv, err := m.Engine.NewInterval(engine.IntervalSpec{
				Name:   fmt.Sprintf("U[%d,%d]", res.ID, w),
				Size:   win.Duration(),
				Pinned: true,
				Start:  win.Start,
			})
			if err != nil {
				return err
			}
			m.Windows = append(m.Windows, iv)
			ivs = append(ivs, iv)
		}
		if len(ivs) == 0 {
			continue
		}
		seq, err := m.Engine.NewSequence(fmt.Sprintf("S[%d]", res.ID), ivs)
		if err != nil {
			return err
		}
		if _, err := m.Engine.AddNoOverlap(seq); err != nil {
			return err
		}
	}
	return nil
}

// Candidate returns the candidate interval allocating resource to the
// requirement of operation.
func (m *Model) Candidate(operation, requirement, resource int) (engine.Interval, bool) {
	i, ok := m.candidates[candidateKey{operation, requirement, resource}]
	if !ok {
		return 0, false
	}
	return m.Candidates[i].Interval, true
}

// Objective returns the expression of o.
func (m *Model) Objective(o Objective) engine.IntExpr {
	if o == Cost {
		return m.Cost
	}
	return m.Makespan
}

// StartingPoint converts sol into an engine starting point. Candidates not
// used by sol are marked absent.
func (m *Model) StartingPoint(sol *model.Solution) (engine.StartingPoint, error) {
	sp := make(engine.StartingPoint, len(m.Operations)+len(m.Candidates))
	for _, c := range m.Candidates {
		sp[c.Interval] = engine.IntervalValue{}
	}
	for _, a := range sol.Activities {
		i, ok := m.Index.Operation(a.Operation)
		if !ok {
			return nil, fmt.Errorf("starting point: unknown operation %d", a.Operation)
		}
		sp[m.Operations[i]] = engine.IntervalValue{Present: true, Start: a.Start, End: a.End}
	}
	for _, a := range sol.Assignments {
		iv, ok := m.Candidate(a.Operation, a.Requirement, a.Resource)
		if !ok {
			return nil, fmt.Errorf("starting point: no candidate for resource %d on operation %d requirement %d",
				a.Resource, a.Operation, a.Requirement)
		}
		sp[iv] = engine.IntervalValue{Present: true, Start: a.Start, End: a.End}
	}
	return sp, nil
}

// Snapshot captures the engine's current solution as a starting point.
func (m *Model) Snapshot() engine.StartingPoint {
	sp := make(engine.StartingPoint, len(m.Operations)+len(m.Candidates))
	capture := func(iv engine.Interval) {
		if !m.Engine.Present(iv) {
			sp[iv] = engine.IntervalValue{}
			return
		}
		sp[iv] = engine.IntervalValue{Present: true, Start: m.Engine.Start(iv), End: m.Engine.End(iv)}
	}
	for _, iv := range m.Operations {
		capture(iv)
	}
	for _, c := range m.Candidates {
		capture(c.Interval)
	}
	return sp
}

// Close releases the engine.
func (m *Model) Close() error {
	return m.Engine.Close()
}
