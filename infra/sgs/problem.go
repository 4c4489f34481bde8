package sgs

import (
	"errors"
	"math"
	"slices"

	"github.com/kilianp07/adsp/core/engine"
)

var errCycle = errors.New("precedence cycle between intervals")

// problem is the immutable, indexed form of the model shared by the
// workers of one search.
type problem struct {
	specs []engine.IntervalSpec
	// tasks are the mandatory, non-pinned intervals in a topological order.
	tasks   []engine.Interval
	preds   [][]engine.Interval // per interval
	groups  [][]int             // per interval, alternatives it is principal of
	alts    []alternative
	seqOf   [][]int // per interval, no-overlap sequences containing it
	seqs    [][]engine.Interval
	cumuls  []cumulRange
	cumulOf [][]int // per interval, cumuls referencing it
	// permanent marks cumuls made of steps only: a level out of range can
	// still be brought back by steps placed later.
	permanent []bool
	horizon []int   // per interval, latest allowed end
	limits  []limit

	objective    engine.IntExpr
	hasObjective bool
	costDriven   bool
	// weight of each interval over every presence sum of the model; cheap
	// candidates are preferred.
	weight  []int
	minCost []int // per task, cheapest allocation of its alternatives
	est     []int // static earliest starts
	bound   int
	start   engine.StartingPoint
	params  engine.Params
	meanLen float64
}

func (e *Engine) compile() (*problem, error) {
	n := len(e.intervals)
	p := &problem{
		specs:   e.intervals,
		preds:   make([][]engine.Interval, n),
		groups:  make([][]int, n),
		alts:    e.alternatives,
		seqOf:   make([][]int, n),
		cumuls:  e.cumuls,
		cumulOf: make([][]int, n),
		horizon: make([]int, n),
		limits:  e.limits,
		weight:  make([]int, n),
		minCost: make([]int, n),
		est:     make([]int, n),
		start:   e.start,
		params:  e.params,
	}
	for _, expr := range e.objectives {
		p.objective, p.hasObjective = expr, true
	}
	p.costDriven = p.hasObjective && p.objective.Kind == engine.PresenceSum

	for _, pr := range e.precedences {
		p.preds[pr.after] = append(p.preds[pr.after], pr.before)
	}
	for g, alt := range e.alternatives {
		p.groups[alt.principal] = append(p.groups[alt.principal], g)
	}
	for _, s := range e.noOverlap {
		idx := len(p.seqs)
		p.seqs = append(p.seqs, e.sequences[s])
		for _, iv := range e.sequences[s] {
			p.seqOf[iv] = append(p.seqOf[iv], idx)
		}
	}
	p.permanent = make([]bool, len(e.cumuls))
	for c, cr := range e.cumuls {
		p.permanent[c] = true
		for _, t := range cr.expr.Terms {
			if t.Kind == engine.Pulse {
				p.permanent[c] = false
			}
			if t.Kind != engine.Step && !slices.Contains(p.cumulOf[t.Interval], c) {
				p.cumulOf[t.Interval] = append(p.cumulOf[t.Interval], c)
			}
		}
	}
	for i := range p.horizon {
		p.horizon[i] = math.MaxInt
	}
	presence := func(expr engine.IntExpr) {
		if expr.Kind != engine.PresenceSum {
			return
		}
		for i, iv := range expr.Intervals {
			p.weight[iv] += expr.Weights[i]
		}
	}
	for _, l := range e.limits {
		presence(l.expr)
		if l.expr.Kind == engine.MaxEnd {
			for _, iv := range l.expr.Intervals {
				p.horizon[iv] = min(p.horizon[iv], l.bound)
			}
		}
	}
	if p.hasObjective {
		presence(p.objective)
	}

	if err := p.order(); err != nil {
		return nil, err
	}
	total := 0
	for _, t := range p.tasks {
		total += p.specs[t].Size
		for _, g := range p.groups[t] {
			p.minCost[t] += cheapest(p.alts[g], p.weight)
		}
	}
	if len(p.tasks) > 0 {
		p.meanLen = math.Max(1, float64(total)/float64(len(p.tasks)))
	}
	p.bound = p.staticBound()
	return p, nil
}

// order sorts the tasks topologically and computes their earliest starts.
func (p *problem) order() error {
	n := len(p.specs)
	indeg := make([]int, n)
	succ := make([][]engine.Interval, n)
	for iv := range p.specs {
		spec := p.specs[iv]
		switch {
		case spec.Pinned:
			p.est[iv] = spec.Start
		case spec.Optional:
		default:
			for _, b := range p.preds[iv] {
				if p.specs[b].Pinned {
					continue
				}
				indeg[iv]++
				succ[b] = append(succ[b], engine.Interval(iv))
			}
		}
	}
	var queue []engine.Interval
	mandatory := 0
	for iv, spec := range p.specs {
		if spec.Optional || spec.Pinned {
			continue
		}
		mandatory++
		if indeg[iv] == 0 {
			queue = append(queue, engine.Interval(iv))
		}
	}
	for len(queue) > 0 {
		iv := queue[0]
		queue = queue[1:]
		p.tasks = append(p.tasks, iv)
		for _, b := range p.preds[iv] {
			p.est[iv] = max(p.est[iv], p.est[b]+p.specs[b].Size)
		}
		for _, s := range succ[iv] {
			indeg[s]--
			if indeg[s] == 0 {
				queue = append(queue, s)
			}
		}
	}
	if len(p.tasks) != mandatory {
		return errCycle
	}
	return nil
}

// cheapest returns the sum of the k smallest candidate weights.
func cheapest(alt alternative, weight []int) int {
	ws := make([]int, len(alt.candidates))
	for i, c := range alt.candidates {
		ws[i] = weight[c]
	}
	slices.Sort(ws)
	sum := 0
	for _, w := range ws[:alt.k] {
		sum += w
	}
	return sum
}

// staticBound is a lower bound of the objective ignoring resources.
func (p *problem) staticBound() int {
	if !p.hasObjective {
		return 0
	}
	obj := p.objective
	switch obj.Kind {
	case engine.MaxEnd:
		b := 0
		for _, iv := range obj.Intervals {
			if !p.specs[iv].Optional {
				b = max(b, p.est[iv]+p.specs[iv].Size)
			}
		}
		return b
	case engine.PresenceSum:
		w := make(map[engine.Interval]int, len(obj.Intervals))
		for i, iv := range obj.Intervals {
			w[iv] += obj.Weights[i]
		}
		b := 0
		for iv, weight := range w {
			if !p.specs[iv].Optional {
				b += weight
			}
		}
		for _, alt := range p.alts {
			ws := make([]int, 0, len(alt.candidates))
			for _, c := range alt.candidates {
				ws = append(ws, w[c])
			}
			slices.Sort(ws)
			for _, x := range ws[:alt.k] {
				b += x
			}
		}
		return b
	}
	return 0
}
