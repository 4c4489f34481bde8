package sgs

import (
	"math"
	"math/rand"
	"slices"
	"sort"

	"github.com/kilianp07/adsp/core/engine"
)

type window struct{ start, end int }

// schedule is the partial assignment of one construction.
type schedule struct {
	p      *problem
	val    []engine.IntervalValue
	placed []bool
	busy   [][]window // per sequence
}

func newSchedule(p *problem) *schedule {
	s := &schedule{
		p:      p,
		val:    make([]engine.IntervalValue, len(p.specs)),
		placed: make([]bool, len(p.specs)),
		busy:   make([][]window, len(p.seqs)),
	}
	for iv, spec := range p.specs {
		if spec.Pinned {
			s.commit(engine.Interval(iv), spec.Start, spec.Start+spec.Size)
		}
	}
	// optional intervals outside any alternative stay absent
	for iv, spec := range p.specs {
		if spec.Optional && !s.inAlternative(engine.Interval(iv)) {
			s.placed[iv] = true
		}
	}
	return s
}

func (s *schedule) inAlternative(iv engine.Interval) bool {
	for _, alt := range s.p.alts {
		if slices.Contains(alt.candidates, iv) {
			return true
		}
	}
	return false
}

func (s *schedule) commit(iv engine.Interval, start, end int) {
	s.val[iv] = engine.IntervalValue{Present: true, Start: start, End: end}
	s.placed[iv] = true
	for _, q := range s.p.seqOf[iv] {
		s.busy[q] = append(s.busy[q], window{start, end})
	}
}

func (s *schedule) free(iv engine.Interval, start, end int, extra []window, extraSeq []int) bool {
	for _, q := range s.p.seqOf[iv] {
		for _, w := range s.busy[q] {
			if start < w.end && w.start < end {
				return false
			}
		}
		for i, w := range extra {
			if extraSeq[i] == q && start < w.end && w.start < end {
				return false
			}
		}
	}
	return true
}

// construction holds the per-build choices.
type construction struct {
	keys []float64 // task priority, lower first
	// noise breaks ties between equally weighted candidates.
	noise []float64
	// prefer marks candidates to try first.
	prefer []bool
	// patient makes cost-driven builds scan every start time for the
	// cheapest allocation instead of taking the earliest one.
	patient bool
}

// build places every task. It returns the interval that could not be
// placed on failure.
func (s *schedule) build(c construction) (engine.Interval, bool) {
	p := s.p
	done := 0
	for done < len(p.tasks) {
		next, found := engine.Interval(-1), false
		for _, t := range p.tasks {
			if s.placed[t] || !s.ready(t) {
				continue
			}
			if !found || c.keys[t] < c.keys[next] {
				next, found = t, true
			}
		}
		if !found {
			return -1, false
		}
		if !s.place(next, c) {
			return next, false
		}
		done++
	}
	for ci, cr := range p.cumuls {
		if p.permanent[ci] && !profileWithin(cr, s.val, s.placed) {
			return -1, false
		}
	}
	return -1, true
}

func (s *schedule) ready(t engine.Interval) bool {
	for _, b := range s.p.preds[t] {
		if !s.placed[b] {
			return false
		}
	}
	return true
}

// times lists the candidate start times of an interval released at est.
func (s *schedule) times(est int) []int {
	ts := []int{est}
	for iv, v := range s.val {
		if !s.placed[iv] || !v.Present {
			continue
		}
		if v.Start > est {
			ts = append(ts, v.Start)
		}
		if v.End > est {
			ts = append(ts, v.End)
		}
	}
	for _, cr := range s.p.cumuls {
		for _, t := range cr.expr.Terms {
			if t.Kind == engine.Step && t.Time > est {
				ts = append(ts, t.Time)
			}
		}
	}
	slices.Sort(ts)
	return slices.Compact(ts)
}

// place commits t at its first (or cheapest) feasible start. When no start
// keeps every cumul in range, a start whose step-only cumuls can still be
// repaired by the unplaced intervals is accepted; build checks them once
// the construction is complete.
func (s *schedule) place(t engine.Interval, c construction) bool {
	p := s.p
	bestStart, bestChosen := s.scan(t, c, false)
	if bestStart < 0 {
		bestStart, bestChosen = s.scan(t, c, true)
	}
	if bestStart < 0 {
		return false
	}
	size := p.specs[t].Size
	s.commit(t, bestStart, bestStart+size)
	for _, g := range p.groups[t] {
		for _, cand := range p.alts[g].candidates {
			if slices.Contains(bestChosen, cand) {
				s.commit(cand, bestStart, bestStart+size)
			} else {
				s.placed[cand] = true
			}
		}
	}
	return true
}

// scan returns the start chosen for t and its candidates, -1 when none fits.
func (s *schedule) scan(t engine.Interval, c construction, relaxed bool) (int, []engine.Interval) {
	p := s.p
	est := 0
	for _, b := range p.preds[t] {
		est = max(est, s.val[b].End)
	}
	size := p.specs[t].Size
	bestCost, bestStart := math.MaxInt, -1
	var bestChosen []engine.Interval
	for _, start := range s.times(est) {
		if start+size > p.horizon[t] {
			break
		}
		chosen, cost, ok := s.fit(t, start, c, relaxed)
		if !ok {
			continue
		}
		if !c.patient {
			return start, chosen
		}
		if cost < bestCost {
			bestCost, bestStart, bestChosen = cost, start, chosen
		}
		if cost <= p.minCost[t] {
			break
		}
	}
	return bestStart, bestChosen
}

// fit checks whether t can start at start and picks its candidates.
func (s *schedule) fit(t engine.Interval, start int, c construction, relaxed bool) ([]engine.Interval, int, bool) {
	p := s.p
	end := start + p.specs[t].Size
	if !s.free(t, start, end, nil, nil) {
		return nil, 0, false
	}
	var (
		chosen   []engine.Interval
		extra    []window
		extraSeq []int
		cost     int
	)
	for _, g := range p.groups[t] {
		alt := p.alts[g]
		var avail []engine.Interval
		for _, cand := range alt.candidates {
			if s.free(cand, start, end, extra, extraSeq) {
				avail = append(avail, cand)
			}
		}
		if len(avail) < alt.k {
			return nil, 0, false
		}
		sort.Slice(avail, func(i, j int) bool {
			a, b := avail[i], avail[j]
			if c.prefer != nil && c.prefer[a] != c.prefer[b] {
				return c.prefer[a]
			}
			if p.weight[a] != p.weight[b] {
				return p.weight[a] < p.weight[b]
			}
			return c.noise[a] < c.noise[b]
		})
		for _, cand := range avail[:alt.k] {
			chosen = append(chosen, cand)
			cost += p.weight[cand]
			for _, q := range p.seqOf[cand] {
				extra = append(extra, window{start, end})
				extraSeq = append(extraSeq, q)
			}
		}
	}

	// tentatively place to evaluate the cumuls touched by the move
	touched := append([]engine.Interval{t}, chosen...)
	for _, iv := range touched {
		s.val[iv] = engine.IntervalValue{Present: true, Start: start, End: end}
		s.placed[iv] = true
	}
	ok := true
	var seen []int
	for _, iv := range touched {
		for _, ci := range p.cumulOf[iv] {
			if slices.Contains(seen, ci) {
				continue
			}
			seen = append(seen, ci)
			cr := p.cumuls[ci]
			if profileWithin(cr, s.val, s.placed) {
				continue
			}
			if !relaxed || !p.permanent[ci] || !profileReachable(p, cr, s.val, s.placed) {
				ok = false
			}
		}
	}
	for _, iv := range touched {
		s.val[iv] = engine.IntervalValue{}
		s.placed[iv] = false
	}
	return chosen, cost, ok
}

type event struct{ time, delta int }

// profileWithin reports whether the cumul stays in range after every event
// time, considering only placed intervals.
func profileWithin(cr cumulRange, val []engine.IntervalValue, placed []bool) bool {
	events := make([]event, 0, len(cr.expr.Terms)*2)
	for _, t := range cr.expr.Terms {
		switch t.Kind {
		case engine.Step:
			events = append(events, event{t.Time, t.Height})
		case engine.StepAtStart:
			if placed[t.Interval] && val[t.Interval].Present {
				events = append(events, event{val[t.Interval].Start, t.Height})
			}
		case engine.Pulse:
			if placed[t.Interval] && val[t.Interval].Present {
				v := val[t.Interval]
				events = append(events, event{v.Start, t.Height}, event{v.End, -t.Height})
			}
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].time < events[j].time })
	level := 0
	for i := 0; i < len(events); {
		at := events[i].time
		for i < len(events) && events[i].time == at {
			level += events[i].delta
			i++
		}
		if level < cr.min || level > cr.max {
			return false
		}
	}
	return true
}

// profileReachable is the optimistic check of a step-only cumul: every
// interval not placed yet may still start at its earliest start and move
// the level back into range.
func profileReachable(p *problem, cr cumulRange, val []engine.IntervalValue, placed []bool) bool {
	type pending struct{ est, height int }
	var (
		events []event
		rest   []pending
	)
	for _, t := range cr.expr.Terms {
		switch t.Kind {
		case engine.Step:
			events = append(events, event{t.Time, t.Height})
		case engine.StepAtStart:
			switch {
			case !placed[t.Interval]:
				rest = append(rest, pending{p.est[t.Interval], t.Height})
			case val[t.Interval].Present:
				events = append(events, event{val[t.Interval].Start, t.Height})
			}
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].time < events[j].time })
	level := 0
	for i := 0; i < len(events); {
		at := events[i].time
		for i < len(events) && events[i].time == at {
			level += events[i].delta
			i++
		}
		up, down := 0, 0
		for _, r := range rest {
			if r.est > at {
				continue
			}
			if r.height > 0 {
				up += r.height
			} else {
				down += r.height
			}
		}
		if level+down > cr.max || level+up < cr.min {
			return false
		}
	}
	return true
}

// withinLimits checks the bound constraints on a complete assignment.
func withinLimits(p *problem, val []engine.IntervalValue) bool {
	for _, l := range p.limits {
		if evaluate(l.expr, val) > l.bound {
			return false
		}
	}
	return true
}

// randomKeys draws task priorities around the static earliest starts.
func randomKeys(p *problem, rng *rand.Rand) []float64 {
	keys := make([]float64, len(p.specs))
	sigma := p.meanLen * (0.25 + 2*rng.Float64())
	for _, t := range p.tasks {
		keys[t] = float64(p.est[t]) + rng.NormFloat64()*sigma
	}
	return keys
}

// incumbentKeys perturbs the start order of an incumbent schedule.
func incumbentKeys(p *problem, best []engine.IntervalValue, rng *rand.Rand) []float64 {
	keys := make([]float64, len(p.specs))
	for _, t := range p.tasks {
		keys[t] = float64(best[t].Start) + rng.Float64()
	}
	// swap a few tasks to leave the neighbourhood
	for range 1 + rng.Intn(3) {
		if len(p.tasks) < 2 {
			break
		}
		a := p.tasks[rng.Intn(len(p.tasks))]
		b := p.tasks[rng.Intn(len(p.tasks))]
		keys[a], keys[b] = keys[b], keys[a]
	}
	return keys
}

// startingKeys orders the tasks as in the starting point.
func startingKeys(p *problem) ([]float64, []bool) {
	keys := make([]float64, len(p.specs))
	prefer := make([]bool, len(p.specs))
	for _, t := range p.tasks {
		keys[t] = float64(p.est[t])
		if v, ok := p.start[t]; ok && v.Present {
			keys[t] = float64(v.Start)
		}
	}
	for iv, v := range p.start {
		if v.Present && p.specs[iv].Optional {
			prefer[iv] = true
		}
	}
	return keys, prefer
}

// replay checks whether the starting point is itself a complete solution.
func replay(p *problem) ([]engine.IntervalValue, bool) {
	if len(p.start) == 0 {
		return nil, false
	}
	val := make([]engine.IntervalValue, len(p.specs))
	placed := make([]bool, len(p.specs))
	for iv, spec := range p.specs {
		placed[iv] = true
		switch {
		case spec.Pinned:
			val[iv] = engine.IntervalValue{Present: true, Start: spec.Start, End: spec.Start + spec.Size}
		case spec.Optional:
			v := p.start[engine.Interval(iv)]
			if v.Present && v.End-v.Start != spec.Size {
				return nil, false
			}
			val[iv] = v
		default:
			v, ok := p.start[engine.Interval(iv)]
			if !ok || !v.Present || v.Start < 0 || v.End-v.Start != spec.Size || v.End > p.horizon[iv] {
				return nil, false
			}
			val[iv] = v
		}
	}
	for iv := range p.specs {
		for _, b := range p.preds[iv] {
			if val[b].End > val[iv].Start {
				return nil, false
			}
		}
	}
	for _, alt := range p.alts {
		n := 0
		for _, c := range alt.candidates {
			if !val[c].Present {
				continue
			}
			if val[c].Start != val[alt.principal].Start || val[c].End != val[alt.principal].End {
				return nil, false
			}
			n++
		}
		if n != alt.k {
			return nil, false
		}
	}
	for _, seq := range p.seqs {
		var ws []window
		for _, iv := range seq {
			if val[iv].Present {
				ws = append(ws, window{val[iv].Start, val[iv].End})
			}
		}
		sort.Slice(ws, func(i, j int) bool {
			if ws[i].start != ws[j].start {
				return ws[i].start < ws[j].start
			}
			return ws[i].end < ws[j].end
		})
		for i := 1; i < len(ws); i++ {
			if ws[i].start < ws[i-1].end {
				return nil, false
			}
		}
	}
	for _, cr := range p.cumuls {
		if !profileWithin(cr, val, placed) {
			return nil, false
		}
	}
	if !withinLimits(p, val) {
		return nil, false
	}
	return val, true
}
