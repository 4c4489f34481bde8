// Package check verifies a Solution against the constraints of its
// instance. It is independent of any engine and is used to validate
// solver output and imported solutions.
package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/adsp/core/model"
)

// Rules reported in violations.
const (
	RuleActivity   = "activity"
	RulePrecedence = "precedence"
	RuleAllocation = "allocation"
	RuleOverlap    = "overlap"
	RuleOccupancy  = "occupancy"
	RuleBalance    = "balance"
	RuleObjective  = "objective"
)

// Violation is one broken constraint.
type Violation struct {
	Rule   string
	Detail string
}

func (v Violation) String() string { return v.Rule + ": " + v.Detail }

// Error lists every violation found in a solution.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%d violations: %s", len(e.Violations), strings.Join(parts, "; "))
}

// Solution returns an *Error when sol breaks any constraint.
func Solution(sol *model.Solution) error {
	if v := Violations(sol); len(v) > 0 {
		return &Error{Violations: v}
	}
	return nil
}

type checker struct {
	sol    *model.Solution
	inst   *model.Instance
	idx    *model.Index
	spans  map[int]model.Activity
	issues []Violation
}

func (c *checker) add(rule, format string, args ...any) {
	c.issues = append(c.issues, Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
}

// Violations returns all constraint violations of sol, in rule order.
func Violations(sol *model.Solution) []Violation {
	if sol == nil || sol.Instance == nil {
		return []Violation{{Rule: RuleActivity, Detail: "solution has no instance"}}
	}
	idx, err := model.NewIndex(sol.Instance)
	if err != nil {
		return []Violation{{Rule: RuleActivity, Detail: err.Error()}}
	}
	c := &checker{sol: sol, inst: sol.Instance, idx: idx, spans: make(map[int]model.Activity)}
	c.activities()
	c.precedences()
	c.allocation()
	c.overlap()
	c.occupancy()
	c.balance()
	c.objectives()
	return c.issues
}

func (c *checker) activities() {
	for _, a := range c.sol.Activities {
		i, ok := c.idx.Operation(a.Operation)
		if !ok {
			c.add(RuleActivity, "unknown operation %d", a.Operation)
			continue
		}
		if _, dup := c.spans[a.Operation]; dup {
			c.add(RuleActivity, "operation %d scheduled twice", a.Operation)
			continue
		}
		c.spans[a.Operation] = a
		op := c.inst.Operations[i]
		if a.End-a.Start != op.Duration {
			c.add(RuleActivity, "operation %d lasts %d, want %d", op.ID, a.End-a.Start, op.Duration)
		}
		if a.Start < 0 || a.End > c.inst.MaxTime {
			c.add(RuleActivity, "operation %d [%d,%d) outside [0,%d)", op.ID, a.Start, a.End, c.inst.MaxTime)
		}
	}
	for _, op := range c.inst.Operations {
		if _, ok := c.spans[op.ID]; !ok {
			c.add(RuleActivity, "operation %d not scheduled", op.ID)
		}
	}
}

func (c *checker) precedences() {
	for _, op := range c.inst.Operations {
		a, ok := c.spans[op.ID]
		if !ok {
			continue
		}
		for _, p := range op.Precedences {
			b, ok := c.spans[p]
			if ok && b.End > a.Start {
				c.add(RulePrecedence, "operation %d starts at %d before %d ends at %d", op.ID, a.Start, p, b.End)
			}
		}
	}
}

type reqKey struct{ op, req int }

func (c *checker) allocation() {
	counts := make(map[reqKey]int)
	seen := make(map[[3]int]bool)
	for _, as := range c.sol.Assignments {
		i, ok := c.idx.Operation(as.Operation)
		if !ok {
			c.add(RuleAllocation, "assignment to unknown operation %d", as.Operation)
			continue
		}
		op := c.inst.Operations[i]
		if as.Requirement < 0 || as.Requirement >= len(op.Resources) {
			c.add(RuleAllocation, "operation %d has no requirement %d", op.ID, as.Requirement)
			continue
		}
		r, ok := c.idx.Resource(as.Resource)
		if !ok {
			c.add(RuleAllocation, "unknown resource %d", as.Resource)
			continue
		}
		key := [3]int{as.Operation, as.Requirement, as.Resource}
		if seen[key] {
			c.add(RuleAllocation, "resource %d assigned twice to operation %d requirement %d", as.Resource, op.ID, as.Requirement)
		}
		seen[key] = true
		res := c.inst.Resources[r]
		if !op.Resources[as.Requirement].Accepts(res.Category) {
			c.add(RuleAllocation, "resource %d (%s) incompatible with operation %d requirement %d",
				res.ID, res.Category, op.ID, as.Requirement)
		}
		if a, ok := c.spans[op.ID]; ok && (a.Start != as.Start || a.End != as.End) {
			c.add(RuleAllocation, "resource %d on operation %d spans [%d,%d), activity spans [%d,%d)",
				res.ID, op.ID, as.Start, as.End, a.Start, a.End)
		}
		counts[reqKey{op.ID, as.Requirement}]++
	}
	for _, op := range c.inst.Operations {
		for r, req := range op.Resources {
			if n := counts[reqKey{op.ID, r}]; n != req.Quantity {
				c.add(RuleAllocation, "operation %d requirement %d has %d resources, want %d", op.ID, r, n, req.Quantity)
			}
		}
	}
}

type span struct {
	start, end int
	what       string
}

func (c *checker) overlap() {
	for _, res := range c.inst.Resources {
		var spans []span
		for _, w := range res.Unavailable {
			if w.Duration() > 0 {
				spans = append(spans, span{w.Start, w.End, fmt.Sprintf("unavailable [%d,%d)", w.Start, w.End)})
			}
		}
		for _, as := range c.sol.AssignmentsOf(res.ID) {
			if as.End > as.Start {
				spans = append(spans, span{as.Start, as.End, fmt.Sprintf("operation %d", as.Operation)})
			}
		}
		sort.Slice(spans, func(i, j int) bool {
			if spans[i].start != spans[j].start {
				return spans[i].start < spans[j].start
			}
			return spans[i].end < spans[j].end
		})
		for i := 1; i < len(spans); i++ {
			for j := i - 1; j >= 0; j-- {
				if spans[j].end > spans[i].start {
					c.add(RuleOverlap, "resource %d: %s overlaps %s", res.ID, spans[j].what, spans[i].what)
					break
				}
			}
		}
	}
}

type event struct{ time, delta int }

// levels applies events grouped by time and calls visit with the level
// after each group.
func levels(events []event, visit func(time, level int)) {
	sort.Slice(events, func(i, j int) bool { return events[i].time < events[j].time })
	level := 0
	for i := 0; i < len(events); {
		at := events[i].time
		for i < len(events) && events[i].time == at {
			level += events[i].delta
			i++
		}
		visit(at, level)
	}
}

func (c *checker) occupancy() {
	byLocation := occupancyEvents(c.inst, c.spans)
	for _, loc := range c.inst.Locations {
		reported := false
		levels(byLocation[loc.ID], func(t, level int) {
			if level > loc.Capacity && !reported {
				c.add(RuleOccupancy, "location %d holds %d at %d, capacity %d", loc.ID, level, t, loc.Capacity)
				reported = true
			}
		})
	}
}

func occupancyEvents(inst *model.Instance, spans map[int]model.Activity) map[int][]event {
	byLocation := make(map[int][]event)
	for _, op := range inst.Operations {
		a, ok := spans[op.ID]
		if !ok || op.Occupancy == 0 || a.End == a.Start {
			continue
		}
		byLocation[op.Location] = append(byLocation[op.Location],
			event{a.Start, op.Occupancy}, event{a.End, -op.Occupancy})
	}
	return byLocation
}

func (c *checker) balance() {
	af, lr := balanceEvents(c.inst, c.idx, c.spans)
	c.axis("AF", af, c.inst.BalanceAF)
	c.axis("LR", lr, c.inst.BalanceLR)
}

// balanceEvents starts both axes at their balance so that a level in
// [0, 2*balance] is acceptable.
func balanceEvents(inst *model.Instance, idx *model.Index, spans map[int]model.Activity) (af, lr []event) {
	af = []event{{0, inst.BalanceAF}}
	lr = []event{{0, inst.BalanceLR}}
	for _, op := range inst.Operations {
		a, ok := spans[op.ID]
		if !ok || op.Mass <= 0 {
			continue
		}
		loc, ok := inst.LocationOf(idx, op)
		if !ok {
			continue
		}
		switch loc.Zone {
		case model.ZoneForward:
			af = append(af, event{a.Start, op.Mass})
		case model.ZoneAft:
			af = append(af, event{a.Start, -op.Mass})
		case model.ZoneRight:
			lr = append(lr, event{a.Start, op.Mass})
		case model.ZoneLeft:
			lr = append(lr, event{a.Start, -op.Mass})
		}
	}
	return af, lr
}

func (c *checker) axis(name string, events []event, balance int) {
	reported := false
	levels(events, func(t, level int) {
		if (level < 0 || level > 2*balance) && !reported {
			c.add(RuleBalance, "%s difference %d at %d outside [%d,%d]", name, level-balance, t, -balance, balance)
			reported = true
		}
	})
}

func (c *checker) objectives() {
	makespan := 0
	for _, a := range c.spans {
		makespan = max(makespan, a.End)
	}
	if makespan != c.sol.Makespan {
		c.add(RuleObjective, "makespan is %d, solution states %d", makespan, c.sol.Makespan)
	}
	if cost := Cost(c.sol); cost != c.sol.Cost {
		c.add(RuleObjective, "cost is %d, solution states %d", cost, c.sol.Cost)
	}
}

// Cost prices the assignments of sol with their resource costs.
func Cost(sol *model.Solution) int {
	costs := make(map[int]int, len(sol.Instance.Resources))
	for _, r := range sol.Instance.Resources {
		costs[r.ID] = r.Cost
	}
	total := 0
	for _, a := range sol.Assignments {
		total += (a.End - a.Start) * costs[a.Resource]
	}
	return total
}
