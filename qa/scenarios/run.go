package scenarios

import (
	"context"
	"fmt"

	"github.com/kilianp07/adsp/core/check"
	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/core/search"
	"github.com/kilianp07/adsp/infra/jsonfile"
)

// SolveFunc solves inst with the strategy id.
type SolveFunc func(ctx context.Context, inst *model.Instance, strategy string) (*search.Result, error)

// Outcome is the checked result of one run.
type Outcome struct {
	Instance string
	Strategy string
	Result   *search.Result
	Failures []string
}

// Passed reports whether every expectation held.
func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// Run solves every run of sc and checks the expectations. Instances that
// cannot be read abort the scenario; solver errors are reported as
// failures of their run.
func Run(ctx context.Context, sc *Scenario, solve SolveFunc) ([]Outcome, error) {
	var out []Outcome
	for _, def := range sc.Runs {
		inst, err := jsonfile.ReadInstance(sc.path(def.Instance))
		if err != nil {
			return out, err
		}
		strategies := def.Strategies
		if len(strategies) == 0 {
			strategies = []string{search.DefaultStrategy}
		}
		for _, s := range strategies {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			res, err := solve(ctx, inst, s)
			o := Outcome{Instance: inst.Name, Strategy: s, Result: res}
			if err != nil {
				o.Failures = append(o.Failures, fmt.Sprintf("solve: %v", err))
			} else {
				o.Failures = verify(def.Expected, res)
			}
			out = append(out, o)
		}
	}
	return out, nil
}

func verify(exp Expected, res *search.Result) []string {
	var fails []string
	best := res.Best
	if best == nil {
		if exp.Solved || exp.MaxMakespan > 0 || exp.MaxCost > 0 {
			fails = append(fails, "no solution")
		}
		return fails
	}
	for _, v := range check.Violations(best) {
		fails = append(fails, v.String())
	}
	if exp.MaxMakespan > 0 && best.Makespan > exp.MaxMakespan {
		fails = append(fails, fmt.Sprintf("makespan %d above %d", best.Makespan, exp.MaxMakespan))
	}
	if exp.MaxCost > 0 && best.Cost > exp.MaxCost {
		fails = append(fails, fmt.Sprintf("cost %d above %d", best.Cost, exp.MaxCost))
	}
	if best.Makespan < res.Log.MakespanBound || best.Cost < res.Log.CostBound {
		fails = append(fails, fmt.Sprintf("objectives %d/%d below bounds %d/%d",
			best.Makespan, best.Cost, res.Log.MakespanBound, res.Log.CostBound))
	}
	return fails
}
