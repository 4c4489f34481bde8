package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/adsp/app"
	"github.com/kilianp07/adsp/config"
	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/infra/jsonfile"
	"github.com/kilianp07/adsp/infra/logger"
)

// Model names accepted by solve.
const (
	ModelOptionalInterval = "OptionalInterval"
	ModelCPOOptInter      = "CPOOptInterModel"
	ModelInstanceStats    = "InstanceStats"
)

type solveFlags struct {
	start     bool
	silent    bool
	time      float64
	time2     float64
	failLimit int
	strategy  string
	workers   int
	out       string
	csv       bool
	report    bool
}

var solveOpts solveFlags

var solveCmd = &cobra.Command{
	Use:   "solve <instanceOrSolutionFile> <modelName>",
	Short: "Schedule an instance",
	Long: `Schedule an instance with the optional interval model.

modelName is OptionalInterval (alias CPOOptInterModel) or InstanceStats.
With --st the file is a solution whose instance is solved again starting
from that solution.`,
	Args: cobra.ExactArgs(2),
	RunE: solve,
}

func init() {
	f := solveCmd.Flags()
	f.BoolVar(&solveOpts.start, "st", false, "read a solution file and warm start from it")
	f.BoolVar(&solveOpts.silent, "sil", false, "do not log improving solutions")
	f.Float64VarP(&solveOpts.time, "time", "t", 0, "phase one time limit in seconds")
	f.Float64Var(&solveOpts.time2, "t2", 0, "phase two extra time budget in seconds")
	f.IntVarP(&solveOpts.failLimit, "fail-limit", "f", 0, "fail limit (0 is unbounded)")
	f.StringVarP(&solveOpts.strategy, "search", "s", "", "search strategy, e.g. LEX-AUTO, ILEX-FD, MK-DF, CST-AUTO")
	f.IntVarP(&solveOpts.workers, "workers", "n", 0, "number of workers")
	f.StringVar(&solveOpts.out, "out", "", "output directory")
	f.BoolVar(&solveOpts.csv, "csv", false, "also write the assignments as CSV")
	f.BoolVar(&solveOpts.report, "report", false, "also write an HTML report")
	rootCmd.AddCommand(solveCmd)
}

// applyFlags overrides the configuration with the flags set on cmd.
func applyFlags(cmd *cobra.Command, cfg *config.Config, o solveFlags) error {
	f := cmd.Flags()
	if f.Changed("time") {
		cfg.Search.TimeLimitSeconds = o.time
	}
	if f.Changed("t2") {
		cfg.Search.SecondTimeLimitSeconds = o.time2
	}
	if f.Changed("fail-limit") {
		cfg.Search.FailLimit = o.failLimit
	}
	if f.Changed("workers") {
		cfg.Search.Workers = o.workers
	}
	if f.Changed("search") {
		cfg.Search.Strategy = o.strategy
	}
	if f.Changed("out") {
		cfg.Output.Dir = o.out
	}
	if o.csv {
		cfg.Output.CSV = true
	}
	if o.report {
		cfg.Report.Enabled = true
	}
	return cfg.Validate()
}

func readInput(path string, fromSolution bool) (*model.Instance, *model.Solution, error) {
	if fromSolution {
		sol, err := jsonfile.ReadSolution(path)
		if err != nil {
			return nil, nil, err
		}
		return sol.Instance, sol, nil
	}
	inst, err := jsonfile.ReadInstance(path)
	return inst, nil, err
}

func solve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, solveOpts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	inst, prior, err := readInput(args[0], solveOpts.start)
	if err != nil {
		return err
	}

	switch args[1] {
	case ModelInstanceStats:
		return printStats(cmd, inst)
	case ModelOptionalInterval, ModelCPOOptInter:
	default:
		return fmt.Errorf("unknown model %q (known: %s, %s, %s)", args[1], ModelOptionalInterval, ModelCPOOptInter, ModelInstanceStats)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.Start(ctx)

	out, err := svc.Solve(ctx, app.Request{
		Instance: inst,
		Prior:    prior,
		Strategy: cfg.Search.Strategy,
		Silent:   solveOpts.silent,
	})
	if err != nil {
		return err
	}
	res := out.Result
	w := cmd.OutOrStdout()
	if res.Best == nil {
		fmt.Fprintf(w, "%s: no solution found in %s\n", inst.Name, res.Duration)
		return nil
	}
	fmt.Fprintf(w, "%s: makespan %d (bound %d) cost %d (bound %d) in %s\n",
		inst.Name, res.Best.Makespan, res.Log.MakespanBound, res.Best.Cost, res.Log.CostBound, res.Duration)
	return nil
}

func printStats(cmd *cobra.Command, inst *model.Instance) error {
	s, err := app.Stats(inst)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(w, "Characteristics of instance %s\n", s.Name)
	fmt.Fprintf(w, "Number of operations %d\n", s.Operations)
	fmt.Fprintf(w, "Number of resources %d\n", s.Resources)
	fmt.Fprintf(w, "Number of locations %d\n", s.Locations)
	fmt.Fprintf(w, "Makespan lower bound %d\n", s.MakespanLower)
	fmt.Fprintf(w, "Cost lower bound %d\n", s.CostLower)
	fmt.Fprintf(w, "Cost upper bound %d\n", s.CostUpper)
	return nil
}
