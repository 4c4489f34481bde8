package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/adsp/app"
	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/core/search"
	"github.com/kilianp07/adsp/qa/scenarios"
)

var benchCmd = &cobra.Command{
	Use:   "bench <scenario.yaml>",
	Short: "Solve the instances of a scenario with several strategies and check the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sc, err := scenarios.Load(args[0])
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()
		svc.Start(ctx)

		out, err := scenarios.Run(ctx, sc, func(ctx context.Context, inst *model.Instance, strategy string) (*search.Result, error) {
			o, err := svc.Solve(ctx, app.Request{Instance: inst, Strategy: strategy, Silent: true})
			if err != nil {
				return nil, err
			}
			return o.Result, nil
		})
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INSTANCE\tSTRATEGY\tMAKESPAN\tCOST\tRESULT")
		failed := 0
		for _, o := range out {
			mk, cost := "-", "-"
			if o.Result != nil && o.Result.Best != nil {
				mk = fmt.Sprintf("%d/%d", o.Result.Best.Makespan, o.Result.Log.MakespanBound)
				cost = fmt.Sprintf("%d/%d", o.Result.Best.Cost, o.Result.Log.CostBound)
			}
			verdict := "ok"
			if !o.Passed() {
				failed++
				verdict = fmt.Sprintf("FAIL %v", o.Failures)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Instance, o.Strategy, mk, cost, verdict)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%s: %d of %d runs failed", sc.Name, failed, len(out))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
}
