package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/adsp/core/check"
	"github.com/kilianp07/adsp/core/model"
	"github.com/kilianp07/adsp/infra/jsonfile"
	"github.com/kilianp07/adsp/pkg/export"
	"github.com/kilianp07/adsp/pkg/report"
)

var (
	reportOut   string
	reportTitle string
	exportFmt   string
)

var reportCmd = &cobra.Command{
	Use:   "report <solutionFile> [logFile]",
	Short: "Render a solution and its search log as HTML charts",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sol, err := jsonfile.ReadSolution(args[0])
		if err != nil {
			return err
		}
		var log *model.Log
		if len(args) == 2 {
			if log, err = jsonfile.ReadLog(args[1]); err != nil {
				return err
			}
		}
		out := reportOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".html"
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := report.Render(f, reportTitle, sol, log); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <solutionFile>",
	Short: "Verify a solution against the constraints of its instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sol, err := jsonfile.ReadSolution(args[0])
		if err != nil {
			return err
		}
		vs := check.Violations(sol)
		w := cmd.OutOrStdout()
		for _, v := range vs {
			fmt.Fprintln(w, v)
		}
		if len(vs) > 0 {
			return fmt.Errorf("%d violations", len(vs))
		}
		fmt.Fprintf(w, "%s: feasible, makespan %d cost %d\n", sol.Instance.Name, sol.Makespan, sol.Cost)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <solutionFile>",
	Short: "Write the assignments of a solution as CSV or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sol, err := jsonfile.ReadSolution(args[0])
		if err != nil {
			return err
		}
		switch exportFmt {
		case "csv":
			return export.WriteCSV(cmd.OutOrStdout(), sol)
		case "json":
			return export.WriteJSON(cmd.OutOrStdout(), sol)
		default:
			return fmt.Errorf("unknown format %q", exportFmt)
		}
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "", "HTML file (default: solution path with .html)")
	reportCmd.Flags().StringVar(&reportTitle, "title", "Disassembly schedule", "page title")
	exportCmd.Flags().StringVar(&exportFmt, "format", "csv", "csv or json")
	rootCmd.AddCommand(reportCmd, checkCmd, exportCmd)
}
