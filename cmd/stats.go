package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/adsp/infra/jsonfile"
)

var jsonOutput bool

var statsCmd = &cobra.Command{
	Use:   "stats <instanceFile>",
	Short: "Print the characteristics and bounds of an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := jsonfile.ReadInstance(args[0])
		if err != nil {
			return err
		}
		return printStats(cmd, inst)
	},
}

func init() {
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "print as JSON")
	rootCmd.AddCommand(statsCmd)
}
