package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/adsp/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "adsp",
	Short:         "Aircraft disassembly scheduling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	rootCmd.SetArgs(NormalizeArgs(os.Args[1:]))
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
