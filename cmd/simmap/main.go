package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFiles   []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "simmap",
		Short:         "Road map engine for agents moving on lane paths",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, ".env files loaded before the config (default .env)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(storeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
