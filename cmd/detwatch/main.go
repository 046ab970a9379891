// Package main is the entry point for the detwatch CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// configPath is the --config flag, shared by all subcommands.
var configPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "detwatch",
		Short:   "detwatch — terminal controller for a remote video-detection service",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeWatch()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to detwatch.toml (default: search upward from cwd)")

	root.AddCommand(
		watchCmd(),
		statusCmd(),
		startCmd(),
		stopCmd(),
		historyCmd(),
		initCmd(),
	)

	return root
}
