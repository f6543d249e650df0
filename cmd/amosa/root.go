package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/amosa/internal/logging"
)

var version = "0.1.0"

type globalOptions struct {
	logLevel  string
	logFormat string
	logOutput string
}

func (g *globalOptions) logger() (*logging.Logger, error) {
	return logging.NewLogger(&logging.Config{
		Level:  g.logLevel,
		Format: g.logFormat,
		Output: g.logOutput,
	})
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "amosa",
		Short: "Archived multi-objective simulated annealing",
		Long: `amosa approximates the Pareto front of multi-objective problems with
archived multi-objective simulated annealing and writes the final archive as CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "console", "Log format (json, console)")
	root.PersistentFlags().StringVar(&g.logOutput, "log-output", "stderr", "Log destination (stdout, stderr or a file path)")

	root.AddCommand(
		newRunCmd(g),
		newProblemsCmd(),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "amosa version %s\n", version)
		},
	}
}
