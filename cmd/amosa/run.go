package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copyleftdev/amosa/internal/config"
	"github.com/copyleftdev/amosa/internal/logging"
	"github.com/copyleftdev/amosa/internal/optimization"
	"github.com/copyleftdev/amosa/internal/optimization/amosa"
	"github.com/copyleftdev/amosa/internal/optimization/problems"
	"github.com/copyleftdev/amosa/internal/report"
)

type runOptions struct {
	configPath string
	problem    string
	variables  int
	threshold  float64
	catalog    string
	workers    int
	seed       int64
	output     string
}

func newRunCmd(g *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single optimization",
		Long: `Runs AMOSA on a problem and writes the final archive as CSV.

Parameters come from the run file given with --config; flags override it.
Without an output path the archive is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimization(cmd, g, o)
		},
	}

	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "Run file (YAML)")
	cmd.Flags().StringVarP(&o.problem, "problem", "p", "", "Problem name, see 'amosa problems'")
	cmd.Flags().IntVar(&o.variables, "variables", 0, "Decision vector size of the ZDT problems")
	cmd.Flags().Float64Var(&o.threshold, "threshold", 0, "Constraint threshold")
	cmd.Flags().StringVar(&o.catalog, "catalog", "", "Catalog file of the catalog problem")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Goroutines per catalog evaluation")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "Random seed (0 seeds from the clock)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "CSV output path")
	return cmd
}

// resolve merges the run file with the flags the user set.
func (o *runOptions) resolve(cmd *cobra.Command) (*config.RunFile, error) {
	rf := &config.RunFile{AMOSA: amosa.DefaultConfig()}
	if o.configPath != "" {
		var err error
		if rf, err = config.LoadRunFile(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("problem") {
		rf.Problem.Name = o.problem
	}
	if flags.Changed("variables") {
		rf.Problem.Options.Variables = o.variables
	}
	if flags.Changed("threshold") {
		t := o.threshold
		rf.Problem.Options.Threshold = &t
	}
	if flags.Changed("catalog") {
		rf.Problem.Options.Catalog = o.catalog
	}
	if flags.Changed("workers") {
		rf.Problem.Options.Workers = o.workers
	}
	if flags.Changed("seed") {
		rf.AMOSA.Seed = o.seed
	}
	if flags.Changed("output") {
		rf.Output = o.output
	}

	if rf.Problem.Name == "" {
		return nil, fmt.Errorf("a problem is required: use --problem or a run file")
	}
	return rf, nil
}

func runOptimization(cmd *cobra.Command, g *globalOptions, o *runOptions) error {
	rf, err := o.resolve(cmd)
	if err != nil {
		return err
	}

	logger, err := g.logger()
	if err != nil {
		return err
	}

	problem, err := problems.New(rf.Problem.Name, rf.Problem.Options)
	if err != nil {
		return err
	}
	optimizer, err := amosa.NewOptimizer(rf.AMOSA)
	if err != nil {
		return err
	}
	optimizer.WithLogger(logging.NewZapLogger(logger).With(
		zap.String("component", "amosa"),
		zap.String("problem", rf.Problem.Name),
	))

	logger.Info("Starting optimization", map[string]interface{}{
		"problem":     rf.Problem.Name,
		"variables":   problem.NumVariables(),
		"objectives":  problem.NumObjectives(),
		"constraints": problem.NumConstraints(),
	})

	result, err := optimizer.Minimize(cmd.Context(), problem)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if rf.Output == "" {
		return report.WriteCSV(cmd.OutOrStdout(), result.Archive, problem.NumObjectives(), problem.NumVariables())
	}
	if err := report.SaveCSV(rf.Output, problem, result); err != nil {
		return fmt.Errorf("writing %s: %w", rf.Output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d solutions, %d evaluations, %s)\n",
		rf.Output, len(result.Archive), result.Evaluations, result.Duration.Round(time.Millisecond))
	return nil
}

func newProblemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "problems",
		Short: "List the available problems",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range problems.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <run-file>",
		Short: "Check a run file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := config.LoadRunFile(args[0])
			if err != nil {
				return err
			}
			problem, err := problems.New(rf.Problem.Name, rf.Problem.Options)
			if err != nil {
				return err
			}
			if err := optimization.ValidateProblem(problem); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: problem %s with %d variables, %d objectives and %d constraints\n",
				args[0], rf.Problem.Name, problem.NumVariables(), problem.NumObjectives(), problem.NumConstraints())
			return nil
		},
	}
}
