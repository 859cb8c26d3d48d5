package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabml/tabprep/pipeline"
)

// runCmd executes a YAML-configured pipeline run.
var runCmd = &cobra.Command{
	Use:   "run <experiment.yaml>",
	Short: "Execute a pipeline run from a YAML configuration",
	Long: `Loads a run configuration from YAML, overlays TABPREP_-prefixed
environment variables, and executes the full flow: design matrix,
cross-validation, and (unless disabled) a final retrain with residual
and importance reporting.

Example:
  tabprep run experiment.yaml
  TABPREP_ENCODING=onehot tabprep run experiment.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := pipeline.LoadConfig(args[0])
	if err != nil {
		return err
	}
	if err := cfg.FromEnv(); err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		return err
	}
	res, err := runner.Run()
	if err != nil {
		return err
	}

	if err := res.Report().Render(os.Stdout); err != nil {
		return err
	}

	fmt.Printf("\nrun %s: %d rows, %d features, fingerprint %s\n",
		res.RunID, res.Rows, res.Features, res.Fingerprint[:12])
	if cfg.CacheSize > 0 {
		fmt.Println(res.CacheStats)
	}
	for _, path := range []string{res.ResidualPlot, res.ImportancePlot} {
		if path != "" {
			fmt.Println("plot:", path)
		}
	}
	fmt.Printf("finished in %.3fs\n", res.Elapsed.Seconds())
	return nil
}
