package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabml/tabprep/pipeline"
)

var (
	cvFolds   int
	cvShuffle bool
)

// cvCmd cross-validates a boosted model over the configured design
// matrix and prints the per-fold scores.
var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Cross-validate a boosted model on a design matrix",
	Long: `Builds the design matrix from the formula and encoding flags, then
runs k-fold cross-validated gradient boosting at a fixed round count.

Example:
  tabprep cv --data cars.csv --drop model --formula "mpg ~ . - 1" \
    --encoding onehot --folds 5 --rounds 50 --min-leaf 3`,
	RunE: runCV,
}

func runCV(cmd *cobra.Command, args []string) error {
	cfg := cliConfig()
	cfg.Folds = cvFolds
	cfg.Shuffle = cvShuffle
	cfg.Retrain = false

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
	fmt.Printf("\nrun %s finished in %.3fs\n", res.RunID, res.Elapsed.Seconds())
	return nil
}

func init() {
	addDataFlags(cvCmd)
	addTrainingFlags(cvCmd)
	cvCmd.Flags().IntVar(&cvFolds, "folds", 5, "number of cross-validation folds")
	cvCmd.Flags().BoolVar(&cvShuffle, "shuffle", true, "shuffle rows before folding")
}
