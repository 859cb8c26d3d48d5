// Package main implements the tabprep command line interface: design
// matrices from model formulas, encoding-strategy dispatch, and
// cross-validated gradient boosting over CSV data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabml/tabprep/dataset"
	"github.com/tabml/tabprep/design"
	"github.com/tabml/tabprep/encoding"
	"github.com/tabml/tabprep/formula"
	"github.com/tabml/tabprep/pipeline"
	"github.com/tabml/tabprep/pkg/log"
)

var (
	// Global flags
	logLevel string

	// Data flags shared by cv, train and encode
	dataPath        string
	dropCols        []string
	categoricalCols []string
	formulaStr      string
	encodingName    string
	naModeName      string

	// Training flags shared by cv and train
	rounds       int
	learningRate float64
	numLeaves    int
	minLeaf      int
	seed         int64
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tabprep",
	Short: "Design matrices and cross-validated boosting for tabular CSV data",
	Long: `tabprep turns CSV data and a model formula into a design matrix,
dispatching among categorical encoding strategies (numeric, binary,
one-hot), and trains gradient-boosted trees with k-fold
cross-validation.

Missing values propagate as NaN by default and are routed along
per-node default directions by the trees. The legacy zero-fill mode is
available but warns: its zeros are indistinguishable from observed
values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch logLevel {
		case "debug", "info", "warn", "error":
			log.SetupLogger(logLevel)
			log.EnableWarningCapture(cmd.ErrOrStderr())
			return nil
		default:
			return fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", logLevel)
		}
	},
}

// addDataFlags registers the input flags on a command that reads CSV
// data through a formula.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataPath, "data", "", "CSV input path (required)")
	cmd.Flags().StringVar(&formulaStr, "formula", "", `model formula, e.g. "mpg ~ . - 1" (required)`)
	cmd.Flags().StringSliceVar(&dropCols, "drop", nil, "columns to remove before the formula resolves")
	cmd.Flags().StringSliceVar(&categoricalCols, "categorical", nil, "numeric columns treated as factors")
	cmd.Flags().StringVar(&encodingName, "encoding", "numeric", "categorical encoding: numeric, binary or onehot")
	cmd.Flags().StringVar(&naModeName, "na-mode", "propagate", "missing-value mode: propagate or zero_fill")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("formula")
}

// addTrainingFlags registers the boosting hyperparameter flags.
func addTrainingFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&rounds, "rounds", 50, "boosting rounds")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0.1, "shrinkage per tree")
	cmd.Flags().IntVar(&numLeaves, "leaves", 31, "maximum leaves per tree")
	cmd.Flags().IntVar(&minLeaf, "min-leaf", 20, "minimum samples per leaf (lower it for small datasets)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
}

// cliConfig assembles a pipeline configuration from the shared flags.
func cliConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.DataPath = dataPath
	cfg.Drop = dropCols
	cfg.Categorical = categoricalCols
	cfg.Formula = formulaStr
	cfg.Encoding = encodingName
	cfg.NAMode = naModeName
	cfg.Training.NumIterations = rounds
	cfg.Training.LearningRate = learningRate
	cfg.Training.NumLeaves = numLeaves
	cfg.Training.MinDataInLeaf = minLeaf
	cfg.Training.Seed = seed
	return cfg
}

// loadFrame reads the CSV input and applies the column flags.
func loadFrame() (*dataset.Frame, error) {
	frame, err := dataset.LoadFile(dataPath, dataset.WithCategorical(categoricalCols...))
	if err != nil {
		return nil, err
	}
	if len(dropCols) > 0 {
		frame, err = frame.Drop(dropCols...)
		if err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// buildDesign runs the full load-parse-encode chain from the shared
// flags and validates the result.
func buildDesign() (*design.Matrix, error) {
	frame, err := loadFrame()
	if err != nil {
		return nil, err
	}
	f, err := formula.Parse(formulaStr)
	if err != nil {
		return nil, err
	}
	mode, err := encoding.ParseNAMode(naModeName)
	if err != nil {
		return nil, err
	}
	builder, err := design.NewBuilder(encodingName, mode)
	if err != nil {
		return nil, err
	}
	m, err := builder.Build(frame, f)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	rootCmd.AddCommand(cvCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
