package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabml/tabprep/boost"
	"github.com/tabml/tabprep/inspect"
)

var (
	trainModelPath     string
	trainResidualPlot  string
	trainGainPlot      string
	trainObjectiveName string
)

// trainCmd fits a model on the full data and saves it.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a boosted model on the full data and save it",
	Long: `Builds the design matrix, trains gradient-boosted trees on every row
and writes the model in gob format. Optional plots show the residuals
and the per-feature gain importance.

Example:
  tabprep train --data cars.csv --drop model --formula "mpg ~ . - 1" \
    --rounds 50 --min-leaf 3 --model mpg.gob --residual-plot residuals.png`,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	m, err := buildDesign()
	if err != nil {
		return err
	}
	ds, err := boost.FromDesign(m)
	if err != nil {
		return err
	}

	params := boost.DefaultParams()
	params.NumIterations = rounds
	params.LearningRate = learningRate
	params.NumLeaves = numLeaves
	params.MinDataInLeaf = minLeaf
	params.Seed = seed
	params.Objective = trainObjectiveName

	trainer := boost.NewTrainer(params)
	if err := trainer.Fit(ds); err != nil {
		return err
	}
	model := trainer.GetModel()

	if err := model.SaveToFile(trainModelPath); err != nil {
		return err
	}
	fmt.Printf("model: %d trees on %d features, saved to %s\n",
		model.NumTrees(), model.NumFeatures, trainModelPath)

	residuals, err := boost.Residuals(model, ds)
	if err != nil {
		return err
	}
	summary, err := inspect.Summarize(residuals)
	if err != nil {
		return err
	}
	fmt.Println(summary)

	if trainResidualPlot != "" {
		labels := ds.Labels()
		fitted := make([]float64, len(labels))
		for i := range labels {
			fitted[i] = labels[i] - residuals[i]
		}
		if err := inspect.SaveResidualPlot(fitted, residuals, trainResidualPlot); err != nil {
			return err
		}
		fmt.Printf("residual plot: %s\n", trainResidualPlot)
	}

	if trainGainPlot != "" {
		ranked, err := model.RankedFeatures("gain")
		if err != nil {
			return err
		}
		if err := inspect.SaveImportancePlot(ranked, trainGainPlot); err != nil {
			return err
		}
		fmt.Printf("importance plot: %s\n", trainGainPlot)
	}
	return nil
}

func init() {
	addDataFlags(trainCmd)
	addTrainingFlags(trainCmd)
	trainCmd.Flags().StringVar(&trainModelPath, "model", "model.gob", "output path for the trained model")
	trainCmd.Flags().StringVar(&trainResidualPlot, "residual-plot", "", "write a fitted-vs-residual scatter plot here")
	trainCmd.Flags().StringVar(&trainGainPlot, "importance-plot", "", "write a gain-importance bar chart here")
	trainCmd.Flags().StringVar(&trainObjectiveName, "objective", "regression", "training objective: regression, l1, huber or binary")
}
