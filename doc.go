// Package tabprep prepares tabular data for machine learning and
// trains gradient-boosted trees on the result.
//
// The library covers the path from a raw CSV file to a cross-validated
// model: typed column frames, model formulas, categorical encoding
// strategies, validated design matrices, and a boosting engine that
// treats missing values as first-class citizens.
//
// # Quick Start
//
// Build a design matrix from a formula and cross-validate a boosted
// model:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/tabml/tabprep/boost"
//	    "github.com/tabml/tabprep/dataset"
//	    "github.com/tabml/tabprep/design"
//	    "github.com/tabml/tabprep/encoding"
//	    "github.com/tabml/tabprep/formula"
//	)
//
//	func main() {
//	    frame, err := dataset.SampleMotorTrend().Drop("model")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    builder, err := design.NewBuilder("onehot", encoding.NAPropagate)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    m, err := builder.Build(frame, formula.MustParse("mpg ~ . - 1"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ds, err := boost.FromDesign(m)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    params := boost.DefaultParams()
//	    params.NumIterations = 50
//	    params.MinDataInLeaf = 3
//	    cv, err := boost.CrossValidate(ds, params, boost.NewKFold(5, true, 42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(cv.Summary())
//	}
//
// # Missing Values
//
// Missing cells propagate as NaN by default. The trees learn a default
// direction per split and route NaN rows along it, at training and at
// prediction time. The legacy zero-fill mode is still available for
// comparison but raises a warning: its zeros are indistinguishable
// from observed values, which silently biases the model. The
// examples/motortrend_missing program walks through the difference.
//
// # Packages
//
//   - dataset: typed column frames over CSV, fingerprints, missing-value injection
//   - formula: model formulas ("mpg ~ . - carb - 1") resolved against frames
//   - encoding: categorical encoding strategies (numeric, binary, onehot)
//   - design: formula plus frame to validated design matrix
//   - cache: fingerprint-keyed LRU cache for built matrices
//   - boost: gradient-boosted trees with NaN-aware splits and k-fold CV
//   - linear: ordinary least squares baseline
//   - metrics: regression metrics (MSE, RMSE, MAE, R², MAPE)
//   - inspect: residual summaries, diagnostic plots, text reports
//   - pipeline: YAML- and environment-configured end-to-end runs
//   - cmd/tabprep: the command line interface
package tabprep
