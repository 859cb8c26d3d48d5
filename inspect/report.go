package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/tabml/tabprep/boost"
)

// Report collects the artifacts of one modeling run for plain-text
// rendering. Nil or empty sections are skipped, so partial runs (CV
// only, no retrain) still render cleanly.
type Report struct {
	Formula        string
	Encoding       string
	NAMode         string
	Rounds         int
	CV             *boost.CVResult
	ImportanceType string
	Importance     []boost.FeatureImportance
	Residuals      *ResidualSummary
}

// String renders the report.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "formula:  %s\n", r.Formula)
	fmt.Fprintf(&b, "encoding: %s  na: %s  rounds: %d\n", r.Encoding, r.NAMode, r.Rounds)

	if r.CV != nil && len(r.CV.TestScores) > 0 {
		fmt.Fprintf(&b, "\ncross-validation (%d folds)\n", len(r.CV.TestScores))
		for f := range r.CV.TestScores {
			fmt.Fprintf(&b, "  fold %d: train rmse %.4f  test rmse %.4f  mae %.4f  r2 %.4f\n",
				f+1, r.CV.TrainScores[f], r.CV.TestScores[f], r.CV.TestMAE[f], r.CV.TestR2[f])
		}
		fmt.Fprintf(&b, "  mean test %s\n", r.CV.Summary())
	}

	if len(r.Importance) > 0 {
		label := r.ImportanceType
		if label == "" {
			label = "split"
		}
		fmt.Fprintf(&b, "\ntop features (%s)\n", label)
		for _, f := range r.Importance {
			fmt.Fprintf(&b, "  %-16s %.4f\n", f.Name, f.Value)
		}
	}

	if r.Residuals != nil {
		fmt.Fprintf(&b, "\n%s\n", r.Residuals.String())
	}

	return b.String()
}

// Render writes the report to w.
func (r *Report) Render(w io.Writer) error {
	_, err := io.WriteString(w, r.String())
	return err
}
