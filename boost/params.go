package boost

import (
	"fmt"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// TrainingParams holds the hyperparameters for gradient boosting. The
// zero value is not usable; start from DefaultParams and override.
type TrainingParams struct {
	// NumIterations is the fixed number of boosting rounds.
	NumIterations int `json:"num_iterations" yaml:"num_iterations"`

	// LearningRate shrinks each tree's contribution.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// NumLeaves caps the number of leaves per tree.
	NumLeaves int `json:"num_leaves" yaml:"num_leaves"`

	// MaxDepth caps tree depth. Values <= 0 leave depth unlimited.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// MinDataInLeaf is the minimum number of samples a leaf may hold.
	// Splits that would produce a smaller leaf are rejected.
	MinDataInLeaf int `json:"min_data_in_leaf" yaml:"min_data_in_leaf"`

	// Lambda is the L2 regularization term on leaf values.
	Lambda float64 `json:"lambda" yaml:"lambda"`

	// MinGainToSplit rejects splits below this gain.
	MinGainToSplit float64 `json:"min_gain_to_split" yaml:"min_gain_to_split"`

	// Objective selects the loss: "regression" (l2), "l1", "huber" or
	// "binary".
	Objective string `json:"objective" yaml:"objective"`

	// HuberDelta is the transition point of the huber objective.
	HuberDelta float64 `json:"huber_delta" yaml:"huber_delta"`

	// Seed feeds deterministic components and is recorded on the model.
	Seed int64 `json:"seed" yaml:"seed"`

	// Deterministic forces single-threaded prediction.
	Deterministic bool `json:"deterministic" yaml:"deterministic"`

	// Verbosity enables per-round training logs when positive.
	Verbosity int `json:"verbosity" yaml:"verbosity"`
}

// DefaultParams returns the standard parameter set: 100 rounds,
// learning rate 0.1, 31 leaves and a 20-sample leaf minimum. Small
// datasets usually need MinDataInLeaf lowered before any split can
// clear the size check.
func DefaultParams() TrainingParams {
	return TrainingParams{
		NumIterations:  100,
		LearningRate:   0.1,
		NumLeaves:      31,
		MaxDepth:       -1,
		MinDataInLeaf:  20,
		Lambda:         0.0,
		MinGainToSplit: 0.0,
		Objective:      "regression",
		HuberDelta:     1.0,
		Seed:           42,
	}
}

// Validate checks the parameter set and returns a ValidationError for
// the first offending field.
func (p *TrainingParams) Validate() error {
	if p.NumIterations <= 0 {
		return tabErrors.NewValidationError("num_iterations", "must be positive", p.NumIterations)
	}
	if p.LearningRate <= 0 {
		return tabErrors.NewValidationError("learning_rate", "must be positive", p.LearningRate)
	}
	if p.NumLeaves < 2 {
		return tabErrors.NewValidationError("num_leaves", "must be at least 2", p.NumLeaves)
	}
	if p.MinDataInLeaf < 1 {
		return tabErrors.NewValidationError("min_data_in_leaf", "must be at least 1", p.MinDataInLeaf)
	}
	if p.Lambda < 0 {
		return tabErrors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	}
	if p.MinGainToSplit < 0 {
		return tabErrors.NewValidationError("min_gain_to_split", "must be non-negative", p.MinGainToSplit)
	}
	if _, err := CreateObjective(p.Objective, p); err != nil {
		return err
	}
	return nil
}

// String returns a compact description of the parameter set.
func (p TrainingParams) String() string {
	return fmt.Sprintf("boost.TrainingParams(objective=%s, rounds=%d, lr=%g, leaves=%d, min_leaf=%d)",
		p.Objective, p.NumIterations, p.LearningRate, p.NumLeaves, p.MinDataInLeaf)
}
