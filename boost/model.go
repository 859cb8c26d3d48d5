// Package boost implements gradient boosted regression trees for
// design matrices produced by the design package.
//
// The engine trains at a fixed number of rounds with exact split
// finding and second-order gain, the same additive scheme popularized
// by LightGBM and XGBoost. Missing feature values are first-class:
// during training each split learns which side its missing rows belong
// on, and prediction routes NaN cells along that stored direction.
// This is what makes a NaN-propagating preprocessing path useful; a
// zero-filled matrix never exercises it.
//
// Typical flow:
//
//	ds, _ := boost.FromDesign(matrix)
//	trainer := boost.NewTrainer(params)
//	if err := trainer.Fit(ds); err != nil { ... }
//	model := trainer.GetModel()
//	preds, _ := model.Predict(matrix.X)
package boost

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tabml/tabprep/core/model"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Model is a fitted gradient boosted ensemble. All fields are exported
// for gob serialization; mutate none of them.
type Model struct {
	// Objective is the canonical name of the training loss.
	Objective string

	// NumIteration is the number of trees trained.
	NumIteration int

	// BestIteration optionally caps prediction to a prefix of the
	// ensemble. Zero means use every tree.
	BestIteration int

	// LearningRate, NumLeaves and MaxDepth echo the training
	// parameters.
	LearningRate float64
	NumLeaves    int
	MaxDepth     int

	// NumFeatures is the width the model was trained on. Prediction
	// input must match it.
	NumFeatures int

	// FeatureNames are the design matrix column names, in order.
	FeatureNames []string

	// InitScore is the constant raw score the ensemble starts from.
	InitScore float64

	// Trees holds the ensemble in training order.
	Trees []Tree

	// RandomSeed and Deterministic echo the training parameters.
	RandomSeed    int64
	Deterministic bool
}

// NumTrees returns the number of trees in the ensemble.
func (m *Model) NumTrees() int {
	return len(m.Trees)
}

// usedTrees returns how many trees prediction walks, honoring
// BestIteration.
func (m *Model) usedTrees() int {
	n := len(m.Trees)
	if m.BestIteration > 0 && m.BestIteration < n {
		return m.BestIteration
	}
	return n
}

// transform maps a raw ensemble score to the output scale. Binary
// models emit probabilities; everything else passes through.
func (m *Model) transform(raw float64) float64 {
	if m.Objective == "binary" {
		return sigmoid(raw)
	}
	return raw
}

// PredictSingle returns the model output for one feature row. NaN
// cells follow each split's learned default direction.
func (m *Model) PredictSingle(features []float64) (float64, error) {
	if m.NumFeatures == 0 {
		return 0, tabErrors.NewNotFittedError("Model", "PredictSingle")
	}
	if len(features) != m.NumFeatures {
		return 0, tabErrors.NewInputShapeError("predict", []int{1, m.NumFeatures}, []int{1, len(features)})
	}
	raw := m.InitScore
	for i := 0; i < m.usedTrees(); i++ {
		raw += m.Trees[i].Predict(features)
	}
	return m.transform(raw), nil
}

// Predict returns an n×1 matrix of model outputs for every row of X.
func (m *Model) Predict(x mat.Matrix) (*mat.Dense, error) {
	return NewPredictor(m).Predict(x)
}

// GetFeatureImportance returns per-feature importance normalized to
// sum to one. importanceType selects the measure: "split" counts how
// often a feature is chosen, "gain" accumulates the gain of those
// splits.
func (m *Model) GetFeatureImportance(importanceType string) ([]float64, error) {
	if m.NumFeatures == 0 {
		return nil, tabErrors.NewNotFittedError("Model", "GetFeatureImportance")
	}
	importance := make([]float64, m.NumFeatures)
	switch importanceType {
	case "split":
		for ti := range m.Trees {
			for ni := range m.Trees[ti].Nodes {
				node := &m.Trees[ti].Nodes[ni]
				if !node.IsLeaf() {
					importance[node.SplitFeature]++
				}
			}
		}
	case "gain":
		for ti := range m.Trees {
			for ni := range m.Trees[ti].Nodes {
				node := &m.Trees[ti].Nodes[ni]
				if !node.IsLeaf() {
					importance[node.SplitFeature] += node.Gain
				}
			}
		}
	default:
		return nil, tabErrors.NewValueError("boost.GetFeatureImportance",
			fmt.Sprintf("unknown importance type: %s (want split or gain)", importanceType))
	}
	total := 0.0
	for _, v := range importance {
		total += v
	}
	if total > 0 {
		for i := range importance {
			importance[i] /= total
		}
	}
	return importance, nil
}

// FeatureImportance pairs a feature name with its normalized
// importance.
type FeatureImportance struct {
	Name  string
	Value float64
}

// RankedFeatures returns feature importances sorted descending, ties
// broken by column order.
func (m *Model) RankedFeatures(importanceType string) ([]FeatureImportance, error) {
	values, err := m.GetFeatureImportance(importanceType)
	if err != nil {
		return nil, err
	}
	ranked := make([]FeatureImportance, len(values))
	for i, v := range values {
		name := fmt.Sprintf("f%d", i)
		if i < len(m.FeatureNames) {
			name = m.FeatureNames[i]
		}
		ranked[i] = FeatureImportance{Name: name, Value: v}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })
	return ranked, nil
}

// SaveToFile writes the model to path in gob format.
func (m *Model) SaveToFile(path string) error {
	return model.SaveModel(m, path)
}

// LoadFromFile reads a model previously written by SaveToFile.
func LoadFromFile(path string) (*Model, error) {
	var m Model
	if err := model.LoadModel(&m, path); err != nil {
		return nil, err
	}
	return &m, nil
}

// String describes the fitted ensemble.
func (m *Model) String() string {
	return fmt.Sprintf("boost.Model(objective=%s, trees=%d, features=%d, lr=%g)",
		m.Objective, len(m.Trees), m.NumFeatures, m.LearningRate)
}
