package model_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tabml/tabprep/core/model"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// persistedModel is a minimal gob-encodable stand-in for a trained model.
type persistedModel struct {
	Name    string
	Weights []float64
	Rounds  int
}

func TestBaseEstimatorStateTransitions(t *testing.T) {
	var base model.BaseEstimator

	if base.IsFitted() {
		t.Error("new estimator should not be fitted")
	}

	base.SetFitted()
	if !base.IsFitted() {
		t.Error("estimator should be fitted after SetFitted")
	}

	base.Reset()
	if base.IsFitted() {
		t.Error("estimator should not be fitted after Reset")
	}
}

func TestStateManager(t *testing.T) {
	sm := model.NewStateManager()

	if err := sm.RequireFitted("OneHotStrategy", "Encode"); err == nil {
		t.Fatal("expected NotFittedError before fitting")
	} else {
		var notFitted *tabErrors.NotFittedError
		if !tabErrors.As(err, &notFitted) {
			t.Fatalf("expected NotFittedError, got %T", err)
		}
		if notFitted.ModelName != "OneHotStrategy" {
			t.Errorf("unexpected model name %q", notFitted.ModelName)
		}
	}

	sm.SetFitted()
	sm.SetDimensions(3, 32)

	if err := sm.RequireFitted("OneHotStrategy", "Encode"); err != nil {
		t.Fatalf("unexpected error after fitting: %v", err)
	}

	nFeatures, nSamples := sm.GetDimensions()
	if nFeatures != 3 || nSamples != 32 {
		t.Errorf("dimensions = (%d, %d), want (3, 32)", nFeatures, nSamples)
	}

	sm.Reset()
	if sm.IsFitted() {
		t.Error("state manager should not be fitted after Reset")
	}
}

func TestSaveLoadModel(t *testing.T) {
	saved := persistedModel{
		Name:    "booster",
		Weights: []float64{0.5, -1.25, 3.0},
		Rounds:  50,
	}

	path := filepath.Join(t.TempDir(), "model.gob")
	if err := model.SaveModel(&saved, path); err != nil {
		t.Fatalf("save model: %v", err)
	}

	var loaded persistedModel
	if err := model.LoadModel(&loaded, path); err != nil {
		t.Fatalf("load model: %v", err)
	}

	if loaded.Name != saved.Name || loaded.Rounds != saved.Rounds {
		t.Errorf("loaded = %+v, want %+v", loaded, saved)
	}
	if len(loaded.Weights) != len(saved.Weights) {
		t.Fatalf("weights length = %d, want %d", len(loaded.Weights), len(saved.Weights))
	}
	for i := range saved.Weights {
		if loaded.Weights[i] != saved.Weights[i] {
			t.Errorf("weight[%d] = %v, want %v", i, loaded.Weights[i], saved.Weights[i])
		}
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	var loaded persistedModel
	err := model.LoadModel(&loaded, filepath.Join(t.TempDir(), "absent.gob"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !tabErrors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestSaveLoadModelRoundTripWriter(t *testing.T) {
	saved := persistedModel{Name: "linear", Weights: []float64{1, 2}, Rounds: 1}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(&saved, &buf); err != nil {
		t.Fatalf("save to writer: %v", err)
	}

	var loaded persistedModel
	if err := model.LoadModelFromReader(&loaded, &buf); err != nil {
		t.Fatalf("load from reader: %v", err)
	}

	if loaded.Name != saved.Name {
		t.Errorf("loaded name = %q, want %q", loaded.Name, saved.Name)
	}
}

func TestModelWeights(t *testing.T) {
	mw := &model.ModelWeights{
		ModelType:    "LinearRegression",
		Version:      "1.0",
		Coefficients: []float64{0.1, 0.2},
		Intercept:    1.5,
		Features:     []string{"wt", "hp"},
		Hyperparameters: map[string]interface{}{
			"fit_intercept": true,
		},
		IsFitted: true,
	}

	if err := mw.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	hash1, err := mw.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	clone := mw.Clone()
	hash2, err := clone.Hash()
	if err != nil {
		t.Fatalf("hash clone: %v", err)
	}
	if hash1 != hash2 {
		t.Error("clone should hash identically")
	}

	clone.Coefficients[0] = 99
	hash3, err := clone.Hash()
	if err != nil {
		t.Fatalf("hash mutated clone: %v", err)
	}
	if hash1 == hash3 {
		t.Error("mutated weights should hash differently")
	}
	if mw.Coefficients[0] == 99 {
		t.Error("clone mutation leaked into original")
	}

	data, err := mw.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	var back model.ModelWeights
	if err := back.FromJSON(data); err != nil {
		t.Fatalf("from json: %v", err)
	}
	if back.ModelType != mw.ModelType || back.Intercept != mw.Intercept {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name string
		mw   model.ModelWeights
	}{
		{"missing type", model.ModelWeights{Version: "1.0"}},
		{"missing version", model.ModelWeights{ModelType: "LinearRegression"}},
		{"unfitted with coefficients", model.ModelWeights{
			ModelType: "LinearRegression", Version: "1.0",
			Coefficients: []float64{1}, IsFitted: false,
		}},
		{"fitted without coefficients", model.ModelWeights{
			ModelType: "LinearRegression", Version: "1.0", IsFitted: true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.mw.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
