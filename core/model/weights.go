package model

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// ModelWeights is the serialization form of a linear model's parameters.
type ModelWeights struct {
	// ModelType is the kind of model (LinearRegression etc.)
	ModelType string `json:"model_type"`

	// Version is used for compatibility checks on import.
	Version string `json:"version"`

	// Coefficients are the learned weights.
	Coefficients []float64 `json:"coefficients"`

	// Intercept is the learned intercept.
	Intercept float64 `json:"intercept"`

	// Features optionally names the coefficient columns.
	Features []string `json:"features,omitempty"`

	// Hyperparameters holds the model's configuration.
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// IsFitted records whether the exporting model was fitted.
	IsFitted bool `json:"is_fitted"`
}

// ToJSON serializes the weights as indented JSON.
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON deserializes weights from JSON.
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate checks internal consistency of the weights.
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return tabErrors.New("model_type is required")
	}

	if mw.Version == "" {
		return tabErrors.New("version is required")
	}

	if !mw.IsFitted && len(mw.Coefficients) > 0 {
		return tabErrors.New("unfitted model should not have coefficients")
	}

	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return tabErrors.New("fitted model must have coefficients")
	}

	return nil
}

// Hash returns a sha256 hex digest of the canonical JSON form. Two models
// with identical parameters produce identical hashes.
func (mw *ModelWeights) Hash() (string, error) {
	data, err := json.Marshal(mw)
	if err != nil {
		return "", tabErrors.Wrap(err, "failed to marshal weights")
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Clone creates a deep copy of the weights.
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		Intercept:       mw.Intercept,
		IsFitted:        mw.IsFitted,
		Coefficients:    make([]float64, len(mw.Coefficients)),
		Features:        make([]string, len(mw.Features)),
		Hyperparameters: make(map[string]interface{}),
	}

	copy(clone.Coefficients, mw.Coefficients)
	copy(clone.Features, mw.Features)

	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}

	return clone
}
