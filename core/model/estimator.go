package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on X and y.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that produce predictions.
type Predictor interface {
	// Predict returns predictions for X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is a trainable model that tracks its fitted state.
type Estimator interface {
	Fitter
	IsFitted() bool
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R² of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces of a regression model.
type Regressor interface {
	Estimator
	Predictor
	Scorer
}

// LinearModel is the interface for linear models.
type LinearModel interface {
	// Weights returns the learned coefficients.
	Weights() []float64
	// Intercept returns the learned intercept.
	Intercept() float64
	// Score returns the coefficient of determination R² of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
