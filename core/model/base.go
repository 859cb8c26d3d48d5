// Package model provides the estimator state machinery shared by all fitted
// types in tabprep: encoders, the design-matrix builder, and the regressors.
package model

// EstimatorState represents the fitted state of an estimator.
type EstimatorState int

const (
	// NotFitted means Fit has not completed yet.
	NotFitted EstimatorState = iota
	// Fitted means Fit has completed and the estimator is usable.
	Fitted
)

// BaseEstimator is the embedded base for all estimators.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
