package linear

// Option configures a LinearRegression before fitting.
type Option func(*LinearRegression)

// WithFitIntercept controls whether Fit estimates an intercept.
// FitDesign ignores this and follows the design matrix: the formula
// already decided whether an intercept column exists.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}
