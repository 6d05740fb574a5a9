package linear

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept.
// When false, the design matrix is used exactly as passed, so a caller who
// wants an intercept must prepend a column of ones; the resulting coefficient
// vector then carries the intercept coefficient first.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithCopyX sets whether to copy the X matrix before fitting
func WithCopyX(copy bool) Option {
	return func(lr *LinearRegression) {
		lr.copyX = copy
	}
}
