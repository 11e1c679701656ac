package port

// Scaler standardizes the continuous columns with training-time statistics.
// Implementations are immutable and safe for concurrent use.
type Scaler interface {
	// Features returns the column names the scaler was fitted on, in order.
	Features() []string

	// Transform returns scaled copies of values, which must be ordered as
	// Features().
	Transform(values []float64) ([]float64, error)
}

// Regressor is a fitted model producing a log-space cost estimate.
// Implementations are immutable and safe for concurrent use.
type Regressor interface {
	// NumFeatures is the vector length the model was fitted on.
	NumFeatures() int

	// Predict evaluates the model for a single feature vector.
	Predict(features []float64) (float64, error)
}
