package ml

import "fmt"

// LinearRegressor computes intercept + coef·x.
type LinearRegressor struct {
	coef      []float64
	intercept float64
}

// NewLinearRegressor creates a linear model from fitted coefficients.
func NewLinearRegressor(coef []float64, intercept float64) (*LinearRegressor, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("linear model has no coefficients")
	}
	for i, c := range coef {
		if !finite(c) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if !finite(intercept) {
		return nil, fmt.Errorf("intercept is not finite")
	}
	return &LinearRegressor{coef: append([]float64(nil), coef...), intercept: intercept}, nil
}

func (m *LinearRegressor) NumFeatures() int { return len(m.coef) }

func (m *LinearRegressor) Predict(x []float64) (float64, error) {
	if len(x) != len(m.coef) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(m.coef), len(x))
	}
	y := m.intercept
	for i, c := range m.coef {
		y += c * x[i]
	}
	return y, nil
}
