// Package ml evaluates fitted regression models and scalers exported as JSON.
package ml

import (
	"encoding/json"
	"fmt"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
)

// Model kinds accepted in model.json.
const (
	KindLinear       = "linear"
	KindDecisionTree = "decision_tree"
	KindRandomForest = "random_forest"
)

type modelFile struct {
	Kind        string      `json:"kind"`
	NumFeatures int         `json:"n_features"`
	Coef        []float64   `json:"coef"`
	Intercept   *float64    `json:"intercept"`
	Tree        *TreeNodes  `json:"tree"`
	Trees       []TreeNodes `json:"trees"`
}

// DecodeModel parses model.json into a Regressor. n_features is required and
// must agree with the decoded parameters.
func DecodeModel(data []byte) (port.Regressor, error) {
	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if f.NumFeatures <= 0 {
		return nil, fmt.Errorf("model n_features must be positive, got %d", f.NumFeatures)
	}

	switch f.Kind {
	case KindLinear:
		if f.Intercept == nil {
			return nil, fmt.Errorf("linear model is missing intercept")
		}
		if len(f.Coef) != f.NumFeatures {
			return nil, fmt.Errorf("linear model has %d coefficients, n_features is %d", len(f.Coef), f.NumFeatures)
		}
		m, err := NewLinearRegressor(f.Coef, *f.Intercept)
		if err != nil {
			return nil, err
		}
		return m, nil

	case KindDecisionTree:
		if f.Tree == nil {
			return nil, fmt.Errorf("decision tree model is missing tree")
		}
		t, err := NewDecisionTreeRegressor(*f.Tree, f.NumFeatures)
		if err != nil {
			return nil, err
		}
		return t, nil

	case KindRandomForest:
		trees := make([]*DecisionTreeRegressor, 0, len(f.Trees))
		for i, nodes := range f.Trees {
			t, err := NewDecisionTreeRegressor(nodes, f.NumFeatures)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			trees = append(trees, t)
		}
		forest, err := NewRandomForestRegressor(trees)
		if err != nil {
			return nil, err
		}
		return forest, nil

	default:
		return nil, fmt.Errorf("unsupported model kind %q", f.Kind)
	}
}
