package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stumpJSON = `{
	"children_left":  [1, -1, -1],
	"children_right": [2, -1, -1],
	"feature":        [1, -2, -2],
	"threshold":      [0.5, -2, -2],
	"value":          [9.0, 8.5, 10.2]
}`

func TestDecodeModel_Linear(t *testing.T) {
	reg, err := DecodeModel([]byte(`{"kind":"linear","n_features":3,"coef":[1,2,3],"intercept":0.5}`))
	require.NoError(t, err)
	assert.Equal(t, 3, reg.NumFeatures())

	y, err := reg.Predict([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 6.5, y, 1e-12)

	_, err = reg.Predict([]float64{1})
	assert.ErrorContains(t, err, "expects 3 features")
}

func TestDecodeModel_DecisionTree(t *testing.T) {
	reg, err := DecodeModel([]byte(`{"kind":"decision_tree","n_features":2,"tree":` + stumpJSON + `}`))
	require.NoError(t, err)

	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{name: "below threshold goes left", x: []float64{0, 0}, want: 8.5},
		{name: "at threshold goes left", x: []float64{0, 0.5}, want: 8.5},
		{name: "above threshold goes right", x: []float64{0, 1}, want: 10.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, err := reg.Predict(tt.x)
			require.NoError(t, err)
			assert.Equal(t, tt.want, y)
		})
	}
}

func TestDecodeModel_RandomForest(t *testing.T) {
	reg, err := DecodeModel([]byte(`{"kind":"random_forest","n_features":2,"trees":[` + stumpJSON + `,` +
		`{"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[-2],"value":[9.5]}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.NumFeatures())

	y, err := reg.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, (10.2+9.5)/2, y, 1e-12)
}

func TestDecodeModel_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
	}{
		{name: "malformed", json: `{"kind":`, wantErr: "failed to decode model"},
		{name: "unknown kind", json: `{"kind":"svm","n_features":1}`, wantErr: `unsupported model kind "svm"`},
		{name: "missing n_features", json: `{"kind":"linear","coef":[1],"intercept":0}`, wantErr: "n_features must be positive"},
		{name: "coef mismatch", json: `{"kind":"linear","n_features":2,"coef":[1],"intercept":0}`, wantErr: "1 coefficients, n_features is 2"},
		{name: "missing intercept", json: `{"kind":"linear","n_features":1,"coef":[1]}`, wantErr: "missing intercept"},
		{name: "missing tree", json: `{"kind":"decision_tree","n_features":1}`, wantErr: "missing tree"},
		{name: "empty forest", json: `{"kind":"random_forest","n_features":1,"trees":[]}`, wantErr: "no trees"},
		{
			name:    "split feature out of range",
			json:    `{"kind":"decision_tree","n_features":1,"tree":` + stumpJSON + `}`,
			wantErr: "splits on feature 1, model has 1",
		},
		{
			name:    "cyclic tree",
			json:    `{"kind":"decision_tree","n_features":1,"tree":{"children_left":[0],"children_right":[0],"feature":[0],"threshold":[1],"value":[0]}}`,
			wantErr: "children out of range",
		},
		{
			name:    "ragged arrays",
			json:    `{"kind":"decision_tree","n_features":1,"tree":{"children_left":[-1],"children_right":[],"feature":[0],"threshold":[1],"value":[0]}}`,
			wantErr: "differ in length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := DecodeModel([]byte(tt.json))
			require.Error(t, err)
			assert.Nil(t, reg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewRandomForestRegressor_MixedWidths(t *testing.T) {
	nodes := TreeNodes{
		ChildrenLeft:  []int{-1},
		ChildrenRight: []int{-1},
		Feature:       []int{-2},
		Threshold:     []float64{-2},
		Value:         []float64{1},
	}
	a, err := NewDecisionTreeRegressor(nodes, 2)
	require.NoError(t, err)
	b, err := NewDecisionTreeRegressor(nodes, 3)
	require.NoError(t, err)

	_, err = NewRandomForestRegressor([]*DecisionTreeRegressor{a, b})
	assert.ErrorContains(t, err, "tree 1 expects 3 features")
}
