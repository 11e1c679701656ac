package ml

import "fmt"

// RandomForestRegressor averages the predictions of its trees.
type RandomForestRegressor struct {
	trees       []*DecisionTreeRegressor
	numFeatures int
}

// NewRandomForestRegressor creates a forest; all trees must share a width.
func NewRandomForestRegressor(trees []*DecisionTreeRegressor) (*RandomForestRegressor, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	n := trees[0].NumFeatures()
	for i, t := range trees[1:] {
		if t.NumFeatures() != n {
			return nil, fmt.Errorf("tree %d expects %d features, tree 0 expects %d", i+1, t.NumFeatures(), n)
		}
	}
	return &RandomForestRegressor{trees: trees, numFeatures: n}, nil
}

func (f *RandomForestRegressor) NumFeatures() int { return f.numFeatures }

func (f *RandomForestRegressor) Predict(x []float64) (float64, error) {
	var sum float64
	for i, t := range f.trees {
		y, err := t.Predict(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += y
	}
	return sum / float64(len(f.trees)), nil
}
