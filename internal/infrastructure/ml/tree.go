package ml

import "fmt"

// leaf marks a node without children in the flat tree layout.
const leaf = -1

// TreeNodes is a fitted regression tree in flat array form: node i splits on
// Feature[i] at Threshold[i], sending x <= threshold left. Leaves have
// ChildrenLeft[i] == -1 and predict Value[i].
type TreeNodes struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

// DecisionTreeRegressor evaluates a single regression tree.
type DecisionTreeRegressor struct {
	nodes       TreeNodes
	numFeatures int
}

// NewDecisionTreeRegressor validates the node arrays. Every path from the root
// must reach a leaf without revisiting a node.
func NewDecisionTreeRegressor(nodes TreeNodes, numFeatures int) (*DecisionTreeRegressor, error) {
	n := len(nodes.ChildrenLeft)
	if n == 0 {
		return nil, fmt.Errorf("tree has no nodes")
	}
	if numFeatures <= 0 {
		return nil, fmt.Errorf("tree feature count must be positive, got %d", numFeatures)
	}
	if len(nodes.ChildrenRight) != n || len(nodes.Feature) != n || len(nodes.Threshold) != n || len(nodes.Value) != n {
		return nil, fmt.Errorf("tree node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		left, right := nodes.ChildrenLeft[i], nodes.ChildrenRight[i]
		if left == leaf {
			if right != leaf {
				return nil, fmt.Errorf("node %d has a right child but no left child", i)
			}
			if !finite(nodes.Value[i]) {
				return nil, fmt.Errorf("leaf %d value is not finite", i)
			}
			continue
		}
		// Children always follow their parent, which rules out cycles.
		if left <= i || left >= n || right <= i || right >= n {
			return nil, fmt.Errorf("node %d has children out of range: %d, %d", i, left, right)
		}
		if f := nodes.Feature[i]; f < 0 || f >= numFeatures {
			return nil, fmt.Errorf("node %d splits on feature %d, model has %d", i, f, numFeatures)
		}
		if !finite(nodes.Threshold[i]) {
			return nil, fmt.Errorf("node %d threshold is not finite", i)
		}
	}

	return &DecisionTreeRegressor{nodes: nodes, numFeatures: numFeatures}, nil
}

func (t *DecisionTreeRegressor) NumFeatures() int { return t.numFeatures }

func (t *DecisionTreeRegressor) Predict(x []float64) (float64, error) {
	if len(x) != t.numFeatures {
		return 0, fmt.Errorf("tree expects %d features, got %d", t.numFeatures, len(x))
	}
	node := 0
	for t.nodes.ChildrenLeft[node] != leaf {
		if x[t.nodes.Feature[node]] <= t.nodes.Threshold[node] {
			node = t.nodes.ChildrenLeft[node]
		} else {
			node = t.nodes.ChildrenRight[node]
		}
	}
	return t.nodes.Value[node], nil
}
