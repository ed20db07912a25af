package ml

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTree     = errors.New("tree has no nodes")
	ErrFeatureIndex  = errors.New("feature index out of range")
	ErrInvalidTree   = errors.New("invalid tree state")
	errFeatureLength = errors.New("feature vector length mismatch")
)

// RegressionTree is a flattened binary tree: node 0 is the root and
// x[FeatureIdx] <= Threshold descends into LeftChild.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

func (rt *RegressionTree) Predict(features []float64) (float64, error) {
	if len(rt.Nodes) == 0 {
		return 0, ErrEmptyTree
	}
	idx := 0
	// a well-formed tree visits each node at most once on the way down
	for steps := 0; steps <= len(rt.Nodes); steps++ {
		node := rt.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, fmt.Errorf("%w: %d", ErrFeatureIndex, node.FeatureIdx)
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(rt.Nodes) {
			return 0, ErrInvalidTree
		}
	}
	return 0, ErrInvalidTree
}

// TreeEnsemble is a gradient boosted sum of regression trees.
type TreeEnsemble struct {
	Features     []string
	Init         float64
	LearningRate float64
	Trees        []RegressionTree
}

func (te *TreeEnsemble) FeatureNames() []string {
	return append([]string(nil), te.Features...)
}

func (te *TreeEnsemble) Predict(features []float64) (float64, error) {
	if len(features) != len(te.Features) {
		return 0, errFeatureLength
	}
	sum := 0.0
	for i := range te.Trees {
		v, err := te.Trees[i].Predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	return te.Init + te.LearningRate*sum, nil
}
