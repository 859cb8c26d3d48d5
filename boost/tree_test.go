package boost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stumpTree builds a single split on feature 0 at threshold 5 with
// leaf values -1 (left) and +1 (right).
func stumpTree(defaultLeft bool, shrinkage float64) Tree {
	return Tree{
		TreeIndex:     0,
		NumLeaves:     2,
		ShrinkageRate: shrinkage,
		Nodes: []Node{
			{NodeID: 0, ParentID: -1, LeftChild: 1, RightChild: 2, NodeType: NumericalNode,
				SplitFeature: 0, Threshold: 5, DefaultLeft: defaultLeft},
			{NodeID: 1, ParentID: 0, LeftChild: -1, RightChild: -1, NodeType: LeafNode, LeafValue: -1, LeafCount: 3},
			{NodeID: 2, ParentID: 0, LeftChild: -1, RightChild: -1, NodeType: LeafNode, LeafValue: 1, LeafCount: 3},
		},
	}
}

func TestTreePredict(t *testing.T) {
	tree := stumpTree(false, 1.0)

	assert.Equal(t, -1.0, tree.Predict([]float64{4.0}))
	assert.Equal(t, -1.0, tree.Predict([]float64{5.0}), "boundary value goes left")
	assert.Equal(t, 1.0, tree.Predict([]float64{5.1}))
}

func TestTreePredictShrinkage(t *testing.T) {
	tree := stumpTree(false, 0.1)

	assert.InDelta(t, -0.1, tree.Predict([]float64{0.0}), 1e-12)
	assert.InDelta(t, 0.1, tree.Predict([]float64{9.0}), 1e-12)
}

func TestTreePredictMissingFollowsDefault(t *testing.T) {
	nan := math.NaN()

	right := stumpTree(false, 1.0)
	assert.Equal(t, 1.0, right.Predict([]float64{nan}))

	left := stumpTree(true, 1.0)
	assert.Equal(t, -1.0, left.Predict([]float64{nan}))
}

func TestTreePredictEmpty(t *testing.T) {
	var tree Tree
	assert.Zero(t, tree.Predict([]float64{1.0}))
}

func TestTreeCountLeavesAndDepth(t *testing.T) {
	tree := stumpTree(false, 1.0)
	assert.Equal(t, 2, tree.countLeaves())
	assert.Equal(t, 1, tree.maxDepth())

	leafOnly := Tree{Nodes: []Node{{NodeID: 0, ParentID: -1, LeftChild: -1, RightChild: -1, NodeType: LeafNode, LeafValue: 3}}}
	assert.Equal(t, 1, leafOnly.countLeaves())
	assert.Equal(t, 0, leafOnly.maxDepth())
}

func TestNodeTypeString(t *testing.T) {
	assert.Equal(t, "leaf", LeafNode.String())
	assert.Equal(t, "numerical", NumericalNode.String())
	assert.Equal(t, "unknown", NodeType(9).String())
}
