package boost

import "math"

// NodeType identifies the role of a node within a tree.
type NodeType int

const (
	// LeafNode is a terminal node carrying an output value.
	LeafNode NodeType = iota
	// NumericalNode splits on a numeric feature threshold.
	NumericalNode
)

// String returns the string representation of the node type.
func (nt NodeType) String() string {
	switch nt {
	case LeafNode:
		return "leaf"
	case NumericalNode:
		return "numerical"
	default:
		return "unknown"
	}
}

// Node is a single decision node. Child fields hold indices into the
// owning tree's Nodes slice, -1 when absent. All fields are exported so
// trees survive gob serialization.
type Node struct {
	NodeID       int
	ParentID     int
	LeftChild    int
	RightChild   int
	NodeType     NodeType
	SplitFeature int
	Threshold    float64
	DefaultLeft  bool
	Gain         float64
	LeafValue    float64
	LeafCount    int
}

// IsLeaf reports whether the node is terminal.
func (n *Node) IsLeaf() bool {
	return n.NodeType == LeafNode
}

// Tree is a single regression tree in the boosted ensemble. Nodes[0] is
// the root. ShrinkageRate is the learning rate applied to leaf outputs
// at prediction time.
type Tree struct {
	TreeIndex     int
	NumLeaves     int
	ShrinkageRate float64
	Nodes         []Node
}

// Predict returns the shrunken output of the tree for a single feature
// row. A NaN feature value follows the DefaultLeft direction learned
// for the split, so rows with missing cells still reach a leaf.
func (t *Tree) Predict(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}
		v := features[node.SplitFeature]
		var goLeft bool
		if math.IsNaN(v) {
			goLeft = node.DefaultLeft
		} else {
			goLeft = v <= node.Threshold
		}
		if goLeft {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0
		}
	}
}

// countLeaves returns the number of finished leaves in the tree.
func (t *Tree) countLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			n++
		}
	}
	return n
}

// maxDepth returns the depth of the deepest leaf, with a lone root
// counting as depth zero.
func (t *Tree) maxDepth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(idx, depth int) int
	walk = func(idx, depth int) int {
		if idx < 0 || idx >= len(t.Nodes) {
			return depth - 1
		}
		node := &t.Nodes[idx]
		if node.IsLeaf() {
			return depth
		}
		left := walk(node.LeftChild, depth+1)
		right := walk(node.RightChild, depth+1)
		if left > right {
			return left
		}
		return right
	}
	return walk(0, 0)
}
