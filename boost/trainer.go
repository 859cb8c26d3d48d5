package boost

import (
	"math"
	"sort"
	"time"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
	"github.com/tabml/tabprep/pkg/log"
)

const leafDenominatorEpsilon = 1e-10

// Trainer fits a gradient boosted tree ensemble at a fixed number of
// rounds. Each round fits one regression tree to the current gradients
// and hessians, then folds the shrunken tree into the cached raw
// scores.
//
// Split finding is exact: candidate thresholds come from sorted unique
// feature values, scored with prefix sums of gradient and hessian.
// Rows whose feature value is missing are assigned to whichever side
// of the split yields the higher gain, and the winning direction is
// stored on the node so prediction routes NaN the same way.
type Trainer struct {
	params    TrainingParams
	objective ObjectiveFunction
	logger    log.Logger

	ds        *Dataset
	y         []float64
	scores    []float64
	gradients []float64
	hessians  []float64
	rowBuf    []float64
	trees     []Tree
	initScore float64
	sawSplit  bool
	fitted    bool
}

// NewTrainer returns a trainer for the given parameter set. Parameters
// are validated at Fit time.
func NewTrainer(params TrainingParams) *Trainer {
	return &Trainer{
		params: params,
		logger: log.GetLoggerWithName("boost.trainer"),
	}
}

// Fit trains the ensemble on the dataset. The sequence of trees is
// deterministic for a given dataset and parameter set. If no round
// ever finds a split that clears the gain and leaf-size thresholds,
// the model degenerates to the objective's baseline score and a
// ConvergenceWarning is emitted through the warning handler.
func (t *Trainer) Fit(ds *Dataset) error {
	if err := t.params.Validate(); err != nil {
		return tabErrors.Wrap(err, "boost.Fit")
	}
	if ds == nil || ds.NumRows() == 0 {
		return tabErrors.Wrap(tabErrors.ErrEmptyData, "boost.Fit")
	}
	objective, err := CreateObjective(t.params.Objective, &t.params)
	if err != nil {
		return tabErrors.Wrap(err, "boost.Fit")
	}
	t.objective = objective
	t.ds = ds
	t.initialize()

	start := time.Now()
	if t.params.Verbosity > 0 {
		t.logger.Info("training started",
			log.SamplesKey, ds.NumRows(),
			log.FeaturesKey, ds.NumFeatures(),
			log.RoundsKey, t.params.NumIterations,
			log.LearningRateKey, t.params.LearningRate,
			log.ModelNameKey, t.objective.Name(),
		)
	}

	for iter := 0; iter < t.params.NumIterations; iter++ {
		t.calculateGradients()
		tree := t.buildTree(iter)
		t.trees = append(t.trees, tree)
		t.updateScores(&tree)

		if t.params.Verbosity > 0 && (iter+1)%10 == 0 {
			t.logger.Debug("boosting round",
				log.IterationKey, iter+1,
				log.LossKey, t.trainLoss(),
				"leaves", tree.NumLeaves,
			)
		}
	}

	if !t.sawSplit {
		tabErrors.Warn(tabErrors.NewConvergenceWarning("boost", t.params.NumIterations,
			"no split cleared the gain and leaf-size thresholds; the model predicts the baseline score"))
	}
	if t.params.Verbosity > 0 {
		t.logger.Info("training finished",
			log.DurationMsKey, time.Since(start).Milliseconds(),
			"trees", len(t.trees),
			log.LossKey, t.trainLoss(),
		)
	}
	t.fitted = true
	return nil
}

// GetModel returns the fitted ensemble, or nil before Fit succeeds.
func (t *Trainer) GetModel() *Model {
	if !t.fitted {
		return nil
	}
	names := make([]string, len(t.ds.FeatureNames()))
	copy(names, t.ds.FeatureNames())
	return &Model{
		Objective:     t.objective.Name(),
		NumIteration:  len(t.trees),
		LearningRate:  t.params.LearningRate,
		NumLeaves:     t.params.NumLeaves,
		MaxDepth:      t.params.MaxDepth,
		NumFeatures:   t.ds.NumFeatures(),
		FeatureNames:  names,
		InitScore:     t.initScore,
		Trees:         t.trees,
		RandomSeed:    t.params.Seed,
		Deterministic: t.params.Deterministic,
	}
}

func (t *Trainer) initialize() {
	n := t.ds.NumRows()
	t.y = t.ds.Labels()
	t.initScore = t.objective.GetInitScore(t.y)
	t.scores = make([]float64, n)
	for i := range t.scores {
		t.scores[i] = t.initScore
	}
	t.gradients = make([]float64, n)
	t.hessians = make([]float64, n)
	t.rowBuf = make([]float64, t.ds.NumFeatures())
	// Fresh slice so a model returned by an earlier Fit keeps its trees.
	t.trees = nil
	t.sawSplit = false
	t.fitted = false
}

func (t *Trainer) calculateGradients() {
	for i := range t.y {
		t.gradients[i] = t.objective.CalculateGradient(t.scores[i], t.y[i])
		t.hessians[i] = t.objective.CalculateHessian(t.scores[i], t.y[i])
	}
}

// updateScores folds the new tree into the cached raw scores so the
// next round's gradients see the full ensemble without re-walking
// every earlier tree.
func (t *Trainer) updateScores(tree *Tree) {
	for i := range t.scores {
		t.ds.Row(i, t.rowBuf)
		t.scores[i] += tree.Predict(t.rowBuf)
	}
}

func (t *Trainer) trainLoss() float64 {
	total := 0.0
	for i := range t.y {
		total += t.objective.CalculateLoss(t.scores[i], t.y[i])
	}
	return total / float64(len(t.y))
}

func (t *Trainer) buildTree(treeIndex int) Tree {
	tree := Tree{
		TreeIndex:     treeIndex,
		ShrinkageRate: t.params.LearningRate,
	}
	indices := make([]int, t.ds.NumRows())
	for i := range indices {
		indices[i] = i
	}
	t.buildNode(&tree, indices, 0, -1)
	tree.NumLeaves = tree.countLeaves()
	return tree
}

// buildNode grows the subtree over the given rows and returns its node
// index within the tree.
func (t *Trainer) buildNode(tree *Tree, indices []int, depth, parentID int) int {
	atDepthLimit := t.params.MaxDepth > 0 && depth >= t.params.MaxDepth
	atLeafLimit := tree.countLeaves() >= t.params.NumLeaves-1
	if len(indices) < 2*t.params.MinDataInLeaf || atDepthLimit || atLeafLimit {
		return t.addLeaf(tree, indices, parentID)
	}

	split := t.findBestSplit(indices)
	if split.feature < 0 || split.gain <= t.params.MinGainToSplit {
		return t.addLeaf(tree, indices, parentID)
	}
	t.sawSplit = true

	nodeID := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeID,
		ParentID:     parentID,
		LeftChild:    -1,
		RightChild:   -1,
		NodeType:     NumericalNode,
		SplitFeature: split.feature,
		Threshold:    split.threshold,
		DefaultLeft:  split.defaultLeft,
		Gain:         split.gain,
	})

	left, right := t.partition(indices, split)
	tree.Nodes[nodeID].LeftChild = t.buildNode(tree, left, depth+1, nodeID)
	tree.Nodes[nodeID].RightChild = t.buildNode(tree, right, depth+1, nodeID)
	return nodeID
}

func (t *Trainer) addLeaf(tree *Tree, indices []int, parentID int) int {
	var sumGrad, sumHess float64
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}
	nodeID := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, Node{
		NodeID:     nodeID,
		ParentID:   parentID,
		LeftChild:  -1,
		RightChild: -1,
		NodeType:   LeafNode,
		LeafValue:  t.leafValue(sumGrad, sumHess),
		LeafCount:  len(indices),
	})
	return nodeID
}

func (t *Trainer) leafValue(sumGrad, sumHess float64) float64 {
	return -sumGrad / (sumHess + t.params.Lambda + leafDenominatorEpsilon)
}

// splitInfo describes the best split found for a node. feature is -1
// when no candidate cleared the constraints.
type splitInfo struct {
	feature     int
	threshold   float64
	gain        float64
	defaultLeft bool
}

func (t *Trainer) findBestSplit(indices []int) splitInfo {
	var totalGrad, totalHess float64
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
	}
	best := splitInfo{feature: -1, gain: math.Inf(-1)}
	for feature := 0; feature < t.ds.NumFeatures(); feature++ {
		candidate := t.findBestSplitForFeature(indices, feature, totalGrad, totalHess)
		if candidate.feature >= 0 && candidate.gain > best.gain {
			best = candidate
		}
	}
	return best
}

// gradHessValue carries one observed sample through the sorted sweep.
type gradHessValue struct {
	value float64
	grad  float64
	hess  float64
}

func (t *Trainer) findBestSplitForFeature(indices []int, feature int, totalGrad, totalHess float64) splitInfo {
	best := splitInfo{feature: -1, gain: math.Inf(-1)}

	observed := make([]gradHessValue, 0, len(indices))
	var missGrad, missHess float64
	missCount := 0
	for _, idx := range indices {
		v := t.ds.Features().At(idx, feature)
		if math.IsNaN(v) {
			missGrad += t.gradients[idx]
			missHess += t.hessians[idx]
			missCount++
			continue
		}
		observed = append(observed, gradHessValue{value: v, grad: t.gradients[idx], hess: t.hessians[idx]})
	}
	if len(observed) < 2 {
		return best
	}
	sort.Slice(observed, func(i, j int) bool { return observed[i].value < observed[j].value })

	obsGrad := totalGrad - missGrad
	obsHess := totalHess - missHess

	var leftGrad, leftHess float64
	leftCount := 0
	for i := 0; i < len(observed)-1; i++ {
		leftGrad += observed[i].grad
		leftHess += observed[i].hess
		leftCount++
		if observed[i].value == observed[i+1].value {
			continue
		}
		rightCount := len(observed) - leftCount
		rightGrad := obsGrad - leftGrad
		rightHess := obsHess - leftHess
		threshold := (observed[i].value + observed[i+1].value) / 2

		if missCount == 0 {
			if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
				continue
			}
			gain := t.splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess)
			if gain > best.gain {
				best = splitInfo{
					feature:   feature,
					threshold: threshold,
					gain:      gain,
					// Unseen NaN at prediction time follows the heavier side.
					defaultLeft: leftHess >= rightHess,
				}
			}
			continue
		}

		// Missing rows join the side that yields the higher gain.
		if leftCount+missCount >= t.params.MinDataInLeaf && rightCount >= t.params.MinDataInLeaf {
			gain := t.splitGain(leftGrad+missGrad, leftHess+missHess, rightGrad, rightHess, totalGrad, totalHess)
			if gain > best.gain {
				best = splitInfo{feature: feature, threshold: threshold, gain: gain, defaultLeft: true}
			}
		}
		if leftCount >= t.params.MinDataInLeaf && rightCount+missCount >= t.params.MinDataInLeaf {
			gain := t.splitGain(leftGrad, leftHess, rightGrad+missGrad, rightHess+missHess, totalGrad, totalHess)
			if gain > best.gain {
				best = splitInfo{feature: feature, threshold: threshold, gain: gain, defaultLeft: false}
			}
		}
	}
	return best
}

func (t *Trainer) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda
	left := leftGrad * leftGrad / (leftHess + lambda + leafDenominatorEpsilon)
	right := rightGrad * rightGrad / (rightHess + lambda + leafDenominatorEpsilon)
	parent := totalGrad * totalGrad / (totalHess + lambda + leafDenominatorEpsilon)
	return 0.5 * (left + right - parent)
}

func (t *Trainer) partition(indices []int, split splitInfo) (left, right []int) {
	left = make([]int, 0, len(indices))
	right = make([]int, 0, len(indices))
	for _, idx := range indices {
		v := t.ds.Features().At(idx, split.feature)
		var goLeft bool
		if math.IsNaN(v) {
			goLeft = split.defaultLeft
		} else {
			goLeft = v <= split.threshold
		}
		if goLeft {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}
