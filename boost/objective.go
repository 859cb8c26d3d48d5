package boost

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// ObjectiveFunction supplies the per-sample derivatives that drive
// boosting. Gradients and hessians are evaluated at the current raw
// score, before any output transform.
type ObjectiveFunction interface {
	// CalculateGradient returns the first derivative of the loss with
	// respect to the raw score.
	CalculateGradient(prediction, target float64) float64

	// CalculateHessian returns the second derivative of the loss with
	// respect to the raw score.
	CalculateHessian(prediction, target float64) float64

	// CalculateLoss returns the loss for a single sample.
	CalculateLoss(prediction, target float64) float64

	// GetInitScore returns the constant raw score the ensemble starts
	// from.
	GetInitScore(targets []float64) float64

	// Name returns the canonical objective name.
	Name() string
}

// L2Objective implements squared error loss.
type L2Objective struct{}

// NewL2Objective returns the squared error objective.
func NewL2Objective() *L2Objective {
	return &L2Objective{}
}

func (o *L2Objective) CalculateGradient(prediction, target float64) float64 {
	return prediction - target
}

func (o *L2Objective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *L2Objective) CalculateLoss(prediction, target float64) float64 {
	diff := prediction - target
	return 0.5 * diff * diff
}

func (o *L2Objective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	return sum / float64(len(targets))
}

func (o *L2Objective) Name() string { return "regression" }

// L1Objective implements absolute error loss. The gradient is the sign
// of the residual and the hessian is held at one, the usual surrogate
// for a loss with no curvature.
type L1Objective struct {
	epsilon float64
}

// NewL1Objective returns the absolute error objective.
func NewL1Objective() *L1Objective {
	return &L1Objective{epsilon: 1e-7}
}

func (o *L1Objective) CalculateGradient(prediction, target float64) float64 {
	diff := prediction - target
	if math.Abs(diff) < o.epsilon {
		return 0.0
	}
	if diff > 0 {
		return 1.0
	}
	return -1.0
}

func (o *L1Objective) CalculateHessian(prediction, target float64) float64 {
	return 1.0
}

func (o *L1Objective) CalculateLoss(prediction, target float64) float64 {
	return math.Abs(prediction - target)
}

func (o *L1Objective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	return median(targets)
}

func (o *L1Objective) Name() string { return "regression_l1" }

// HuberObjective blends L2 loss inside delta with L1 loss outside it.
type HuberObjective struct {
	delta float64
}

// NewHuberObjective returns a huber objective with the given delta.
// Non-positive deltas fall back to 1.0.
func NewHuberObjective(delta float64) *HuberObjective {
	if delta <= 0 {
		delta = 1.0
	}
	return &HuberObjective{delta: delta}
}

func (o *HuberObjective) CalculateGradient(prediction, target float64) float64 {
	diff := prediction - target
	if math.Abs(diff) <= o.delta {
		return diff
	}
	if diff > 0 {
		return o.delta
	}
	return -o.delta
}

func (o *HuberObjective) CalculateHessian(prediction, target float64) float64 {
	if math.Abs(prediction-target) <= o.delta {
		return 1.0
	}
	return 1e-7
}

func (o *HuberObjective) CalculateLoss(prediction, target float64) float64 {
	diff := prediction - target
	absDiff := math.Abs(diff)
	if absDiff <= o.delta {
		return 0.5 * diff * diff
	}
	return o.delta * (absDiff - 0.5*o.delta)
}

func (o *HuberObjective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	return median(targets)
}

func (o *HuberObjective) Name() string { return "huber" }

// LogisticObjective implements binary log loss on raw scores. Targets
// must be 0 or 1; predictions pass through a sigmoid at inference
// time.
type LogisticObjective struct{}

// NewLogisticObjective returns the binary log loss objective.
func NewLogisticObjective() *LogisticObjective {
	return &LogisticObjective{}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + tabErrors.StabilizeExp(-x))
}

func (o *LogisticObjective) CalculateGradient(prediction, target float64) float64 {
	return sigmoid(prediction) - target
}

func (o *LogisticObjective) CalculateHessian(prediction, target float64) float64 {
	p := sigmoid(prediction)
	return tabErrors.ClipValue(p*(1.0-p), 1e-16, 0.25)
}

func (o *LogisticObjective) CalculateLoss(prediction, target float64) float64 {
	p := sigmoid(prediction)
	return -(target*tabErrors.StabilizeLog(p) + (1.0-target)*tabErrors.StabilizeLog(1.0-p))
}

func (o *LogisticObjective) GetInitScore(targets []float64) float64 {
	if len(targets) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, t := range targets {
		sum += t
	}
	p := tabErrors.ClipValue(sum/float64(len(targets)), 1e-15, 1.0-1e-15)
	return math.Log(p / (1.0 - p))
}

func (o *LogisticObjective) Name() string { return "binary" }

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// CreateObjective resolves an objective name to its implementation.
// Names are matched case-insensitively and accept the common aliases
// ("l2", "mse", "mae", "logistic", ...).
func CreateObjective(name string, params *TrainingParams) (ObjectiveFunction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "regression", "regression_l2", "l2", "mse", "mean_squared_error":
		return NewL2Objective(), nil
	case "regression_l1", "l1", "mae", "mean_absolute_error":
		return NewL1Objective(), nil
	case "huber":
		delta := 1.0
		if params != nil && params.HuberDelta > 0 {
			delta = params.HuberDelta
		}
		return NewHuberObjective(delta), nil
	case "binary", "binary_logloss", "logistic":
		return NewLogisticObjective(), nil
	default:
		return nil, tabErrors.NewValueError("boost.CreateObjective",
			fmt.Sprintf("unknown objective: %s", name))
	}
}
