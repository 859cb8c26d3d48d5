package boost

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/tabml/tabprep/metrics"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
	"github.com/tabml/tabprep/pkg/log"
)

// Fold holds the row indices of one cross-validation split.
type Fold struct {
	Train []int
	Test  []int
}

// KFold produces k disjoint test folds covering every row exactly
// once. With Shuffle set, rows are permuted by a PCG source seeded
// from Seed, so splits are reproducible.
type KFold struct {
	NumFolds int
	Shuffle  bool
	Seed     uint64
}

// NewKFold returns a k-fold splitter.
func NewKFold(numFolds int, shuffle bool, seed uint64) *KFold {
	return &KFold{NumFolds: numFolds, Shuffle: shuffle, Seed: seed}
}

// Split partitions n rows into NumFolds folds. The first n mod k folds
// receive one extra test row, so fold sizes differ by at most one.
func (k *KFold) Split(n int) ([]Fold, error) {
	if k.NumFolds < 2 {
		return nil, tabErrors.NewValidationError("num_folds", "must be at least 2", k.NumFolds)
	}
	if k.NumFolds > n {
		return nil, tabErrors.NewValidationError("num_folds",
			fmt.Sprintf("cannot exceed the number of rows (%d)", n), k.NumFolds)
	}

	var order []int
	if k.Shuffle {
		rng := rand.New(rand.NewPCG(k.Seed, k.Seed))
		order = rng.Perm(n)
	} else {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}

	folds := make([]Fold, k.NumFolds)
	baseSize := n / k.NumFolds
	remainder := n % k.NumFolds
	offset := 0
	for f := 0; f < k.NumFolds; f++ {
		size := baseSize
		if f < remainder {
			size++
		}
		test := make([]int, size)
		copy(test, order[offset:offset+size])
		train := make([]int, 0, n-size)
		train = append(train, order[:offset]...)
		train = append(train, order[offset+size:]...)
		folds[f] = Fold{Train: train, Test: test}
		offset += size
	}
	return folds, nil
}

// CVResult aggregates per-fold scores from CrossValidate. TestScores
// holds the headline metric, RMSE on the held-out fold.
type CVResult struct {
	TrainScores []float64
	TestScores  []float64
	TestMAE     []float64
	TestR2      []float64
	Models      []*Model
}

// GetMeanScore returns the mean held-out RMSE across folds.
func (r *CVResult) GetMeanScore() float64 {
	if len(r.TestScores) == 0 {
		return 0
	}
	return stat.Mean(r.TestScores, nil)
}

// GetStdScore returns the sample standard deviation of the held-out
// RMSE across folds, zero when fewer than two folds exist.
func (r *CVResult) GetStdScore() float64 {
	if len(r.TestScores) < 2 {
		return 0
	}
	return stat.StdDev(r.TestScores, nil)
}

// Summary formats the headline cross-validation score.
func (r *CVResult) Summary() string {
	return fmt.Sprintf("rmse %.4f ± %.4f over %d folds",
		r.GetMeanScore(), r.GetStdScore(), len(r.TestScores))
}

// CrossValidate trains one model per fold at the fixed round count in
// params and scores it on the held-out rows. Folds run concurrently;
// results land in fold order, so the outcome is independent of
// goroutine scheduling. The dataset is read-only throughout.
func CrossValidate(ds *Dataset, params TrainingParams, kf *KFold) (*CVResult, error) {
	if ds == nil || ds.NumRows() == 0 {
		return nil, tabErrors.Wrap(tabErrors.ErrEmptyData, "boost.CrossValidate")
	}
	if kf == nil {
		return nil, tabErrors.NewValueError("boost.CrossValidate", "k-fold splitter is nil")
	}
	folds, err := kf.Split(ds.NumRows())
	if err != nil {
		return nil, tabErrors.Wrap(err, "boost.CrossValidate")
	}

	result := &CVResult{
		TrainScores: make([]float64, len(folds)),
		TestScores:  make([]float64, len(folds)),
		TestMAE:     make([]float64, len(folds)),
		TestR2:      make([]float64, len(folds)),
		Models:      make([]*Model, len(folds)),
	}
	logger := log.GetLoggerWithName("boost.cv")
	start := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, len(folds))
	for f := range folds {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			trainDS, err := ds.Subset(folds[f].Train)
			if err != nil {
				errs[f] = tabErrors.Wrapf(err, "fold %d", f)
				return
			}
			testDS, err := ds.Subset(folds[f].Test)
			if err != nil {
				errs[f] = tabErrors.Wrapf(err, "fold %d", f)
				return
			}

			trainer := NewTrainer(params)
			if err := trainer.Fit(trainDS); err != nil {
				errs[f] = tabErrors.Wrapf(err, "fold %d", f)
				return
			}
			m := trainer.GetModel()
			result.Models[f] = m

			trainRMSE, _, _, err := scoreOn(m, trainDS)
			if err != nil {
				errs[f] = tabErrors.Wrapf(err, "fold %d train score", f)
				return
			}
			testRMSE, testMAE, testR2, err := scoreOn(m, testDS)
			if err != nil {
				errs[f] = tabErrors.Wrapf(err, "fold %d test score", f)
				return
			}
			result.TrainScores[f] = trainRMSE
			result.TestScores[f] = testRMSE
			result.TestMAE[f] = testMAE
			result.TestR2[f] = testR2
		}(f)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	logger.Info("cross-validation finished",
		log.FoldsKey, len(folds),
		log.RMSEKey, result.GetMeanScore(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// scoreOn predicts a dataset and returns RMSE, MAE and R².
func scoreOn(m *Model, ds *Dataset) (rmse, mae, r2 float64, err error) {
	preds, err := m.Predict(ds.Features())
	if err != nil {
		return 0, 0, 0, err
	}
	labels := ds.Labels()
	yTrue := mat.NewVecDense(len(labels), labels)
	yPred := mat.VecDenseCopyOf(preds.ColView(0))

	if rmse, err = metrics.RMSE(yTrue, yPred); err != nil {
		return 0, 0, 0, err
	}
	if mae, err = metrics.MAE(yTrue, yPred); err != nil {
		return 0, 0, 0, err
	}
	if r2, err = metrics.R2Score(yTrue, yPred); err != nil {
		return 0, 0, 0, err
	}
	return rmse, mae, r2, nil
}
