package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tabml/tabprep/boost"
	"github.com/tabml/tabprep/cache"
	"github.com/tabml/tabprep/dataset"
	"github.com/tabml/tabprep/design"
	"github.com/tabml/tabprep/encoding"
	"github.com/tabml/tabprep/formula"
	"github.com/tabml/tabprep/inspect"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
	"github.com/tabml/tabprep/pkg/log"
)

// Runner executes configured runs. A runner can be reused; its matrix
// cache then carries over, so repeated runs on the same frame and
// formula skip the encoding work.
type Runner struct {
	cfg    Config
	frame  *dataset.Frame
	cache  *cache.MatrixCache
	logger log.Logger
}

// RunnerOption configures a Runner beyond its Config.
type RunnerOption func(*Runner)

// WithFrame supplies an in-memory frame instead of Config.DataPath.
func WithFrame(f *dataset.Frame) RunnerOption {
	return func(r *Runner) { r.frame = f }
}

// WithCache shares an existing matrix cache across runners.
func WithCache(c *cache.MatrixCache) RunnerOption {
	return func(r *Runner) { r.cache = c }
}

// NewRunner validates the configuration and prepares a runner.
func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, tabErrors.Wrap(err, "pipeline config")
	}
	r := &Runner{
		cfg:    cfg,
		logger: log.GetLoggerWithName("pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil && cfg.CacheSize > 0 {
		c, err := cache.New(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = c
	}
	return r, nil
}

// Result collects everything one run produced. Model, Residuals and
// Importance are nil unless the configuration asked for a retrain.
type Result struct {
	RunID       string
	Formula     string
	Encoding    string
	NAMode      string
	Rounds      int
	Fingerprint string
	Rows        int
	Features    int

	CacheHit   bool
	CacheStats cache.Stats

	CV         *boost.CVResult
	Model      *boost.Model
	Residuals  *inspect.ResidualSummary
	Importance []boost.FeatureImportance

	ResidualPlot   string
	ImportancePlot string

	Elapsed time.Duration
}

// Report assembles the plain-text report of this run.
func (res *Result) Report() *inspect.Report {
	return &inspect.Report{
		Formula:        res.Formula,
		Encoding:       res.Encoding,
		NAMode:         res.NAMode,
		Rounds:         res.Rounds,
		CV:             res.CV,
		ImportanceType: "gain",
		Importance:     res.Importance,
		Residuals:      res.Residuals,
	}
}

// Run executes the configured flow: resolve the frame, build the
// design matrix through the encoding strategy (cached when enabled),
// wrap it for the engine, cross-validate, and optionally retrain on
// the full data. The first failing step aborts the run.
func (r *Runner) Run() (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:    uuid.NewString(),
		Encoding: r.cfg.Encoding,
		Rounds:   r.cfg.Training.NumIterations,
	}

	err := tabErrors.SafeExecute("pipeline run", func() error {
		return r.run(res)
	})
	if err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	r.logger.Info("run finished",
		log.RunIDKey, res.RunID,
		log.FormulaKey, res.Formula,
		log.EncodingKey, res.Encoding,
		log.NAModeKey, res.NAMode,
		log.FingerprintKey, res.Fingerprint,
		log.CacheHitKey, res.CacheHit,
		log.RMSEKey, res.CV.GetMeanScore(),
		log.DurationMsKey, res.Elapsed.Milliseconds(),
	)
	return res, nil
}

func (r *Runner) run(res *Result) error {
	frame, err := r.resolveFrame()
	if err != nil {
		return err
	}

	f, err := formula.Parse(r.cfg.Formula)
	if err != nil {
		return tabErrors.Wrap(err, "parse formula")
	}
	naMode, err := encoding.ParseNAMode(r.cfg.NAMode)
	if err != nil {
		return err
	}
	builder, err := design.NewBuilder(r.cfg.Encoding, naMode)
	if err != nil {
		return err
	}

	m, err := r.buildMatrix(res, frame, f, builder)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return tabErrors.Wrap(err, "validate design matrix")
	}

	ds, err := boost.FromDesign(m)
	if err != nil {
		return err
	}

	res.Formula = f.String()
	res.NAMode = naMode.String()
	res.Fingerprint = ds.SourceFingerprint()
	res.Rows = ds.NumRows()
	res.Features = ds.NumFeatures()

	kf := boost.NewKFold(r.cfg.Folds, r.cfg.Shuffle, uint64(r.cfg.Training.Seed))
	cv, err := boost.CrossValidate(ds, r.cfg.Training, kf)
	if err != nil {
		return tabErrors.Wrap(err, "cross-validate")
	}
	res.CV = cv

	if !r.cfg.Retrain {
		return nil
	}
	return r.retrain(res, ds)
}

// resolveFrame returns the runner's frame, loading Config.DataPath when
// no frame was supplied, and applies the configured column drops.
func (r *Runner) resolveFrame() (*dataset.Frame, error) {
	frame := r.frame
	if frame == nil {
		if r.cfg.DataPath == "" {
			return nil, tabErrors.NewValidationError("data", "a data path or an in-memory frame is required", r.cfg.DataPath)
		}
		loaded, err := dataset.LoadFile(r.cfg.DataPath, dataset.WithCategorical(r.cfg.Categorical...))
		if err != nil {
			return nil, tabErrors.Wrap(err, "load data")
		}
		frame = loaded
	} else if len(r.cfg.Categorical) > 0 {
		converted, err := frame.AsCategorical(r.cfg.Categorical...)
		if err != nil {
			return nil, tabErrors.Wrap(err, "convert categorical columns")
		}
		frame = converted
	}

	if len(r.cfg.Drop) > 0 {
		dropped, err := frame.Drop(r.cfg.Drop...)
		if err != nil {
			return nil, tabErrors.Wrap(err, "drop columns")
		}
		frame = dropped
	}
	return frame, nil
}

func (r *Runner) buildMatrix(res *Result, frame *dataset.Frame, f *formula.Formula, builder *design.Builder) (*design.Matrix, error) {
	if r.cache == nil {
		m, err := builder.Build(frame, f)
		if err != nil {
			return nil, tabErrors.Wrap(err, "build design matrix")
		}
		return m, nil
	}

	m, hit, err := r.cache.GetOrBuild(frame, f, builder)
	if err != nil {
		return nil, tabErrors.Wrap(err, "build design matrix")
	}
	res.CacheHit = hit
	res.CacheStats = r.cache.Stats()
	return m, nil
}

func (r *Runner) retrain(res *Result, ds *boost.Dataset) error {
	trainer := boost.NewTrainer(r.cfg.Training)
	if err := trainer.Fit(ds); err != nil {
		return tabErrors.Wrap(err, "retrain on full data")
	}
	res.Model = trainer.GetModel()

	residuals, err := boost.Residuals(res.Model, ds)
	if err != nil {
		return err
	}
	summary, err := inspect.Summarize(residuals)
	if err != nil {
		return err
	}
	res.Residuals = summary

	ranked, err := res.Model.RankedFeatures("gain")
	if err != nil {
		return err
	}
	res.Importance = ranked

	if r.cfg.PlotDir == "" {
		return nil
	}
	return r.savePlots(res, ds, residuals)
}

// savePlots writes the residual scatter and importance bar chart of
// the retrained model into Config.PlotDir.
func (r *Runner) savePlots(res *Result, ds *boost.Dataset, residuals []float64) error {
	if err := os.MkdirAll(r.cfg.PlotDir, 0o755); err != nil {
		return tabErrors.Wrap(err, "create plot directory")
	}
	labels := ds.Labels()
	fitted := make([]float64, len(labels))
	for i := range labels {
		fitted[i] = labels[i] - residuals[i]
	}

	residualPath := filepath.Join(r.cfg.PlotDir, "residuals.png")
	if err := inspect.SaveResidualPlot(fitted, residuals, residualPath); err != nil {
		return tabErrors.Wrap(err, "save residual plot")
	}
	res.ResidualPlot = residualPath

	importancePath := filepath.Join(r.cfg.PlotDir, "importance.png")
	if err := inspect.SaveImportancePlot(res.Importance, importancePath); err != nil {
		return tabErrors.Wrap(err, "save importance plot")
	}
	res.ImportancePlot = importancePath
	return nil
}
