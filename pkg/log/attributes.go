// Package log defines standard attribute keys for pipeline operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in tabprep. Using these standard keys enables better
// log analysis, monitoring, and debugging of data-preparation and training
// workflows.
//
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples", "cv.fold") to enable structured log filtering.
package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of model or transformer.
	// Examples: "GradientBoosting", "LinearRegression", "OneHotStrategy"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	// Examples: "gbt-001", UUID strings
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "build", "encode"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "boost.trainer", "design.builder", "pipeline.runner"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the pipeline.
	// Examples: "loading", "encoding", "training", "validation", "inspection"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
// These attributes describe the structure and properties of data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// LevelsKey indicates the number of distinct levels of a categorical column.
	LevelsKey = "data.levels"

	// MissingKey indicates the number of missing cells involved in an operation.
	MissingKey = "data.missing"

	// FingerprintKey carries the dataset content fingerprint used in cache keys.
	FingerprintKey = "data.fingerprint"

	// ColumnKey names the column an operation applies to.
	ColumnKey = "data.column"
)

// Design Matrix and Encoding Context
// These attributes describe formula resolution and categorical encoding.
const (
	// FormulaKey carries the canonical formula string driving a build.
	FormulaKey = "design.formula"

	// EncodingKey names the categorical encoding strategy in use.
	// Standard values: "numeric", "binary", "onehot"
	EncodingKey = "encoding.strategy"

	// NAModeKey names the missing-value handling mode.
	// Standard values: "zerofill", "propagate"
	NAModeKey = "encoding.na_mode"

	// MatrixColumnsKey indicates the width of a produced design matrix.
	MatrixColumnsKey = "design.columns"
)

// Cache Context
const (
	// CacheHitKey is true when a design matrix was served from cache.
	CacheHitKey = "cache.hit"

	// CacheKeyKey carries the (hashed) cache key of an entry.
	CacheKeyKey = "cache.key"

	// CacheSizeKey indicates the number of entries currently cached.
	CacheSizeKey = "cache.size"
)

// Training and Cross-Validation Context
const (
	// IterationKey records the current boosting iteration.
	IterationKey = "training.iteration"

	// RoundsKey records the configured number of boosting rounds.
	RoundsKey = "training.rounds"

	// FoldKey records the cross-validation fold index.
	FoldKey = "cv.fold"

	// FoldsKey records the configured number of cross-validation folds.
	FoldsKey = "cv.folds"

	// RunIDKey identifies one end-to-end pipeline run.
	RunIDKey = "run.id"

	// SeedKey records the random seed for reproducibility.
	SeedKey = "config.seed"

	// LearningRateKey records the shrinkage rate of the booster.
	LearningRateKey = "hyperparams.learning_rate"
)

// Performance Metrics
// These attributes capture timing and accuracy information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the training loss value.
	LossKey = "metrics.loss"

	// RMSEKey records root mean squared error.
	RMSEKey = "metrics.rmse"

	// MAEKey records mean absolute error.
	MAEKey = "metrics.mae"

	// R2ScoreKey records the R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "UNKNOWN_ENCODING"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "ValueError", "DimensionError"
	ErrorTypeKey = "error.type"

	// SuggestionKey provides a hint for resolving the issue.
	// Examples: "Check input data shape", "Register the strategy first"
	SuggestionKey = "error.suggestion"
)

// Standard attribute value constants for common operations.
const (
	// Standard operations
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationBuild        = "build"
	OperationEncode       = "encode"
	OperationScore        = "score"

	// Standard pipeline phases
	PhaseLoading    = "loading"
	PhaseEncoding   = "encoding"
	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInspection = "inspection"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorUnknownEncoding   = "UNKNOWN_ENCODING"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
