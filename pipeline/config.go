// Package pipeline runs the full preparation-and-training flow from a
// single configuration: load a frame, build the design matrix through
// the configured encoding strategy, cross-validate a boosted model and
// optionally retrain on the full data for residual and importance
// reports. The CLI and the YAML-driven experiment runner both sit on
// this package.
package pipeline

import (
	"github.com/tabml/tabprep/boost"
	"github.com/tabml/tabprep/encoding"
	"github.com/tabml/tabprep/pkg/config"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Config describes one end-to-end run. The zero value is not usable;
// start from DefaultConfig and override, or load a YAML file with
// LoadConfig.
type Config struct {
	// DataPath locates the CSV input. Leave empty when the runner is
	// given a frame directly.
	DataPath string `yaml:"data"`

	// Drop lists columns removed before the formula is resolved,
	// typically a row-identifier column.
	Drop []string `yaml:"drop"`

	// Categorical forces the named columns to categorical when the CSV
	// parses them as numeric (level-coded factors such as gear counts).
	Categorical []string `yaml:"categorical"`

	// Formula is the model formula, e.g. "mpg ~ . - 1".
	Formula string `yaml:"formula"`

	// Encoding names the categorical encoding strategy.
	Encoding string `yaml:"encoding"`

	// NAMode selects missing-value handling: "propagate" or "zero_fill".
	NAMode string `yaml:"na_mode"`

	// Folds is the number of cross-validation folds.
	Folds int `yaml:"folds"`

	// Shuffle randomizes the fold assignment using the training seed.
	Shuffle bool `yaml:"shuffle"`

	// Retrain fits a final model on the full data after
	// cross-validation and attaches residuals and importances to the
	// result.
	Retrain bool `yaml:"retrain"`

	// CacheSize bounds the design-matrix cache. Zero disables caching.
	CacheSize int `yaml:"cache_size"`

	// PlotDir, when set, receives residual and importance plots of the
	// retrained model.
	PlotDir string `yaml:"plot_dir"`

	// Training holds the boosting hyperparameters.
	Training boost.TrainingParams `yaml:"training"`
}

// DefaultConfig returns the standard run configuration: numeric
// encoding, NaN propagation, 5 shuffled folds, a full retrain and a
// 16-entry matrix cache.
func DefaultConfig() Config {
	return Config{
		Encoding:  "numeric",
		NAMode:    encoding.NAPropagate.String(),
		Folds:     5,
		Shuffle:   true,
		Retrain:   true,
		CacheSize: 16,
		Training:  boost.DefaultParams(),
	}
}

// LoadConfig reads a YAML configuration file over the defaults, so a
// file only needs the keys it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.LoadYAML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envOverlay mirrors the environment-adjustable subset of Config.
// Pointer fields distinguish "unset" from a zero value.
type envOverlay struct {
	DataPath     *string  `env:"TABPREP_DATA"`
	Formula      *string  `env:"TABPREP_FORMULA"`
	Encoding     *string  `env:"TABPREP_ENCODING"`
	NAMode       *string  `env:"TABPREP_NA_MODE"`
	Folds        *int     `env:"TABPREP_FOLDS"`
	Rounds       *int     `env:"TABPREP_ROUNDS"`
	LearningRate *float64 `env:"TABPREP_LEARNING_RATE"`
	Seed         *int64   `env:"TABPREP_SEED"`
	CacheSize    *int     `env:"TABPREP_CACHE_SIZE"`
	PlotDir      *string  `env:"TABPREP_PLOT_DIR"`
}

// FromEnv overlays TABPREP_-prefixed environment variables onto the
// configuration. Unset variables leave the corresponding field alone.
func (c *Config) FromEnv() error {
	var overlay envOverlay
	if err := config.ParseEnv(&overlay); err != nil {
		return err
	}
	if overlay.DataPath != nil {
		c.DataPath = *overlay.DataPath
	}
	if overlay.Formula != nil {
		c.Formula = *overlay.Formula
	}
	if overlay.Encoding != nil {
		c.Encoding = *overlay.Encoding
	}
	if overlay.NAMode != nil {
		c.NAMode = *overlay.NAMode
	}
	if overlay.Folds != nil {
		c.Folds = *overlay.Folds
	}
	if overlay.Rounds != nil {
		c.Training.NumIterations = *overlay.Rounds
	}
	if overlay.LearningRate != nil {
		c.Training.LearningRate = *overlay.LearningRate
	}
	if overlay.Seed != nil {
		c.Training.Seed = *overlay.Seed
	}
	if overlay.CacheSize != nil {
		c.CacheSize = *overlay.CacheSize
	}
	if overlay.PlotDir != nil {
		c.PlotDir = *overlay.PlotDir
	}
	return nil
}

// Validate checks the configuration without touching the data source.
func (c *Config) Validate() error {
	if c.Formula == "" {
		return tabErrors.NewValidationError("formula", "is required", c.Formula)
	}
	if c.Folds < 2 {
		return tabErrors.NewValidationError("folds", "must be at least 2", c.Folds)
	}
	if c.CacheSize < 0 {
		return tabErrors.NewValidationError("cache_size", "must be non-negative", c.CacheSize)
	}
	if _, err := encoding.Lookup(c.Encoding); err != nil {
		return err
	}
	if _, err := encoding.ParseNAMode(c.NAMode); err != nil {
		return err
	}
	return c.Training.Validate()
}
