// Package encoding turns categorical levels into numeric design-matrix
// columns. Three strategies ship with the package: "numeric" emits the level
// code itself in a single column, "binary" emits k-1 indicator columns with
// the first sorted level as the dropped reference, and "onehot" emits one
// indicator column per level. Strategies register themselves under their
// name; Lookup returns a fresh unfitted instance.
package encoding

import (
	"fmt"
	"math"
	"strings"

	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// NAMode selects how a missing categorical cell encodes.
type NAMode int

const (
	// NAPropagate writes NaN into every output column so the missing value
	// stays visible downstream. This is the default.
	NAPropagate NAMode = iota
	// NAZeroFill writes zero into every output column. For binary and
	// one-hot encodings this makes a missing cell indistinguishable from
	// the reference level, which silently biases a model toward it.
	NAZeroFill
)

// String returns the mode name used in configuration files.
func (m NAMode) String() string {
	switch m {
	case NAPropagate:
		return "propagate"
	case NAZeroFill:
		return "zero_fill"
	default:
		return "unknown"
	}
}

// ParseNAMode parses a mode name. Accepted values are "propagate" and
// "zero_fill".
func ParseNAMode(s string) (NAMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "propagate", "":
		return NAPropagate, nil
	case "zero_fill", "zerofill", "zero-fill":
		return NAZeroFill, nil
	default:
		return NAPropagate, tabErrors.NewValueError("encoding.ParseNAMode",
			"unknown NA mode: "+s+" (want propagate or zero_fill)")
	}
}

// Strategy maps the level codes of one categorical column into a fixed-width
// block of design-matrix columns. A strategy must be fitted on the column's
// level table before any other method is used. Fitting on an empty table is
// allowed; binary and one-hot then report width zero and the column drops
// out of the matrix.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string
	// Fit binds the strategy to a level table.
	Fit(levels []string) error
	// Width returns the number of output columns, or 0 before Fit.
	Width() int
	// ColumnNames returns the output column names derived from the source
	// column name.
	ColumnNames(base string) ([]string, error)
	// Encode writes the representation of one level code into dst, which
	// must have length Width.
	Encode(level int, dst []float64) error
	// EncodeMissing writes the representation of a missing cell into dst
	// according to mode.
	EncodeMissing(dst []float64, mode NAMode) error
}

// fillMissing writes the missing-cell representation shared by all
// strategies.
func fillMissing(dst []float64, mode NAMode) {
	v := math.NaN()
	if mode == NAZeroFill {
		v = 0
	}
	for i := range dst {
		dst[i] = v
	}
}

// levelRangeError builds the out-of-range error shared by all strategies.
func levelRangeError(op string, level, numLevels int) error {
	return tabErrors.NewValueError(op,
		fmt.Sprintf("level index out of range: %d with %d levels", level, numLevels))
}

func checkWidth(op string, want, got int) error {
	if want != got {
		return tabErrors.NewInputShapeError(op, []int{want}, []int{got})
	}
	return nil
}

func cloneLevels(levels []string) []string {
	out := make([]string, len(levels))
	copy(out, levels)
	return out
}
