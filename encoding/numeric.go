package encoding

import (
	"fmt"

	"github.com/tabml/tabprep/core/model"
)

// NumericStrategy encodes a categorical column as a single column holding
// the level code itself. It is the cheapest encoding but imposes an
// artificial ordering on the levels.
type NumericStrategy struct {
	state  *model.StateManager
	levels []string
}

// NewNumericStrategy creates an unfitted numeric strategy.
func NewNumericStrategy() *NumericStrategy {
	return &NumericStrategy{state: model.NewStateManager()}
}

// Name returns "numeric".
func (s *NumericStrategy) Name() string { return "numeric" }

// Fit binds the strategy to a level table.
func (s *NumericStrategy) Fit(levels []string) error {
	s.levels = cloneLevels(levels)
	s.state.SetFitted()
	return nil
}

// Width returns 1 once fitted.
func (s *NumericStrategy) Width() int {
	if !s.state.IsFitted() {
		return 0
	}
	return 1
}

// ColumnNames returns the source column name unchanged.
func (s *NumericStrategy) ColumnNames(base string) ([]string, error) {
	if err := s.state.RequireFitted("NumericStrategy", "ColumnNames"); err != nil {
		return nil, err
	}
	return []string{base}, nil
}

// Encode writes the level code into dst[0].
func (s *NumericStrategy) Encode(level int, dst []float64) error {
	if err := s.state.RequireFitted("NumericStrategy", "Encode"); err != nil {
		return err
	}
	if err := checkWidth("encode", s.Width(), len(dst)); err != nil {
		return err
	}
	if level < 0 || level >= len(s.levels) {
		return levelRangeError("NumericStrategy.Encode", level, len(s.levels))
	}
	dst[0] = float64(level)
	return nil
}

// EncodeMissing writes the missing-cell representation into dst.
func (s *NumericStrategy) EncodeMissing(dst []float64, mode NAMode) error {
	if err := s.state.RequireFitted("NumericStrategy", "EncodeMissing"); err != nil {
		return err
	}
	if err := checkWidth("encode", s.Width(), len(dst)); err != nil {
		return err
	}
	fillMissing(dst, mode)
	return nil
}

// String returns a readable description of the strategy.
func (s *NumericStrategy) String() string {
	if !s.state.IsFitted() {
		return "NumericStrategy()"
	}
	return fmt.Sprintf("NumericStrategy(levels=%d)", len(s.levels))
}

func init() {
	MustRegister("numeric", func() Strategy { return NewNumericStrategy() })
}
