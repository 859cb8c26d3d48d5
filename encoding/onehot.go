package encoding

import (
	"fmt"

	"github.com/tabml/tabprep/core/model"
)

// OneHotStrategy encodes a categorical column as one indicator column per
// level. Unlike BinaryStrategy no reference is dropped, so the columns sum
// to one for every observed level and the block is collinear with an
// intercept.
type OneHotStrategy struct {
	state  *model.StateManager
	levels []string
}

// NewOneHotStrategy creates an unfitted one-hot strategy.
func NewOneHotStrategy() *OneHotStrategy {
	return &OneHotStrategy{state: model.NewStateManager()}
}

// Name returns "onehot".
func (s *OneHotStrategy) Name() string { return "onehot" }

// Fit binds the strategy to a level table.
func (s *OneHotStrategy) Fit(levels []string) error {
	s.levels = cloneLevels(levels)
	s.state.SetFitted()
	return nil
}

// Width returns k once fitted.
func (s *OneHotStrategy) Width() int {
	if !s.state.IsFitted() {
		return 0
	}
	return len(s.levels)
}

// ColumnNames returns base_level for every level, in level table order.
func (s *OneHotStrategy) ColumnNames(base string) ([]string, error) {
	if err := s.state.RequireFitted("OneHotStrategy", "ColumnNames"); err != nil {
		return nil, err
	}
	names := make([]string, len(s.levels))
	for i, level := range s.levels {
		names[i] = base + "_" + level
	}
	return names, nil
}

// Encode writes the indicator row for one level code.
func (s *OneHotStrategy) Encode(level int, dst []float64) error {
	if err := s.state.RequireFitted("OneHotStrategy", "Encode"); err != nil {
		return err
	}
	if err := checkWidth("encode", s.Width(), len(dst)); err != nil {
		return err
	}
	if level < 0 || level >= len(s.levels) {
		return levelRangeError("OneHotStrategy.Encode", level, len(s.levels))
	}
	for i := range dst {
		dst[i] = 0
	}
	dst[level] = 1
	return nil
}

// EncodeMissing writes the missing-cell representation into dst. Under
// zero-fill every indicator reads zero, a row no observed level produces.
func (s *OneHotStrategy) EncodeMissing(dst []float64, mode NAMode) error {
	if err := s.state.RequireFitted("OneHotStrategy", "EncodeMissing"); err != nil {
		return err
	}
	if err := checkWidth("encode", s.Width(), len(dst)); err != nil {
		return err
	}
	fillMissing(dst, mode)
	return nil
}

// String returns a readable description of the strategy.
func (s *OneHotStrategy) String() string {
	if !s.state.IsFitted() {
		return "OneHotStrategy()"
	}
	return fmt.Sprintf("OneHotStrategy(levels=%d)", len(s.levels))
}

func init() {
	MustRegister("onehot", func() Strategy { return NewOneHotStrategy() })
}
