package encoding

import (
	"fmt"

	"github.com/tabml/tabprep/core/model"
)

// BinaryStrategy encodes a categorical column as k-1 indicator columns. The
// lexicographically smallest level is the dropped reference: it encodes as
// the all-zero row, and every other level sets exactly one indicator. This
// is the treatment contrast used by linear-model design matrices.
type BinaryStrategy struct {
	state    *model.StateManager
	levels   []string
	refIndex int
}

// NewBinaryStrategy creates an unfitted binary strategy.
func NewBinaryStrategy() *BinaryStrategy {
	return &BinaryStrategy{state: model.NewStateManager()}
}

// Name returns "binary".
func (s *BinaryStrategy) Name() string { return "binary" }

// Fit binds the strategy to a level table and picks the reference level.
func (s *BinaryStrategy) Fit(levels []string) error {
	s.levels = cloneLevels(levels)
	s.refIndex = 0
	for i, level := range s.levels {
		if level < s.levels[s.refIndex] {
			s.refIndex = i
		}
	}
	s.state.SetFitted()
	return nil
}

// Width returns k-1 once fitted, or 0 when the table has at most one level.
func (s *BinaryStrategy) Width() int {
	if !s.state.IsFitted() || len(s.levels) == 0 {
		return 0
	}
	return len(s.levels) - 1
}

// Reference returns the dropped reference level, or "" before Fit or for an
// empty table.
func (s *BinaryStrategy) Reference() string {
	if !s.state.IsFitted() || len(s.levels) == 0 {
		return ""
	}
	return s.levels[s.refIndex]
}

// ColumnNames returns base_level for every non-reference level, in level
// table order.
func (s *BinaryStrategy) ColumnNames(base string) ([]string, error) {
	if err := s.state.RequireFitted("BinaryStrategy", "ColumnNames"); err != nil {
		return nil, err
	}
	names := make([]string, 0, s.Width())
	for i, level := range s.levels {
		if i != s.refIndex {
			names = append(names, base+"_"+level)
		}
	}
	return names, nil
}

// Encode writes the indicator row for one level code: all zeros for the
// reference, a single one otherwise.
func (s *BinaryStrategy) Encode(level int, dst []float64) error {
	if err := s.state.RequireFitted("BinaryStrategy", "Encode"); err != nil {
		return err
	}
	if err := checkWidth("encode", s.Width(), len(dst)); err != nil {
		return err
	}
	if level < 0 || level >= len(s.levels) {
		return levelRangeError("BinaryStrategy.Encode", level, len(s.levels))
	}
	for i := range dst {
		dst[i] = 0
	}
	if level != s.refIndex {
		dst[s.column(level)] = 1
	}
	return nil
}

// EncodeMissing writes the missing-cell representation into dst. Under
// zero-fill the row equals the reference level's row.
func (s *BinaryStrategy) EncodeMissing(dst []float64, mode NAMode) error {
	if err := s.state.RequireFitted("BinaryStrategy", "EncodeMissing"); err != nil {
		return err
	}
	if err := checkWidth("encode", s.Width(), len(dst)); err != nil {
		return err
	}
	fillMissing(dst, mode)
	return nil
}

// column maps a non-reference level code to its indicator column.
func (s *BinaryStrategy) column(level int) int {
	if level < s.refIndex {
		return level
	}
	return level - 1
}

// String returns a readable description of the strategy.
func (s *BinaryStrategy) String() string {
	if !s.state.IsFitted() {
		return "BinaryStrategy()"
	}
	return fmt.Sprintf("BinaryStrategy(levels=%d, reference=%q)", len(s.levels), s.Reference())
}

func init() {
	MustRegister("binary", func() Strategy { return NewBinaryStrategy() })
}
