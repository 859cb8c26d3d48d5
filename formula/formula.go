// Package formula parses modeling formulas of the form "response ~ terms"
// and resolves them against a dataset.Frame. The right-hand side lists
// predictor terms joined by "+", with "." expanding to every frame column
// except the response, "- name" removing a term, and "- 1" (or "+ 0")
// dropping the intercept.
package formula

import (
	"strings"

	"github.com/tabml/tabprep/dataset"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// dotTerm marks the position of a "." expansion in the add list.
const dotTerm = "."

// Formula is a parsed modeling formula. It is bound to no particular data
// until Terms resolves it against a Frame.
type Formula struct {
	response  string
	adds      []string
	removes   []string
	intercept bool
}

// Parse builds a Formula from an expression such as "mpg ~ ." or
// "mpg ~ wt + hp - 1". The left-hand side names the response. On the right,
// terms are added with "+" and removed with "-"; "." stands for all columns
// except the response, and "1"/"0" control the intercept.
func Parse(expr string) (*Formula, error) {
	parts := strings.Split(expr, "~")
	if len(parts) != 2 {
		return nil, tabErrors.NewValueError("formula.Parse", "formula must contain exactly one '~': "+expr)
	}

	response := strings.TrimSpace(parts[0])
	if response == "" {
		return nil, tabErrors.NewValueError("formula.Parse", "missing response: "+expr)
	}
	if !isIdent(response) {
		return nil, tabErrors.NewValueError("formula.Parse", "invalid response name: "+response)
	}

	f := &Formula{response: response, intercept: true}
	rhs := strings.TrimSpace(parts[1])
	if rhs == "" {
		return nil, tabErrors.NewValueError("formula.Parse", "empty right-hand side: "+expr)
	}

	sign := 1
	segStart := 0
	first := true
	for i := 0; i <= len(rhs); i++ {
		atEnd := i == len(rhs)
		if !atEnd && rhs[i] != '+' && rhs[i] != '-' {
			continue
		}
		text := strings.TrimSpace(rhs[segStart:i])
		if text == "" {
			// only a leading sign may have nothing before it
			if !first || atEnd {
				return nil, tabErrors.NewValueError("formula.Parse", "dangling operator: "+expr)
			}
		} else if err := f.apply(sign, text); err != nil {
			return nil, err
		}
		first = false
		if !atEnd {
			sign = 1
			if rhs[i] == '-' {
				sign = -1
			}
		}
		segStart = i + 1
	}

	if len(f.adds) == 0 {
		return nil, tabErrors.NewValueError("formula.Parse", "formula has no terms: "+expr)
	}
	return f, nil
}

// MustParse is Parse for expressions known to be valid, panicking on error.
func MustParse(expr string) *Formula {
	f, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formula) apply(sign int, text string) error {
	switch text {
	case "1":
		if sign < 0 {
			f.intercept = false
		}
		return nil
	case "0":
		if sign > 0 {
			f.intercept = false
		}
		return nil
	case dotTerm:
		if sign < 0 {
			return tabErrors.NewValueError("formula.Parse", "cannot remove '.'")
		}
		if !contains(f.adds, dotTerm) {
			f.adds = append(f.adds, dotTerm)
		}
		return nil
	}

	if !isIdent(text) {
		return tabErrors.NewValueError("formula.Parse", "invalid term: "+text)
	}
	if sign > 0 {
		if !contains(f.adds, text) {
			f.adds = append(f.adds, text)
		}
	} else {
		if !contains(f.removes, text) {
			f.removes = append(f.removes, text)
		}
	}
	return nil
}

// Response returns the response column name.
func (f *Formula) Response() string { return f.response }

// HasIntercept reports whether the design matrix gets an intercept column.
func (f *Formula) HasIntercept() bool { return f.intercept }

// String renders the formula in canonical form: added terms joined by " + ",
// removals as " - name", and " - 1" when the intercept is dropped. Parsing
// the result yields an equivalent formula.
func (f *Formula) String() string {
	var b strings.Builder
	b.WriteString(f.response)
	b.WriteString(" ~ ")
	for i, name := range f.adds {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(name)
	}
	for _, name := range f.removes {
		b.WriteString(" - ")
		b.WriteString(name)
	}
	if !f.intercept {
		b.WriteString(" - 1")
	}
	return b.String()
}

// Terms resolves the formula against a frame and returns the predictor
// column names in order: explicit terms in written order, with "." expanding
// in frame column order at its position. Every explicit term and every
// removal must name a column that actually takes part, and the response may
// not appear on the right-hand side.
func (f *Formula) Terms(frame *dataset.Frame) ([]string, error) {
	if !frame.HasColumn(f.response) {
		return nil, tabErrors.NewValueError("formula.Terms", "unknown response: "+f.response)
	}

	var terms []string
	seen := make(map[string]bool)
	for _, name := range f.adds {
		if name == dotTerm {
			for _, col := range frame.Names() {
				if col != f.response && !seen[col] {
					terms = append(terms, col)
					seen[col] = true
				}
			}
			continue
		}
		if name == f.response {
			return nil, tabErrors.NewValueError("formula.Terms", "response cannot appear on the right-hand side: "+name)
		}
		if !frame.HasColumn(name) {
			return nil, tabErrors.NewValueError("formula.Terms", "unknown term: "+name)
		}
		if !seen[name] {
			terms = append(terms, name)
			seen[name] = true
		}
	}

	for _, name := range f.removes {
		if !seen[name] {
			return nil, tabErrors.NewValueError("formula.Terms", "cannot remove term not in formula: "+name)
		}
		seen[name] = false
	}

	kept := terms[:0]
	for _, name := range terms {
		if seen[name] {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return nil, tabErrors.NewValueError("formula.Terms", "no predictor terms after resolution")
	}
	return kept, nil
}

// isIdent reports whether text can name a column. Operators, tildes, and
// embedded whitespace are rejected; everything else is left to the frame
// lookup in Terms.
func isIdent(text string) bool {
	if text == "" {
		return false
	}
	return !strings.ContainsAny(text, "+-~ \t")
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
