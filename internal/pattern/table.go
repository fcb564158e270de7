package pattern

import (
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// Table is an ordered, immutable sequence of error patterns. It is
// constructed once at process start and may be shared freely across
// concurrent runs because it is never mutated afterwards.
type Table struct {
	patterns []*ErrorPattern
}

// NewTable constructs a table from an ordered pattern sequence.
// Construction fails fast on an empty sequence, an incomplete pattern, or a
// duplicate pattern ID.
func NewTable(patterns []*ErrorPattern) (*Table, error) {
	if len(patterns) == 0 {
		return nil, dockfixerrors.ErrEmptyTable
	}
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if !p.valid() {
			return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternInvalid, "pattern %q", patternID(p))
		}
		if seen[p.ID] {
			return nil, dockfixerrors.Wrapf(dockfixerrors.ErrDuplicatePattern, "%q", p.ID)
		}
		seen[p.ID] = true
	}
	copied := make([]*ErrorPattern, len(patterns))
	copy(copied, patterns)
	return &Table{patterns: copied}, nil
}

// patternID returns an identifier for error messages, tolerating nil.
func patternID(p *ErrorPattern) string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}

// Patterns returns a copy of the table's pattern sequence in priority order.
func (t *Table) Patterns() []*ErrorPattern {
	out := make([]*ErrorPattern, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// Len returns the number of patterns in the table.
func (t *Table) Len() int {
	return len(t.patterns)
}

// WithoutCategories returns a new table with the given categories removed,
// preserving the remaining order. Removing every pattern is a configuration
// error.
func (t *Table) WithoutCategories(categories ...Category) (*Table, error) {
	disabled := make(map[Category]bool, len(categories))
	for _, c := range categories {
		disabled[c] = true
	}
	kept := make([]*ErrorPattern, 0, len(t.patterns))
	for _, p := range t.patterns {
		if !disabled[p.Category] {
			kept = append(kept, p)
		}
	}
	return NewTable(kept)
}
