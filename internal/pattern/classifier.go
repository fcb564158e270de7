package pattern

// ClassificationResult is the outcome of classifying build output against a
// table: either a single matched pattern with its captures, or unmatched.
type ClassificationResult struct {
	// Matched reports whether any pattern fired.
	Matched bool

	// Pattern is the winning pattern when Matched is true.
	Pattern *ErrorPattern

	// Captures holds the winning pattern's named submatches.
	Captures Captures
}

// Classify finds the highest-priority pattern matching rawOutput.
//
// Classification is total: it never panics, and malformed or empty output
// classifies as unmatched rather than crashing, because it runs inside a
// retry loop that must always progress. The table is iterated in priority
// order and the first match wins; this is a hard tie-break rule, so when two
// patterns both match, the earlier-indexed one is always chosen.
func Classify(rawOutput string, table *Table) ClassificationResult {
	if table == nil || rawOutput == "" {
		return ClassificationResult{}
	}
	for _, p := range table.patterns {
		if caps, ok := p.Match(rawOutput); ok {
			return ClassificationResult{Matched: true, Pattern: p, Captures: caps}
		}
	}
	return ClassificationResult{}
}
