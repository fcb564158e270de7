// Package pattern provides the error pattern table and classifier for the
// repair loop.
//
// A pattern table is an ordered, immutable sequence of rules mapping build
// error signatures to corrective fixes. Order encodes priority: when several
// patterns would match the same output, the earliest-indexed one wins, and
// at most one pattern fires per iteration.
//
// Import rules:
//   - CAN import: internal/artifact, internal/errors, std lib
//   - MUST NOT import: internal/engine, internal/runner, internal/cli
package pattern

import (
	"regexp"

	"github.com/dockfix/dockfix/internal/artifact"
)

// Category classifies the root cause a pattern detects.
type Category string

// Known error categories.
const (
	// CategoryEnvironment covers missing or malformed environment variables.
	CategoryEnvironment Category = "environment"

	// CategoryFilesystem covers missing files and directories.
	CategoryFilesystem Category = "filesystem"

	// CategoryMemory covers out-of-memory kills during the build.
	CategoryMemory Category = "memory"

	// CategoryInstaller covers package-manager invocation errors.
	CategoryInstaller Category = "installer"

	// CategoryNetwork covers transient network failures.
	CategoryNetwork Category = "network"

	// CategoryTimeout covers builds exceeding their wall-clock budget.
	CategoryTimeout Category = "timeout"
)

// KnownCategories returns every category the built-in table uses.
func KnownCategories() []Category {
	return []Category{
		CategoryEnvironment,
		CategoryFilesystem,
		CategoryMemory,
		CategoryInstaller,
		CategoryNetwork,
		CategoryTimeout,
	}
}

// IsKnownCategory reports whether s names a known category.
func IsKnownCategory(s string) bool {
	for _, c := range KnownCategories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Confidence grades how reliably a matcher identifies its root cause.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Captures holds named submatches extracted by a pattern's matcher.
type Captures map[string]string

// FixFunc produces a new artifact with exactly one corrective mutation
// applied. Implementations must be pure: they never mutate their input, and
// they detect prior application and no-op (returning the input unchanged)
// rather than stacking duplicate mutations. A fix that cannot be
// structurally applied returns an error wrapping errors.ErrFixApplication
// or errors.ErrAnchorNotFound.
type FixFunc func(caps Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error)

// ErrorPattern is one entry of the rule table.
type ErrorPattern struct {
	// ID uniquely identifies the pattern within a table. It is recorded in
	// the iteration log as the applied fix.
	ID string

	// Category is the error class this pattern detects.
	Category Category

	// Confidence grades the matcher's reliability.
	Confidence Confidence

	// matcher tests the combined build output. Matchers are pure and
	// side-effect free: the same input always yields the same result.
	matcher *regexp.Regexp

	// fix is the corrective mutation paired with the matcher.
	fix FixFunc
}

// NewPattern constructs an ErrorPattern from a compiled matcher and fix.
func NewPattern(id string, category Category, confidence Confidence, matcher *regexp.Regexp, fix FixFunc) *ErrorPattern {
	return &ErrorPattern{
		ID:         id,
		Category:   category,
		Confidence: confidence,
		matcher:    matcher,
		fix:        fix,
	}
}

// Match tests the pattern against raw build output, returning the named
// captures on success. Match is deterministic and never panics for any
// input, including empty and non-UTF8 text.
func (p *ErrorPattern) Match(output string) (Captures, bool) {
	if p.matcher == nil {
		return nil, false
	}
	match := p.matcher.FindStringSubmatch(output)
	if match == nil {
		return nil, false
	}
	caps := Captures{}
	for i, name := range p.matcher.SubexpNames() {
		if name == "" || i >= len(match) {
			continue
		}
		caps[name] = match[i]
	}
	return caps, true
}

// Fix returns the pattern's fix function.
func (p *ErrorPattern) Fix() FixFunc {
	return p.fix
}

// valid reports whether the pattern is structurally complete.
func (p *ErrorPattern) valid() bool {
	return p != nil && p.ID != "" && p.matcher != nil && p.fix != nil
}
