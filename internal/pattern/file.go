package pattern

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dockfix/dockfix/internal/artifact"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// filePatterns is the on-disk schema for user-supplied patterns.
type filePatterns struct {
	Patterns []filePattern `yaml:"patterns"`
}

// filePattern is one user-supplied rule. Capture references in Line, Find,
// and Replace use ${name} and are substituted from the matcher's named
// groups before the fix is applied.
type filePattern struct {
	ID         string `yaml:"id"`
	Category   string `yaml:"category"`
	Confidence string `yaml:"confidence"`
	Match      string `yaml:"match"`
	Fix        string `yaml:"fix"`
	Line       string `yaml:"line,omitempty"`
	Find       string `yaml:"find,omitempty"`
	Replace    string `yaml:"replace,omitempty"`
}

// Supported fix kinds for user-supplied patterns.
const (
	fixKindInsertLine = "insert_line"
	fixKindReplace    = "replace"
)

// LoadFile parses a user pattern file and returns its rules in file order.
// User patterns are loaded once at process start; the resulting table stays
// immutable afterwards.
func LoadFile(path string) ([]*ErrorPattern, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		return nil, dockfixerrors.Wrapf(err, "failed to read pattern file %s", path)
	}

	var spec filePatterns
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrPatternFile, err.Error())
	}

	patterns := make([]*ErrorPattern, 0, len(spec.Patterns))
	for _, fp := range spec.Patterns {
		p, err := fp.compile()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// compile turns a file entry into an ErrorPattern, validating as it goes.
func (fp filePattern) compile() (*ErrorPattern, error) {
	if fp.ID == "" {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrPatternFile, "pattern missing id")
	}
	if !IsKnownCategory(fp.Category) {
		return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternFile, "pattern %q: unknown category %q", fp.ID, fp.Category)
	}

	matcher, err := regexp.Compile(fp.Match)
	if err != nil {
		return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternFile, "pattern %q: bad matcher: %v", fp.ID, err)
	}

	confidence := Confidence(fp.Confidence)
	switch confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	case "":
		confidence = ConfidenceLow
	default:
		return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternFile, "pattern %q: unknown confidence %q", fp.ID, fp.Confidence)
	}

	fix, err := fp.compileFix()
	if err != nil {
		return nil, err
	}

	return NewPattern(fp.ID, Category(fp.Category), confidence, matcher, fix), nil
}

// compileFix builds the fix function for a file entry.
func (fp filePattern) compileFix() (FixFunc, error) {
	switch fp.Fix {
	case fixKindInsertLine:
		if fp.Line == "" {
			return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternFile, "pattern %q: insert_line requires line", fp.ID)
		}
		line := fp.Line
		return func(caps Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
			expanded := expandCaptures(line, caps)
			if art.ContainsLine(expanded) {
				return art, nil
			}
			return art.InsertAfterStage(expanded)
		}, nil

	case fixKindReplace:
		if fp.Find == "" {
			return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternFile, "pattern %q: replace requires find", fp.ID)
		}
		find, replace := fp.Find, fp.Replace
		return func(caps Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
			from := expandCaptures(find, caps)
			to := expandCaptures(replace, caps)
			lines := art.Lines()
			changed := false
			for i, l := range lines {
				if strings.Contains(l, from) {
					lines[i] = strings.ReplaceAll(l, from, to)
					changed = true
				}
			}
			if !changed {
				// Either already replaced or never present; treat as a no-op
				// only when the replacement is visible.
				for _, l := range lines {
					if to != "" && strings.Contains(l, to) {
						return art, nil
					}
				}
				return nil, dockfixerrors.Wrapf(dockfixerrors.ErrFixApplication, "no line contains %q", from)
			}
			return art.WithLines(lines), nil
		}, nil

	default:
		return nil, dockfixerrors.Wrapf(dockfixerrors.ErrPatternFile, "pattern %q: unknown fix kind %q", fp.ID, fp.Fix)
	}
}

// expandCaptures substitutes ${name} references with captured values.
// Unknown references expand to the empty string.
func expandCaptures(s string, caps Captures) string {
	return os.Expand(s, func(name string) string {
		return caps[name]
	})
}
