// Package artifact provides the build artifact under repair.
//
// A BuildArtifact is an immutable snapshot of a Dockerfile plus optional
// sidecar files. Every mutation returns a new value with a bumped version
// number, so earlier versions stay intact and a partial result is always
// available after a failed run.
//
// Import rules:
//   - CAN import: internal/errors, std lib
//   - MUST NOT import: internal/engine, internal/cli
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// DockerfileName is the file name the Dockerfile is materialized under.
const DockerfileName = "Dockerfile"

// BuildArtifact is an immutable snapshot of the files under repair.
// The zero value is not usable; construct with New or Load.
type BuildArtifact struct {
	lines    []string
	sidecars map[string]string
	version  int
}

// New creates a version-zero artifact from Dockerfile content.
func New(dockerfile string) *BuildArtifact {
	content := strings.ReplaceAll(dockerfile, "\r\n", "\n")
	return &BuildArtifact{
		lines:    strings.Split(strings.TrimRight(content, "\n"), "\n"),
		sidecars: map[string]string{},
	}
}

// Load reads a Dockerfile from disk and returns a version-zero artifact.
func Load(path string) (*BuildArtifact, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is caller-provided by design
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dockfixerrors.Wrapf(dockfixerrors.ErrArtifactNotFound, "%s", path)
		}
		return nil, dockfixerrors.Wrapf(err, "failed to read artifact %s", path)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, dockfixerrors.Wrapf(dockfixerrors.ErrArtifactEmpty, "%s", path)
	}
	return New(string(data)), nil
}

// Version returns the artifact's version counter. Versions start at zero and
// increase by one per mutation.
func (a *BuildArtifact) Version() int {
	return a.version
}

// Lines returns a copy of the Dockerfile lines.
func (a *BuildArtifact) Lines() []string {
	out := make([]string, len(a.lines))
	copy(out, a.lines)
	return out
}

// Dockerfile returns the Dockerfile content with a trailing newline.
func (a *BuildArtifact) Dockerfile() string {
	return strings.Join(a.lines, "\n") + "\n"
}

// Sidecar returns the named sidecar file content.
func (a *BuildArtifact) Sidecar(name string) (string, bool) {
	content, ok := a.sidecars[name]
	return content, ok
}

// SidecarNames returns the sorted names of all sidecar files.
func (a *BuildArtifact) SidecarNames() []string {
	names := make([]string, 0, len(a.sidecars))
	for name := range a.sidecars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clone returns a deep copy with the version bumped by one.
func (a *BuildArtifact) clone() *BuildArtifact {
	lines := make([]string, len(a.lines))
	copy(lines, a.lines)
	sidecars := make(map[string]string, len(a.sidecars))
	for k, v := range a.sidecars {
		sidecars[k] = v
	}
	return &BuildArtifact{lines: lines, sidecars: sidecars, version: a.version + 1}
}

// Touch returns a new version with identical content. Fixes that detect
// prior application use this so the iteration still produces a distinct
// artifact version without changing content.
func (a *BuildArtifact) Touch() *BuildArtifact {
	return a.clone()
}

// WithLines returns a new version with the Dockerfile replaced.
func (a *BuildArtifact) WithLines(lines []string) *BuildArtifact {
	next := a.clone()
	next.lines = make([]string, len(lines))
	copy(next.lines, lines)
	return next
}

// WithSidecar returns a new version with the named sidecar set.
func (a *BuildArtifact) WithSidecar(name, content string) *BuildArtifact {
	next := a.clone()
	next.sidecars[name] = content
	return next
}

// ContainsLine reports whether any Dockerfile line equals s after trimming
// surrounding whitespace.
func (a *BuildArtifact) ContainsLine(s string) bool {
	want := strings.TrimSpace(s)
	for _, line := range a.lines {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

// InsertAfterStage returns a new version with line inserted directly after
// the first FROM instruction. Returns ErrAnchorNotFound when the artifact
// has no FROM line.
func (a *BuildArtifact) InsertAfterStage(line string) (*BuildArtifact, error) {
	idx := -1
	for i, l := range a.lines {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(l)), "FROM ") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrAnchorNotFound, "no FROM instruction")
	}
	next := a.clone()
	lines := make([]string, 0, len(next.lines)+1)
	lines = append(lines, next.lines[:idx+1]...)
	lines = append(lines, line)
	lines = append(lines, next.lines[idx+1:]...)
	next.lines = lines
	return next, nil
}

// Normalized returns the Dockerfile content with trimmed lines and blank
// lines collapsed. Two artifacts are considered equivalent when their
// normalized content matches, which is the equivalence used by the
// fix-idempotency contract.
func (a *BuildArtifact) Normalized() string {
	var sb strings.Builder
	for _, line := range a.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		sb.WriteString(trimmed)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Digest returns a stable hex digest of the artifact content, covering the
// Dockerfile and all sidecars.
func (a *BuildArtifact) Digest() string {
	h := sha256.New()
	_, _ = h.Write([]byte(a.Dockerfile()))
	for _, name := range a.SidecarNames() {
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(a.sidecars[name]))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Materialize writes the Dockerfile and all sidecars into dir so the builder
// collaborator can consume them. The directory must already exist.
func (a *BuildArtifact) Materialize(dir string) error {
	path := filepath.Join(dir, DockerfileName)
	if err := os.WriteFile(path, []byte(a.Dockerfile()), 0o600); err != nil {
		return dockfixerrors.Wrap(err, "failed to write Dockerfile")
	}
	for _, name := range a.SidecarNames() {
		sidecarPath := filepath.Join(dir, filepath.Clean(name))
		if err := os.MkdirAll(filepath.Dir(sidecarPath), 0o750); err != nil {
			return dockfixerrors.Wrapf(err, "failed to create sidecar dir for %s", name)
		}
		if err := os.WriteFile(sidecarPath, []byte(a.sidecars[name]), 0o600); err != nil {
			return dockfixerrors.Wrapf(err, "failed to write sidecar %s", name)
		}
	}
	return nil
}

// Save writes the Dockerfile content to path.
func (a *BuildArtifact) Save(path string) error {
	if err := os.WriteFile(path, []byte(a.Dockerfile()), 0o600); err != nil {
		return dockfixerrors.Wrapf(err, "failed to save artifact %s", path)
	}
	return nil
}
