package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dockfix/dockfix/internal/artifact"
	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

// transientRetryMarker is the comment inserted for transient failures whose
// only remediation is retrying the build. Its presence makes a second
// application a no-op.
const transientRetryMarker = "# dockfix: transient failure observed, retrying build"

// nodeMemoryLine raises the Node.js heap ceiling for OOM-killed builds.
const nodeMemoryLine = `ENV NODE_OPTIONS="--max-old-space-size=4096"`

// Built-in matchers, compiled once at init. Order of use is defined by
// Default(); earlier entries there take priority.
var (
	matchNpmCiLockfile = regexp.MustCompile("(?i)`npm ci`[^\n]*can only install|can only install with an existing package-lock")
	matchAptMissingPkg = regexp.MustCompile(`(?m)E: Unable to locate package (?P<pkg>\S+)`)
	matchEnvNotSet     = regexp.MustCompile(`(?P<name>[A-Z][A-Z0-9_]+)[^\n]{0,60}?\bis not set\b`)
	matchMissingPath   = regexp.MustCompile(`(?P<path>/[A-Za-z0-9_./-]+)[^\n]{0,80}?[Nn]o such file or directory`)
	matchOOMKilled     = regexp.MustCompile(`(?i)exit code:?\s*137|signal: killed|\bkilled\b`)
	matchBuildTimeout  = regexp.MustCompile(`(?i)dockfix: build timed out|context deadline exceeded|deadline_exceeded`)
	matchNetworkFlake  = regexp.MustCompile(`(?i)temporary failure in name resolution|connection reset by peer|tls handshake timeout|i/o timeout|could not resolve host`)
)

// Default returns the built-in pattern table in priority order. More
// specific signatures come first so the generic transient patterns only fire
// when nothing sharper matches.
func Default() *Table {
	table, err := NewTable([]*ErrorPattern{
		NewPattern("npm-ci-lockfile", CategoryInstaller, ConfidenceHigh, matchNpmCiLockfile, fixSwapNpmCi),
		NewPattern("apt-missing-package", CategoryInstaller, ConfidenceHigh, matchAptMissingPkg, fixEnsureAptUpdate),
		NewPattern("env-var-missing", CategoryEnvironment, ConfidenceHigh, matchEnvNotSet, fixInsertEnvPlaceholder),
		NewPattern("missing-directory", CategoryFilesystem, ConfidenceMedium, matchMissingPath, fixInsertMkdir),
		NewPattern("oom-killed", CategoryMemory, ConfidenceMedium, matchOOMKilled, fixRaiseNodeMemory),
		NewPattern("build-timeout", CategoryTimeout, ConfidenceLow, matchBuildTimeout, fixMarkTransientRetry),
		NewPattern("network-flake", CategoryNetwork, ConfidenceLow, matchNetworkFlake, fixMarkTransientRetry),
	})
	if err != nil {
		// The built-in table is static; a construction error here is a
		// programming bug, not a runtime condition.
		panic(err)
	}
	return table
}

// fixInsertEnvPlaceholder declares an empty placeholder for a missing
// environment variable so the build can proceed and the operator can fill
// in the real value.
func fixInsertEnvPlaceholder(caps Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	name := strings.TrimSpace(caps["name"])
	if name == "" {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, "no variable name captured")
	}
	declared := "ENV " + name + "="
	for _, line := range art.Lines() {
		if strings.HasPrefix(strings.TrimSpace(line), declared) {
			return art, nil
		}
	}
	return art.InsertAfterStage(fmt.Sprintf(`ENV %s=""`, name))
}

// fixInsertMkdir creates the directory a COPY or RUN step expected to exist.
func fixInsertMkdir(caps Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	path := strings.TrimSpace(caps["path"])
	if path == "" {
		return nil, dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, "no path captured")
	}
	line := "RUN mkdir -p " + path
	if art.ContainsLine(line) {
		return art, nil
	}
	return art.InsertAfterStage(line)
}

// fixRaiseNodeMemory raises the Node.js heap limit after an OOM kill.
// Builds that already pin NODE_OPTIONS are left alone.
func fixRaiseNodeMemory(_ Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	for _, line := range art.Lines() {
		if strings.Contains(line, "NODE_OPTIONS") {
			return art, nil
		}
	}
	return art.InsertAfterStage(nodeMemoryLine)
}

// fixSwapNpmCi replaces npm ci with npm install in RUN instructions, for
// projects that ship no package-lock.json.
func fixSwapNpmCi(_ Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	lines := art.Lines()
	swapped := false
	for i, line := range lines {
		if strings.Contains(line, "npm ci") {
			lines[i] = strings.ReplaceAll(line, "npm ci", "npm install")
			swapped = true
		}
	}
	if swapped {
		return art.WithLines(lines), nil
	}
	// Already swapped in an earlier iteration.
	for _, line := range lines {
		if strings.Contains(line, "npm install") {
			return art, nil
		}
	}
	return nil, dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, "no npm invocation found")
}

// fixEnsureAptUpdate prefixes apt-get install steps with apt-get update so
// the package index exists before installation.
func fixEnsureAptUpdate(_ Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	lines := art.Lines()
	changed := false
	present := false
	for i, line := range lines {
		if !strings.Contains(line, "apt-get install") {
			continue
		}
		present = true
		if strings.Contains(line, "apt-get update") {
			continue
		}
		lines[i] = strings.Replace(line, "apt-get install", "apt-get update && apt-get install", 1)
		changed = true
	}
	if changed {
		return art.WithLines(lines), nil
	}
	if present {
		return art, nil
	}
	return nil, dockfixerrors.Wrap(dockfixerrors.ErrFixApplication, "no apt-get install instruction found")
}

// fixMarkTransientRetry records that a transient failure was observed. The
// retry itself is the remediation; the marker keeps the iteration's mutation
// visible in the artifact and makes reapplication a no-op.
func fixMarkTransientRetry(_ Captures, art *artifact.BuildArtifact) (*artifact.BuildArtifact, error) {
	if art.ContainsLine(transientRetryMarker) {
		return art, nil
	}
	return art.InsertAfterStage(transientRetryMarker)
}
