// Package constants provides centralized constant values for dockfix.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package constants

import "time"

// Application identity constants.
const (
	// AppName is the canonical application name.
	AppName = "dockfix"

	// ConfigDirName is the directory name for project and global configuration
	// (.dockfix/config.yaml in a project, ~/.dockfix/config.yaml globally).
	ConfigDirName = ".dockfix"

	// ConfigFileName is the configuration file name inside ConfigDirName.
	ConfigFileName = "config.yaml"

	// LogDirName is the directory name for log files under the global config dir.
	LogDirName = "logs"

	// LogFileName is the rotating log file name.
	LogFileName = "dockfix.log"

	// ReportFileName is the per-run repair report written next to the artifact.
	ReportFileName = "build-result.json"
)

// Build execution defaults.
const (
	// DefaultBuildCommand is the builder invocation run inside the
	// materialized artifact directory when none is configured.
	DefaultBuildCommand = "docker build -f Dockerfile ."

	// DefaultBuildTimeout is the hard wall-clock budget for a single build
	// attempt. A build exceeding it is reported as a synthetic timeout
	// failure, never as a hang.
	DefaultBuildTimeout = 15 * time.Minute

	// DefaultOutputTailBytes bounds the combined build output handed to the
	// classifier. Only the tail is kept; error text appears at the end of
	// build logs.
	DefaultOutputTailBytes = 16 * 1024

	// DefaultRepairConcurrency is how many independent artifacts may be
	// repaired in parallel by the repair command.
	DefaultRepairConcurrency = 2

	// TimeoutExitCode is the synthetic exit code reported for a timed-out
	// build, matching the shell convention for killed-by-timeout commands.
	TimeoutExitCode = 124
)

// Log rotation settings for the global log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file before deletion.
	LogMaxAgeDays = 28

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)
