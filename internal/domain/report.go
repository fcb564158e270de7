package domain

// BuildReport is the structure saved to build-result.json after a run.
// Field names follow the established report schema so existing tooling can
// consume the file.
type BuildReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// Outcome is the terminal run state (success, partial_success, failed).
	Outcome string `json:"outcome"`
	// Tier is the complexity tier the run used.
	Tier string `json:"tier"`
	// TotalIterations is how many loop passes were made.
	TotalIterations int `json:"total_iterations"`
	// MaxIterationsAllowed is the tier's iteration budget.
	MaxIterationsAllowed int `json:"max_iterations_allowed"`
	// Iterations is the per-pass log in order.
	Iterations []IterationReport `json:"iterations"`
	// FinalArtifactDigest is the content digest of the last artifact version.
	FinalArtifactDigest string `json:"final_artifact_digest,omitempty"`
	// Timestamp is when the report was created.
	Timestamp string `json:"timestamp"`
}

// IterationReport represents a single iteration in the report.
type IterationReport struct {
	Index           int     `json:"index"`
	Status          string  `json:"status"`
	ErrorCategory   string  `json:"error_category,omitempty"`
	ErrorExcerpt    string  `json:"error_excerpt,omitempty"`
	FixApplied      string  `json:"fix_applied,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}
