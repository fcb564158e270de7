package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dockfix/dockfix/internal/domain"
)

// Output presents repair results and status messages to the terminal.
// TTYOutput renders styled text for humans; JSONOutput emits machine-readable
// reports and suppresses decoration.
type Output interface {
	// Run reports the outcome of one repair run. The report is the
	// serializable form of the result; text output ignores it and JSON
	// output emits it verbatim.
	Run(path string, result *domain.RunResult, rep *domain.BuildReport) error
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// NewOutput creates the appropriate output for the requested format.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

// TTYOutput renders styled, human-readable repair output.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a new TTYOutput.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
	}
}

// Run prints the artifact path followed by the run summary: the outcome line
// and one line per iteration.
func (o *TTYOutput) Run(path string, result *domain.RunResult, _ *domain.BuildReport) error {
	o.Info(path)
	_, err := fmt.Fprint(o.w, o.runSummary(result))
	return err
}

// Success prints a success message.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints an error message.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
}

// Warning prints a warning message.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints an informational message.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// JSON outputs a value as formatted JSON.
func (o *TTYOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput emits machine-readable output. Status messages are suppressed
// so stdout stays parseable; only errors and reports are written.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a new JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Run emits the run report as JSON. The path is recorded in the report's
// run metadata by the caller, so only the report itself is written.
func (o *JSONOutput) Run(_ string, _ *domain.RunResult, rep *domain.BuildReport) error {
	return encodeJSON(o.w, rep)
}

// Success is suppressed for JSON output.
func (o *JSONOutput) Success(_ string) {}

// Error outputs the error as JSON.
func (o *JSONOutput) Error(err error) {
	_, _ = fmt.Fprintf(o.w, "{\"error\": %q}\n", err.Error())
}

// Warning is suppressed for JSON output.
func (o *JSONOutput) Warning(_ string) {}

// Info is suppressed for JSON output.
func (o *JSONOutput) Info(_ string) {}

// JSON outputs a value as formatted JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// encodeJSON writes v as indented JSON.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
