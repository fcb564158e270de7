package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dockfix/dockfix/internal/constants"
	"github.com/dockfix/dockfix/internal/domain"
)

// runSummary renders the outcome line followed by one line per iteration.
func (o *TTYOutput) runSummary(result *domain.RunResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder

	outcomeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(OutcomeColors()[result.Outcome])
	b.WriteString(outcomeStyle.Render(fmt.Sprintf("%s %s", OutcomeIcon(result.Outcome), outcomeLabel(result.Outcome))))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  (%d/%d iterations, tier %s)", result.TotalIterations, result.MaxIterations, result.Tier)))
	b.WriteString("\n")

	for _, iter := range result.Iterations {
		b.WriteString(o.iterationLine(iter))
		b.WriteString("\n")
	}

	return b.String()
}

// iterationLine renders one iteration as "  N. icon status detail".
func (o *TTYOutput) iterationLine(iter domain.Iteration) string {
	detail := ""
	switch iter.Status {
	case constants.IterationFixedRetry:
		detail = fmt.Sprintf("%s (%s) fix applied, artifact v%d", iter.PatternID, iter.Category, iter.ArtifactVersion)
	case constants.IterationUnmatched:
		detail = "no pattern matched"
	case constants.IterationFixFailed:
		detail = fmt.Sprintf("%s fix could not be applied", iter.PatternID)
	case constants.IterationSuccess:
		detail = "build succeeded"
	}

	line := fmt.Sprintf("  %d. %s %s", iter.Index+1, IterationIcon(iter.Status), detail)
	if iter.Duration > 0 {
		line += StyleDim.Render(fmt.Sprintf("  [%.1fs]", iter.Duration.Seconds()))
	}
	return line
}

// outcomeLabel returns the display label for a run state.
func outcomeLabel(state constants.RunState) string {
	switch state {
	case constants.RunStateSuccess:
		return "build repaired"
	case constants.RunStatePartialSuccess:
		return "iteration budget exhausted, best artifact retained"
	case constants.RunStateFailed:
		return "build could not be repaired"
	case constants.RunStateRunning:
		return "run in progress"
	}
	return state.String()
}
