// Package presenter renders analysis results for the terminal.
// Presentation only; the verdict and rationale come from the core
// pipeline unchanged.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

// Colour palette.
var (
	safeColour     = lipgloss.Color("#A6E3A1") // Green
	phishingColour = lipgloss.Color("#F38BA8") // Red
	unknownColour  = lipgloss.Color("#F9E2AF") // Yellow
	mutedColour    = lipgloss.Color("#6C7086") // Medium gray
	headerColour   = lipgloss.Color("#06B6D4") // Cyan
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(headerColour)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColour)

	verdictBase = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder())
)

// Render formats an analysis result for a human reader.
func Render(result *domain.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(renderVerdict(result))
	b.WriteString("\n\n")

	if len(result.CitedPolicies) > 0 {
		b.WriteString(headerStyle.Render("Relevant company policies"))
		b.WriteString("\n")
		for i, cited := range result.CitedPolicies {
			b.WriteString(fmt.Sprintf("  %d. %s %s\n",
				i+1,
				cited.Policy.Text,
				mutedStyle.Render(fmt.Sprintf("(distance %.3f)", cited.Distance))))
		}
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render("Analysis"))
	b.WriteString("\n")
	b.WriteString(result.Rationale)
	b.WriteString("\n\n")

	b.WriteString(mutedStyle.Render(fmt.Sprintf("model %s · %d+%d tokens · %s",
		result.Model,
		result.Usage.PromptTokens,
		result.Usage.CompletionTokens,
		result.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	return b.String()
}

// renderVerdict renders the verdict banner with risk level when known.
func renderVerdict(result *domain.AnalysisResult) string {
	var colour lipgloss.Color
	switch result.Verdict {
	case domain.VerdictSafe:
		colour = safeColour
	case domain.VerdictPhishing:
		colour = phishingColour
	default:
		colour = unknownColour
	}

	text := result.Verdict.Description()
	if result.RiskLevel.IsValid() {
		text += " · Risk: " + result.RiskLevel.Description()
	}

	return verdictBase.Foreground(colour).BorderForeground(colour).Render(text)
}
