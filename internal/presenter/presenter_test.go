package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

func testResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Verdict:   domain.VerdictPhishing,
		RiskLevel: domain.RiskHigh,
		Rationale: "Violates Rule #1. The sender demands an urgent wire transfer.",
		CitedPolicies: []domain.RetrievedPolicy{
			{Policy: domain.NewPolicyDocument("RULE 1: No wire transfers by email.", 0), Distance: 0.12},
			{Policy: domain.NewPolicyDocument("RULE 2: Report urgency pressure.", 1), Distance: 0.34},
		},
		Model: "llama-3.3-70b-versatile",
		Usage: domain.TokenUsage{
			PromptTokens:     120,
			CompletionTokens: 45,
		},
		Duration: 1534 * time.Millisecond,
	}
}

func TestRender_PhishingVerdict(t *testing.T) {
	out := Render(testResult())

	assert.Contains(t, out, "PHISHING DETECTED")
	assert.Contains(t, out, "Risk: High")
	assert.Contains(t, out, "RULE 1: No wire transfers by email.")
	assert.Contains(t, out, "RULE 2: Report urgency pressure.")
	assert.Contains(t, out, "distance 0.120")
	assert.Contains(t, out, "Violates Rule #1.")
	assert.Contains(t, out, "llama-3.3-70b-versatile")
	assert.Contains(t, out, "120+45 tokens")
	assert.Contains(t, out, "1.534s")
}

func TestRender_SafeVerdict(t *testing.T) {
	result := testResult()
	result.Verdict = domain.VerdictSafe
	result.RiskLevel = domain.RiskLow

	out := Render(result)

	assert.Contains(t, out, "SAFE")
	assert.Contains(t, out, "Risk: Low")
}

func TestRender_UnknownVerdictWithoutRisk(t *testing.T) {
	result := testResult()
	result.Verdict = domain.VerdictUnknown
	result.RiskLevel = ""

	out := Render(result)

	assert.Contains(t, out, "VERDICT UNCLEAR")
	assert.NotContains(t, out, "Risk:")
}

func TestRender_NoPolicies(t *testing.T) {
	result := testResult()
	result.CitedPolicies = nil

	out := Render(result)

	assert.NotContains(t, out, "Relevant company policies")
	assert.Contains(t, out, "Analysis")
}
