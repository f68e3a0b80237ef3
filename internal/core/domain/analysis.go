package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinEmailLength is the minimum trimmed length of analyzable email text,
// in runes. Shorter inputs produce meaningless embeddings and are
// rejected before any external call.
const MinEmailLength = 8

// DefaultTopK is the number of policies retrieved when a request does
// not specify one.
const DefaultTopK = 2

// AnalysisRequest is a single classification request.
type AnalysisRequest struct {
	// EmailText is the raw email content to analyze.
	EmailText string `json:"email_text"`

	// TopK is the number of policies to retrieve. Zero means use the
	// configured default; negative values are invalid.
	TopK int `json:"top_k"`
}

// Validate checks the request before any embedding or LLM call.
func (r AnalysisRequest) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(r.EmailText)) < MinEmailLength {
		return fmt.Errorf("%w: email text must be at least %d characters",
			ErrInvalidRequest, MinEmailLength)
	}
	if r.TopK < 0 {
		return fmt.Errorf("%w: top-k must not be negative", ErrInvalidRequest)
	}
	return nil
}

// TokenUsage reports LLM token counts for one classification.
// Informational only; not used by the pipeline.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// AnalysisResult is the outcome of one classification request.
// Produced fresh per request and never persisted by the core.
type AnalysisResult struct {
	// Verdict is the machine-checkable classification.
	Verdict Verdict `json:"verdict"`

	// RiskLevel is a best-effort parse of the model's risk assessment.
	// Empty when the model did not state one.
	RiskLevel RiskLevel `json:"risk_level,omitempty"`

	// Rationale is the model's full analysis text.
	Rationale string `json:"rationale"`

	// CitedPolicies are the retrieved policies that were given to the
	// model as context, in retrieval order (most similar first).
	CitedPolicies []RetrievedPolicy `json:"cited_policies"`

	// Model is the LLM model that produced the verdict.
	Model string `json:"model"`

	// Usage is the token count metadata reported by the LLM service.
	Usage TokenUsage `json:"usage"`

	// Duration is the wall-clock time of the whole pipeline.
	Duration time.Duration `json:"duration"`
}
