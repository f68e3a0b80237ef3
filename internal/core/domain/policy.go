package domain

import (
	"time"

	"github.com/google/uuid"
)

// PolicyDocument is a single organisation security policy.
// Immutable once indexed; the corpus is only ever replaced wholesale by
// rebuilding the index.
type PolicyDocument struct {
	// ID identifies the policy. Derived deterministically from the text
	// so that rebuilding an identical corpus yields identical IDs.
	ID string `json:"id"`

	// Text is the policy rule, e.g. "RULE 1: The company CEO never
	// requests wire transfers via email."
	Text string `json:"text"`

	// Position is the zero-based position in the corpus. Used as the
	// tie-breaker when search distances are equal.
	Position int `json:"position"`
}

// NewPolicyDocument creates a policy with a deterministic ID derived
// from its text.
func NewPolicyDocument(text string, position int) PolicyDocument {
	return PolicyDocument{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(text)).String(),
		Text:     text,
		Position: position,
	}
}

// IndexEntry pairs a policy with its embedding for storage in the index.
type IndexEntry struct {
	Policy    PolicyDocument
	Embedding []float32
}

// IndexManifest identifies the embedding model an index was built with.
// Load must validate it against the currently configured embedding
// service before any search.
type IndexManifest struct {
	// EmbeddingModel is the model name used to embed the corpus.
	EmbeddingModel string `json:"embedding_model"`

	// Dimensions is the embedding vector size.
	Dimensions int `json:"dimensions"`

	// PolicyCount is the number of indexed policies.
	PolicyCount int `json:"policy_count"`

	// BuiltAt is when the index was built.
	BuiltAt time.Time `json:"built_at"`
}

// RetrievedPolicy is a single similarity search hit.
type RetrievedPolicy struct {
	// Policy is the matched policy document.
	Policy PolicyDocument `json:"policy"`

	// Distance is the cosine distance to the query (0 = identical).
	// Results are ordered by ascending distance, most similar first.
	Distance float64 `json:"distance"`
}
