package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. Adapters wrap the
// underlying cause with fmt.Errorf("%w: ...") so callers can match the
// kind with errors.Is while keeping the detail for the user.
var (
	// ErrConfig indicates missing or invalid configuration.
	// Caught at startup; fatal to that run.
	ErrConfig = errors.New("invalid configuration")

	// ErrInvalidRequest indicates a malformed analysis request, such as
	// empty email text. Rejected before any external call is made.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrEmbedding indicates the embedding service failed or returned
	// malformed output (wrong dimensionality, NaN components).
	ErrEmbedding = errors.New("embedding failed")

	// Index load-time errors. All are user-actionable: rebuild the index.

	// ErrIndexNotFound indicates no index exists at the configured path.
	ErrIndexNotFound = errors.New("policy index not found")

	// ErrIndexCorrupt indicates the stored index is unreadable.
	ErrIndexCorrupt = errors.New("policy index corrupt")

	// ErrModelMismatch indicates the index was built with a different
	// embedding model or dimensionality than the one configured now.
	// Mixing embedding models silently corrupts similarity ranking, so
	// this is checked before every search.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// Classification-time errors. User-actionable: check network,
	// credentials, or retry.

	// ErrLLMUnavailable indicates the LLM service could not be reached
	// or returned a server-side failure.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrLLMAuth indicates the LLM credentials are missing or invalid,
	// distinguished from generic unavailability so the caller can prompt
	// for re-authentication rather than retry.
	ErrLLMAuth = errors.New("LLM authentication failed")

	// ErrLLMTimeout indicates the LLM call exceeded its deadline.
	// No partial result is ever returned alongside this error.
	ErrLLMTimeout = errors.New("LLM request timed out")
)
