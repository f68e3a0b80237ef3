package driven

import (
	"context"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

// PolicyIndex stores embedded policy documents and supports
// nearest-neighbour search. The index is read-only after build;
// Rebuild replaces the whole corpus atomically, so in-flight searches
// see either the old corpus or the new one, never a mix.
//
// The corpus is small enough that implementations may use exact
// brute-force search; callers depend only on this contract, so an
// approximate index can be substituted later.
type PolicyIndex interface {
	// Rebuild atomically replaces all stored entries and the manifest.
	Rebuild(ctx context.Context, entries []domain.IndexEntry, manifest domain.IndexManifest) error

	// Manifest returns the stored build manifest.
	// Returns domain.ErrIndexCorrupt if no manifest is present.
	Manifest(ctx context.Context) (domain.IndexManifest, error)

	// Search finds the k nearest policies to the query vector, ordered
	// by ascending cosine distance with ties broken by corpus position.
	// k larger than the corpus returns the whole corpus, never an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPolicy, error)

	// Count returns the number of indexed policies.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
