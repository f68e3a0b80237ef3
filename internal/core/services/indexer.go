package services

import (
	"context"
	"fmt"
	"time"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driven"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driving"
	"github.com/phishguard-labs/phishguard-cli/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// validationQuery is a smoke-test search run after every build.
// An empty result set is reported as a warning, not a failure.
const validationQuery = "CEO wire transfer request"

// IndexService builds the policy index from a corpus.
type IndexService struct {
	index    driven.PolicyIndex
	embedder driven.EmbeddingService
}

// NewIndexService creates an index builder.
func NewIndexService(index driven.PolicyIndex, embedder driven.EmbeddingService) *IndexService {
	return &IndexService{index: index, embedder: embedder}
}

// Build embeds every policy and atomically replaces the stored index.
// The manifest records the embedding model and dimensionality so later
// loads can detect a model switch.
func (s *IndexService) Build(ctx context.Context, policies []domain.PolicyDocument) (*driving.BuildResult, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("%w: policy corpus is empty", domain.ErrInvalidRequest)
	}

	logger.Section("Index Build")
	logger.Info("Embedding %d policies with %s", len(policies), s.embedder.ModelName())

	texts := make([]string, len(policies))
	for i, p := range policies {
		texts[i] = p.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(policies) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d policies",
			domain.ErrEmbedding, len(vectors), len(policies))
	}

	entries := make([]domain.IndexEntry, len(policies))
	for i, vector := range vectors {
		if err := ValidateEmbedding(vector, s.embedder.Dimensions()); err != nil {
			return nil, fmt.Errorf("policy %d: %w", i+1, err)
		}
		entries[i] = domain.IndexEntry{Policy: policies[i], Embedding: vector}
	}

	manifest := domain.IndexManifest{
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     s.embedder.Dimensions(),
		PolicyCount:    len(policies),
		BuiltAt:        time.Now().UTC(),
	}

	if err := s.index.Rebuild(ctx, entries, manifest); err != nil {
		return nil, fmt.Errorf("storing index: %w", err)
	}
	logger.Info("Index built: %d policies, %d dimensions", manifest.PolicyCount, manifest.Dimensions)

	hits, err := s.validate(ctx)
	if err != nil {
		// The index is already written; a failed smoke test is worth a
		// warning but should not undo the build.
		logger.Warn("Post-build validation failed: %v", err)
	}

	return &driving.BuildResult{Manifest: manifest, ValidationHits: hits}, nil
}

// Verify checks the stored index against the configured embedding
// service and returns its manifest.
func (s *IndexService) Verify(ctx context.Context) (domain.IndexManifest, error) {
	if err := VerifyManifest(ctx, s.index, s.embedder); err != nil {
		return domain.IndexManifest{}, err
	}
	return s.index.Manifest(ctx)
}

// validate runs a fixed test query against the fresh index.
func (s *IndexService) validate(ctx context.Context) (int, error) {
	logger.Debug("Validating index with test query %q", validationQuery)
	vector, err := s.embedder.Embed(ctx, validationQuery)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	hits, err := s.index.Search(ctx, vector, 1)
	if err != nil {
		return 0, err
	}
	if len(hits) == 0 {
		logger.Warn("Validation query returned no results")
	} else {
		logger.Debug("Validation hit: %s", hits[0].Policy.Text)
	}
	return len(hits), nil
}
