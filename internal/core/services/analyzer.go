package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driven"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driving"
	"github.com/phishguard-labs/phishguard-cli/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// DefaultLLMTimeout bounds one classification call when the caller does
// not configure one. The LLM round trip dominates pipeline latency.
const DefaultLLMTimeout = 60 * time.Second

// AnalysisService runs the retrieval-augmented classification pipeline:
// validate, embed, retrieve, compose, classify, parse.
//
// The index is shared read-only, so concurrent Analyze calls are safe;
// each call owns no mutable state beyond its own request.
type AnalysisService struct {
	index      driven.PolicyIndex
	embedder   driven.EmbeddingService
	llm        driven.LLMService
	composer   *Composer
	defaultK   int
	llmTimeout time.Duration
	genOpts    driven.GenerateOptions
}

// AnalysisOptions tunes the analysis pipeline.
type AnalysisOptions struct {
	// DefaultTopK is used when a request leaves TopK zero.
	DefaultTopK int

	// LLMTimeout bounds each classification call.
	// Zero means DefaultLLMTimeout.
	LLMTimeout time.Duration

	// Generate holds the sampling parameters for the classifier.
	Generate driven.GenerateOptions
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(
	index driven.PolicyIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	composer *Composer,
	opts AnalysisOptions,
) *AnalysisService {
	if opts.DefaultTopK < 1 {
		opts.DefaultTopK = domain.DefaultTopK
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = DefaultLLMTimeout
	}
	return &AnalysisService{
		index:      index,
		embedder:   embedder,
		llm:        llm,
		composer:   composer,
		defaultK:   opts.DefaultTopK,
		llmTimeout: opts.LLMTimeout,
		genOpts:    opts.Generate,
	}
}

// Analyze classifies one email against the policy index.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	started := time.Now()
	logger.Section("Email Analysis")

	// Reject malformed requests before any external call.
	if err := req.Validate(); err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.defaultK
	}
	logger.Debug("Top-K: %d", topK)

	// The manifest check runs per call: it is one cheap row read, and it
	// keeps a live process honest if the index file is swapped under it.
	if err := VerifyManifest(ctx, s.index, s.embedder); err != nil {
		return nil, err
	}

	query, err := s.embedQuery(ctx, req.EmailText)
	if err != nil {
		return nil, err
	}

	retrieved, err := s.index.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("policy retrieval: %w", err)
	}
	logger.Info("Retrieved %d relevant policies", len(retrieved))
	for i, r := range retrieved {
		logger.Debug("  [%d] d=%.4f %s", i+1, r.Distance, r.Policy.Text)
	}

	messages, err := s.composer.Compose(req.EmailText, retrieved)
	if err != nil {
		return nil, err
	}

	completion, err := s.classify(ctx, messages)
	if err != nil {
		return nil, err
	}

	verdict, risk := ParseVerdict(completion.Text)
	logger.Info("Verdict: %s", verdict.Description())

	return &domain.AnalysisResult{
		Verdict:       verdict,
		RiskLevel:     risk,
		Rationale:     completion.Text,
		CitedPolicies: retrieved,
		Model:         s.llm.ModelName(),
		Usage: domain.TokenUsage{
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
		},
		Duration: time.Since(started),
	}, nil
}

// embedQuery embeds the email text and validates the result shape.
func (s *AnalysisService) embedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if err := ValidateEmbedding(vector, s.embedder.Dimensions()); err != nil {
		return nil, err
	}
	return vector, nil
}

// classify runs the LLM call under the configured timeout.
func (s *AnalysisService) classify(ctx context.Context, messages []driven.ChatMessage) (*driven.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	logger.Debug("Sending request to LLM (%s, timeout %s)", s.llm.ModelName(), s.llmTimeout)
	completion, err := s.llm.Classify(ctx, messages, s.genOpts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no verdict after %s", domain.ErrLLMTimeout, s.llmTimeout)
		}
		return nil, fmt.Errorf("classification: %w", err)
	}
	return completion, nil
}

// VerifyManifest checks that the stored index was built with the
// currently configured embedding model and dimensionality.
func VerifyManifest(ctx context.Context, index driven.PolicyIndex, embedder driven.EmbeddingService) error {
	manifest, err := index.Manifest(ctx)
	if err != nil {
		return err
	}
	if manifest.EmbeddingModel != embedder.ModelName() || manifest.Dimensions != embedder.Dimensions() {
		return fmt.Errorf("%w: index built with %s (%d dims), configured model is %s (%d dims)",
			domain.ErrModelMismatch,
			manifest.EmbeddingModel, manifest.Dimensions,
			embedder.ModelName(), embedder.Dimensions())
	}
	return nil
}

// ValidateEmbedding rejects vectors with the wrong dimensionality or
// non-finite components before they reach the index.
func ValidateEmbedding(vector []float32, dimensions int) error {
	if len(vector) != dimensions {
		return fmt.Errorf("%w: got %d dimensions, expected %d",
			domain.ErrEmbedding, len(vector), dimensions)
	}
	for _, v := range vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: vector contains non-finite values", domain.ErrEmbedding)
		}
	}
	return nil
}
