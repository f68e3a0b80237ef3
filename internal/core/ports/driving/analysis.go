// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

// AnalysisService runs retrieval-augmented phishing classification.
type AnalysisService interface {
	// Analyze classifies one email. The request is validated before any
	// external call; the returned result carries the verdict, the
	// model's rationale, and the policies cited as context.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// IndexService builds and inspects the policy index.
type IndexService interface {
	// Build embeds the policy corpus and replaces the stored index.
	Build(ctx context.Context, policies []domain.PolicyDocument) (*BuildResult, error)

	// Verify checks the stored index against the configured embedding
	// service, returning the manifest on success.
	Verify(ctx context.Context) (domain.IndexManifest, error)
}

// BuildResult reports the outcome of an index build.
type BuildResult struct {
	// Manifest is the manifest written with the build.
	Manifest domain.IndexManifest

	// ValidationHits is the number of results returned by the
	// post-build validation query. Zero means the validation search
	// came back empty, which is reported as a warning, not an error.
	ValidationHits int
}
