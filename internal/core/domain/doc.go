// Package domain contains the core business entities for PhishGuard:
// policy documents, analysis requests and results, verdicts, provider
// settings, and the closed set of domain errors. It has no dependency
// on adapters or services.
package domain
