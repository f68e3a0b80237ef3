// Package corpus loads the organisation security policy corpus.
// Policies come from an optional plain-text file (one policy per line)
// or from the embedded defaults when no file is configured.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/logger"
)

// defaultPolicies is the embedded corpus. In production deployments
// these would come from a policy file maintained by the security team.
var defaultPolicies = []string{
	"RULE 1: The company CEO never requests wire transfers via email. This is strictly prohibited.",
	"RULE 2: The IT Support team will never ask you to reset your password by clicking a link.",
	"RULE 3: Emergency drills are only announced from 'security@company.com' address.",
	"RULE 4: Payments over $50,000 require a wet signature; email is not sufficient.",
}

// Load returns the policy corpus. An empty path selects the embedded
// defaults. File format: one policy per line; blank lines and lines
// starting with '#' are skipped.
func Load(path string) ([]domain.PolicyDocument, error) {
	if path == "" {
		logger.Debug("Using embedded default corpus (%d policies)", len(defaultPolicies))
		return build(defaultPolicies), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening policy file %s: %v", domain.ErrConfig, path, err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading policy file %s: %v", domain.ErrConfig, path, err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: policy file %s contains no policies", domain.ErrConfig, path)
	}

	logger.Debug("Loaded %d policies from %s", len(texts), path)
	return build(texts), nil
}

// Default returns the embedded corpus.
func Default() []domain.PolicyDocument {
	return build(defaultPolicies)
}

func build(texts []string) []domain.PolicyDocument {
	policies := make([]domain.PolicyDocument, len(texts))
	for i, text := range texts {
		policies[i] = domain.NewPolicyDocument(text, i)
	}
	return policies
}
