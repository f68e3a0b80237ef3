package services

import (
	"strings"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

// ParseVerdict extracts a machine-checkable verdict from raw LLM output.
//
// It prefers an explicit "Verdict:" label line, falling back to the
// first line containing a recognisable token. The parse fails soft: when
// no token is found the verdict is VerdictUnknown and the full raw text
// remains the rationale, since the report may still be useful to a
// human reader.
func ParseVerdict(raw string) (domain.Verdict, domain.RiskLevel) {
	verdict := domain.VerdictUnknown
	risk := domain.RiskLevel("")

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		if verdict == domain.VerdictUnknown {
			if v, ok := verdictFromLine(upper); ok {
				verdict = v
			}
		}
		if risk == "" {
			if r, ok := riskFromLine(upper); ok {
				risk = r
			}
		}
		if verdict != domain.VerdictUnknown && risk != "" {
			break
		}
	}

	return verdict, risk
}

// verdictFromLine recognises a verdict token in one uppercased line.
// Labelled lines ("VERDICT: ...") are always trusted; unlabelled lines
// only count when the token appears, to avoid matching prose like
// "this is not phishing" we require the labelled form or a line that
// leads with the token.
func verdictFromLine(upper string) (domain.Verdict, bool) {
	if rest, ok := strings.CutPrefix(upper, "VERDICT:"); ok {
		rest = strings.TrimSpace(rest)
		switch {
		case strings.HasPrefix(rest, "PHISHING"):
			return domain.VerdictPhishing, true
		case strings.HasPrefix(rest, "SAFE"):
			return domain.VerdictSafe, true
		}
		return domain.VerdictUnknown, false
	}

	switch {
	case strings.HasPrefix(upper, "PHISHING DETECTED"), strings.HasPrefix(upper, "PHISHING"):
		return domain.VerdictPhishing, true
	case upper == "SAFE" || strings.HasPrefix(upper, "SAFE."):
		return domain.VerdictSafe, true
	}
	return domain.VerdictUnknown, false
}

// riskFromLine recognises a risk level in one uppercased line.
func riskFromLine(upper string) (domain.RiskLevel, bool) {
	rest, ok := strings.CutPrefix(upper, "RISK LEVEL:")
	if !ok {
		rest, ok = strings.CutPrefix(upper, "RISK:")
	}
	if !ok {
		return "", false
	}

	rest = strings.TrimSpace(rest)
	for _, level := range []domain.RiskLevel{
		domain.RiskCritical, domain.RiskHigh, domain.RiskMedium, domain.RiskLow,
	} {
		if strings.HasPrefix(rest, strings.ToUpper(level.String())) {
			return level, true
		}
	}
	return "", false
}
