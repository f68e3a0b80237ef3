package domain

const unknownDescription = "Unknown"

// Verdict is the classification outcome extracted from LLM output.
type Verdict string

// Available verdicts.
const (
	// VerdictSafe indicates the email shows no phishing indicators.
	VerdictSafe Verdict = "safe"

	// VerdictPhishing indicates the email was classified as phishing.
	VerdictPhishing Verdict = "phishing"

	// VerdictUnknown indicates no recognisable verdict token was found
	// in the model output. The raw analysis is still surfaced to the
	// reader; the parse fails soft rather than erroring.
	VerdictUnknown Verdict = "unknown"
)

// IsValid returns true if the verdict is recognised.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictSafe, VerdictPhishing, VerdictUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Description returns a human-readable description of the verdict.
func (v Verdict) Description() string {
	switch v {
	case VerdictSafe:
		return "SAFE"
	case VerdictPhishing:
		return "PHISHING DETECTED"
	case VerdictUnknown:
		return "VERDICT UNCLEAR"
	default:
		return unknownDescription
	}
}

// RiskLevel grades the severity of a phishing verdict.
// Parsed best-effort from model output; may be empty.
type RiskLevel string

// Available risk levels.
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// IsValid returns true if the risk level is recognised.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return string(r)
}

// Description returns a human-readable description of the risk level.
func (r RiskLevel) Description() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskCritical:
		return "Critical"
	default:
		return unknownDescription
	}
}
