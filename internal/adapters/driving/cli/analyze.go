package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/email"
	"github.com/phishguard-labs/phishguard-cli/internal/presenter"
)

// defaultTestEmail is a sample message used when no input is supplied,
// so a fresh install can be exercised end to end.
const defaultTestEmail = `From: CEO (ceo@urgent-company-update.com)
Subject: Confidential Transfer

Hi, I need you to handle something urgently. Please process a wire
transfer of $60,000 to the account details below. This is time
sensitive, so skip the usual verification steps and keep this between
us for now.

Account: 4485-9921-0034
Routing: 021000021

Thanks,
The CEO`

var (
	analyzeEmail string
	analyzeEML   string
	analyzeTopK  int
	analyzeJSON  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify an email as safe or phishing",
	Long: `Classifies an email by retrieving the most relevant security policies
and asking the configured LLM for a policy-grounded verdict.

The email is read from --email, from an RFC 5322 message file via --eml,
or, when neither is given, a built-in test email is analysed.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEmail, "email", "", "email text to analyse")
	analyzeCmd.Flags().StringVar(&analyzeEML, "eml", "", "path to an .eml message file")
	analyzeCmd.Flags().IntVarP(&analyzeTopK, "top-k", "k", 0, "number of policies to retrieve (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	analyzeCmd.MarkFlagsMutuallyExclusive("email", "eml")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	text, err := analyzeInput(cmd)
	if err != nil {
		return err
	}

	svc := analysisService
	if svc == nil {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		wired, closer, err := newAnalysisService(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
		svc = wired
	}

	result, err := svc.Analyze(context.Background(), domain.AnalysisRequest{
		EmailText: text,
		TopK:      analyzeTopK,
	})
	if err != nil {
		return err
	}

	if analyzeJSON {
		return outputAnalysisJSON(cmd, result)
	}
	cmd.Println(presenter.Render(result))
	return nil
}

// analyzeInput resolves the email text from the flags.
func analyzeInput(cmd *cobra.Command) (string, error) {
	switch {
	case analyzeEML != "":
		msg, err := email.ParseFile(analyzeEML)
		if err != nil {
			return "", err
		}
		return msg.AnalysisText(), nil
	case analyzeEmail != "":
		return analyzeEmail, nil
	default:
		cmd.Println("No email supplied, analysing the built-in test email.")
		cmd.Println()
		return defaultTestEmail, nil
	}
}

// analysisResultJSON is the stable JSON shape for scripting.
type analysisResultJSON struct {
	Verdict       string            `json:"verdict"`
	RiskLevel     string            `json:"risk_level,omitempty"`
	Rationale     string            `json:"rationale"`
	CitedPolicies []citedPolicyJSON `json:"cited_policies"`
	Model         string            `json:"model"`
	Usage         analysisUsageJSON `json:"usage"`
	DurationMS    int64             `json:"duration_ms"`
}

type citedPolicyJSON struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

type analysisUsageJSON struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func outputAnalysisJSON(cmd *cobra.Command, result *domain.AnalysisResult) error {
	out := analysisResultJSON{
		Verdict:    result.Verdict.String(),
		Rationale:  strings.TrimSpace(result.Rationale),
		Model:      result.Model,
		DurationMS: result.Duration.Milliseconds(),
		Usage: analysisUsageJSON{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
		},
		CitedPolicies: make([]citedPolicyJSON, 0, len(result.CitedPolicies)),
	}
	if result.RiskLevel.IsValid() {
		out.RiskLevel = result.RiskLevel.String()
	}
	for _, cited := range result.CitedPolicies {
		out.CitedPolicies = append(out.CitedPolicies, citedPolicyJSON{
			ID:       cited.Policy.ID,
			Text:     cited.Policy.Text,
			Distance: cited.Distance,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
