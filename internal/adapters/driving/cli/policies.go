package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phishguard-labs/phishguard-cli/internal/corpus"
)

var (
	policiesFile string
	policiesJSON bool
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the policy corpus",
	Long: `Prints the security policies that ground each verdict.
With --policies the corpus is read from a file; otherwise the built-in
policies are shown.`,
	Args: cobra.NoArgs,
	RunE: runPolicies,
}

func init() {
	policiesCmd.Flags().StringVar(&policiesFile, "policies", "", "path to a policy file (one policy per line)")
	policiesCmd.Flags().BoolVar(&policiesJSON, "json", false, "output the corpus as JSON")
	rootCmd.AddCommand(policiesCmd)
}

func runPolicies(cmd *cobra.Command, _ []string) error {
	path := policiesFile
	if path == "" {
		cfg, err := loadConfig()
		if err == nil {
			path = cfg.Corpus.Path
		}
	}

	policies, err := corpus.Load(path)
	if err != nil {
		return err
	}

	if policiesJSON {
		type policyJSON struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		}
		out := make([]policyJSON, 0, len(policies))
		for _, p := range policies {
			out = append(out, policyJSON{ID: p.ID, Text: p.Text})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal policies: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Policy corpus (%d policies):\n\n", len(policies))
	for i, p := range policies {
		cmd.Printf("  [%d] %s\n", i+1, p.Text)
		cmd.Printf("      id: %s\n\n", p.ID)
	}
	return nil
}
