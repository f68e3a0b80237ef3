package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoliciesCmd_Use(t *testing.T) {
	assert.Equal(t, "policies", policiesCmd.Use)
}

func TestPoliciesCmd_ListsBuiltInCorpus(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"policies"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Policy corpus (4 policies)")
	assert.Contains(t, buf.String(), "[1]")
	assert.Contains(t, buf.String(), "id: ")
}

func TestPoliciesCmd_PoliciesFlag(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "policies.txt")
	require.NoError(t, os.WriteFile(path, []byte("RULE 1: Report suspicious links.\n"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"policies", "--policies", path})
	defer func() {
		rootCmd.SetArgs(nil)
		policiesFile = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Policy corpus (1 policies)")
	assert.Contains(t, buf.String(), "RULE 1: Report suspicious links.")
}

func TestPoliciesCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"policies", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		policiesJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)

	var out []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 4)
	for _, p := range out {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Text)
	}
}
