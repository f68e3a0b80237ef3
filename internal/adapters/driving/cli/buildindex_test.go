package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

func TestBuildIndexCmd_Use(t *testing.T) {
	assert.Equal(t, "build-index", buildIndexCmd.Use)
}

func TestBuildIndexCmd_Short(t *testing.T) {
	assert.Equal(t, "Embed the policy corpus and build the index", buildIndexCmd.Short)
}

func TestBuildIndexCmd_HasPoliciesFlag(t *testing.T) {
	flag := buildIndexCmd.Flags().Lookup("policies")
	require.NotNil(t, flag, "policies flag should exist")
	assert.Equal(t, "", flag.DefValue)
}

func TestBuildIndexCmd_HasWatchFlag(t *testing.T) {
	flag := buildIndexCmd.Flags().Lookup("watch")
	require.NotNil(t, flag, "watch flag should exist")
	assert.Equal(t, "false", flag.DefValue)
}

func TestBuildIndexCmd_WatchRequiresPolicies(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"build-index", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
		buildWatch = false
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "--policies")
}

func TestBuildIndexCmd_BuildsDefaultCorpus(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build-index"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Embedding 4 policies")
	assert.Contains(t, buf.String(), "Index built: 4 policies, 4 dimensions, model mock-embed")
	assert.NotContains(t, buf.String(), "Warning")

	mock := indexService.(*mockIndexService)
	assert.Equal(t, 1, mock.buildCalls)
	assert.Len(t, mock.lastPolicies, 4)
}

func TestBuildIndexCmd_PoliciesFlag(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "policies.txt")
	content := "# comment line\n" +
		"RULE 1: Never share credentials by email.\n" +
		"\n" +
		"RULE 2: Verify payment changes by phone.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build-index", "--policies", path})
	defer func() {
		rootCmd.SetArgs(nil)
		buildPolicies = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Embedding 2 policies")

	mock := indexService.(*mockIndexService)
	require.Len(t, mock.lastPolicies, 2)
	assert.Equal(t, "RULE 1: Never share credentials by email.", mock.lastPolicies[0].Text)
}

func TestBuildIndexCmd_MissingPolicyFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"build-index", "--policies", filepath.Join(t.TempDir(), "missing.txt")})
	defer func() {
		rootCmd.SetArgs(nil)
		buildPolicies = ""
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrConfig)

	mock := indexService.(*mockIndexService)
	assert.Equal(t, 0, mock.buildCalls)
}

func TestBuildIndexCmd_RejectsPlaceholderEmbeddingKey(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	// Force the real wiring path so the config check runs.
	indexService = nil

	cfgContent := "[embedding]\n" +
		"provider = \"openai\"\n" +
		"api_key = \"your_api_key_here\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(cfgContent), 0o600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"build-index"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "requires an API key")
}

func TestBuildIndexCmd_ValidationWarning(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	result := testBuildResult()
	result.ValidationHits = 0
	indexService = &mockIndexService{buildResult: result}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"build-index"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Warning")
	assert.Contains(t, buf.String(), "validation query returned no results")
}

func TestBuildIndexCmd_BuildError(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	indexService = &mockIndexService{buildErr: errors.New("embedding service down")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"build-index"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}
