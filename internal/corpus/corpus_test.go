package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	policies, err := Load("")

	require.NoError(t, err)
	require.Len(t, policies, 4)
	assert.Contains(t, policies[0].Text, "wire transfers")
	for i, p := range policies {
		assert.Equal(t, i, p.Position)
		assert.NotEmpty(t, p.ID)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.txt")
	content := `# company policy corpus
RULE 1: Never share credentials.

RULE 2: Verify payment requests by phone.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	policies, err := Load(path)

	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "RULE 1: Never share credentials.", policies[0].Text)
	assert.Equal(t, "RULE 2: Verify payment requests by phone.", policies[1].Text)
	assert.Equal(t, 0, policies[0].Position)
	assert.Equal(t, 1, policies[1].Position)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only comments\n\n"), 0600))

	_, err := Load(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestDefault_DeterministicIDs(t *testing.T) {
	first := Default()
	second := Default()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
