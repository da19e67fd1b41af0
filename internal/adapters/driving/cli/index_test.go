package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_Metadata(t *testing.T) {
	assert.Equal(t, "index [path]", indexCmd.Use)
	assert.NotNil(t, indexCmd.Flags().Lookup("json"))
}

func TestIndexCmd_IndexesVault(t *testing.T) {
	env := setupTestServices(t)
	env.writeNote(t, "a.md", "alpha")
	env.writeNote(t, "sub/b.md", "beta")
	env.writeNote(t, "c.txt", "not a note")

	out, err := execute("index", env.vault)

	require.NoError(t, err)
	assert.Equal(t, "Indexed 2 documents\n", out)
}

func TestIndexCmd_UsesConfiguredVault(t *testing.T) {
	env := setupTestServices(t)
	env.writeNote(t, "a.md", "alpha")
	require.NoError(t, env.settings.SetVaultPath(env.vault))

	out, err := execute("index")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 documents")
}

func TestIndexCmd_NoVaultPath(t *testing.T) {
	setupTestServices(t)

	_, err := execute("index")

	assert.ErrorContains(t, err, "no vault path")
}

func TestIndexCmd_EmptyVault(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute("index", env.vault)

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 documents")
}

func TestIndexCmd_Verbose(t *testing.T) {
	env := setupTestServices(t)
	env.writeNote(t, "a.md", "alpha")
	env.writeNote(t, "skip.txt", "x")

	out, err := execute("index", "--verbose", env.vault)

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 documents")
	assert.Contains(t, out, "Root:")
	assert.Contains(t, out, "Skipped:")
	assert.Contains(t, out, "extension")
	assert.Contains(t, out, "skip.txt")
}

func TestIndexCmd_JSON(t *testing.T) {
	env := setupTestServices(t)
	env.writeNote(t, "a.md", "alpha")
	env.writeNote(t, "b.txt", "x")

	out, err := execute("index", "--json", env.vault)
	require.NoError(t, err)

	var report indexOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, env.vault, report.Root)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "skipped", report.Items[0].Outcome)
	assert.Equal(t, "extension", report.Items[0].Reason)
}

func TestIndexCmd_PrunesRemovedNotes(t *testing.T) {
	env := setupTestServices(t)
	env.writeNote(t, "keep.md", "keep")
	gone := env.writeNote(t, "gone.md", "gone")

	_, err := execute("index", env.vault)
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))

	out, err := execute("index", "--json", env.vault)
	require.NoError(t, err)

	var report indexOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Removed)
}

func TestIndexCmd_MissingRootIndexesNothing(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute("index", env.vault+"/does-not-exist")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 documents")
}
