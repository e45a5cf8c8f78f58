package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSystemPrompt(t *testing.T) {
	t.Parallel()

	root := initRegistry(t, t.TempDir())

	out, err := executeCmd(t, "export-system-prompt", "--registry", root)
	require.NoError(t, err)

	assert.Contains(t, out, "== INVIOLABLE CONSTITUTION ==")
	assert.Contains(t, out, "3 organizational standards")
	assert.Contains(t, out, "[SEC-001]")
	assert.Contains(t, out, "== SECURITY IMPERATIVES ==")
}

func TestExportSystemPrompt_ToFile(t *testing.T) {
	t.Parallel()

	root := initRegistry(t, t.TempDir())
	output := filepath.Join(t.TempDir(), "fragment.txt")

	out, err := executeCmd(t, "export-system-prompt", "--registry", root, "-o", output)
	require.NoError(t, err)

	// Nothing on stdout when writing to a file.
	assert.NotContains(t, out, "== INVIOLABLE CONSTITUTION ==")

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(got), "== INVIOLABLE CONSTITUTION ==")
}

func TestExportSystemPrompt_MissingRegistry(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")

	_, err := executeCmd(t, "export-system-prompt", "--registry", missing)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Policy registry not found")
}
