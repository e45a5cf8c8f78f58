package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egokit/egokit/pkg/yaml"
)

func TestMergeRootFromValue(t *testing.T) {
	t.Parallel()

	input := []byte(`# The teams below own their own scopes.
version: 1.0.0
metadata:
  maintainer: platform-team
`)

	update := struct {
		Metadata struct {
			Maintainer   string `json:"maintainer"`
			Organization string `json:"organization"`
		} `json:"metadata"`
	}{}
	update.Metadata.Maintainer = "platform-team"
	update.Metadata.Organization = "acme"

	got, err := yaml.MergeRootFromValue(input, update)
	require.NoError(t, err)

	// New values are merged in, existing content and comments survive.
	assert.Contains(t, string(got), "organization: acme")
	assert.Contains(t, string(got), "maintainer: platform-team")
	assert.Contains(t, string(got), "# The teams below own their own scopes.")
	assert.Contains(t, string(got), "version: 1.0.0")
}

func TestMergeRootFromValue_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := yaml.MergeRootFromValue([]byte("scopes: [unclosed"), map[string]any{"a": "b"})

	require.Error(t, err)
}
