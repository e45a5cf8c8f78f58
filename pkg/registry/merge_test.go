package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/pkg/registry"
)

func newTestCharter(t *testing.T) *charters.Charter {
	t.Helper()

	charter := charters.New()
	charter.Scopes["global"] = charters.ScopeRuleSet{
		"security": {
			{
				ID:       "SEC-001",
				Rule:     "Never commit credentials, API keys, or secrets to source control",
				Severity: charters.SeverityCritical,
				Detector: "secret.regex.v1",
				Tags:     []string{"security"},
			},
		},
		"code_quality": {
			{
				ID:       "QUAL-001",
				Rule:     "Write tests for all new functionality",
				Severity: charters.SeverityWarning,
				Detector: "coverage.report.v1",
			},
		},
	}
	charter.Scopes["teams/backend"] = charters.ScopeRuleSet{
		"code_quality": {
			{
				ID:       "BACK-001",
				Rule:     "All handlers must have timeouts",
				Severity: charters.SeverityCritical,
				Detector: "handler.timeout.v1",
			},
			{
				ID:       "QUAL-001",
				Rule:     "Write table-driven tests for all new functionality",
				Severity: charters.SeverityWarning,
				Detector: "coverage.report.v1",
			},
		},
	}

	return charter
}

func TestRegistry_MergeScopeRules(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(t.TempDir())
	require.NoError(t, err)

	charter := newTestCharter(t)

	t.Run("global only", func(t *testing.T) {
		t.Parallel()

		merged, err := reg.MergeScopeRules(charter, []string{"global"})
		require.NoError(t, err)

		require.Len(t, merged, 2)
		// Categories iterate sorted, so code_quality precedes security.
		assert.Equal(t, "QUAL-001", merged[0].ID)
		assert.Equal(t, "code_quality", merged[0].Category)
		assert.Equal(t, "SEC-001", merged[1].ID)
		assert.Equal(t, "security", merged[1].Category)
	})

	t.Run("later scope replaces in place and appends", func(t *testing.T) {
		t.Parallel()

		merged, err := reg.MergeScopeRules(charter, []string{"global", "teams/backend"})
		require.NoError(t, err)

		require.Len(t, merged, 3)

		// QUAL-001 keeps its first-occurrence position but carries the
		// backend definition.
		assert.Equal(t, "QUAL-001", merged[0].ID)
		assert.Equal(t, "Write table-driven tests for all new functionality", merged[0].Rule)

		assert.Equal(t, "SEC-001", merged[1].ID)

		// BACK-001 is new, appended after the inherited rules.
		assert.Equal(t, "BACK-001", merged[2].ID)
		assert.Equal(t, charters.SeverityCritical, merged[2].Severity)
	})

	t.Run("precedence follows chain order", func(t *testing.T) {
		t.Parallel()

		merged, err := reg.MergeScopeRules(charter, []string{"teams/backend", "global"})
		require.NoError(t, err)

		// Reversed chain: the global definition of QUAL-001 wins.
		for _, rule := range merged {
			if rule.ID == "QUAL-001" {
				assert.Equal(t, "Write tests for all new functionality", rule.Rule)
			}
		}
	})

	t.Run("unknown scope", func(t *testing.T) {
		t.Parallel()

		_, err := reg.MergeScopeRules(charter, []string{"global", "teams/missing"})
		require.Error(t, err)
		assert.ErrorIs(t, err, registry.ErrUnknownScope)
		assert.Equal(t, `unknown scope "teams/missing" in scope chain`, err.Error())
	})

	t.Run("empty chain yields no rules", func(t *testing.T) {
		t.Parallel()

		merged, err := reg.MergeScopeRules(charter, nil)
		require.NoError(t, err)
		assert.Empty(t, merged)
	})
}

func TestRegistry_MergeEgoConfigs(t *testing.T) {
	t.Parallel()

	dir := newTestRegistry(t, map[string]string{
		"ego/global.yaml": `version: 1.0.0
ego:
  role: Senior engineer
  tone:
    voice: concise and direct
    verbosity: minimal
    formatting:
      - Use bullet points
  defaults:
    testing: Add tests with every change
    deploy:
      environment: staging
      approvals: "1"
  reviewer_checklist:
    - Are there tests?
    - Are error paths handled?
  ask_when_unsure:
    - Deleting modules
  modes:
    implementation:
      verbosity: minimal
      focus: Working code
`,
		"ego/teams/backend.yaml": `version: 1.0.0
ego:
  role: Backend engineer focused on reliability
  tone:
    verbosity: detailed
  defaults:
    deploy:
      approvals: "2"
  ask_when_unsure:
    - Schema migrations
  modes:
    implementation:
      verbosity: detailed
    incident:
      focus: Fast mitigation
`,
	})

	reg, err := registry.New(dir)
	require.NoError(t, err)

	t.Run("single scope", func(t *testing.T) {
		t.Parallel()

		ego, err := reg.MergeEgoConfigs([]string{"global"}, true)
		require.NoError(t, err)

		assert.Equal(t, "Senior engineer", ego.Role)
		assert.Equal(t, "minimal", ego.Tone.Verbosity)
	})

	t.Run("chain merge", func(t *testing.T) {
		t.Parallel()

		ego, err := reg.MergeEgoConfigs([]string{"global", "teams/backend"}, true)
		require.NoError(t, err)

		// Scalars: last non-empty writer wins; unset fields inherit.
		assert.Equal(t, "Backend engineer focused on reliability", ego.Role)
		assert.Equal(t, "detailed", ego.Tone.Verbosity)
		assert.Equal(t, "concise and direct", ego.Tone.Voice)

		// Lists: replaced only by a non-empty override.
		assert.Equal(t, []string{"Use bullet points"}, ego.Tone.Formatting)
		assert.Equal(t, []string{"Are there tests?", "Are error paths handled?"}, ego.ReviewerChecklist)
		assert.Equal(t, []string{"Schema migrations"}, ego.AskWhenUnsure)

		// Maps: recursive merge keeps parent-only keys.
		assert.Equal(t, "Add tests with every change", ego.Defaults["testing"])
		deploy, ok := ego.Defaults["deploy"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "2", deploy["approvals"])
		assert.Equal(t, "staging", deploy["environment"])

		// Modes: key-wise merge, field-wise within a shared mode.
		require.Contains(t, ego.Modes, "implementation")
		assert.Equal(t, "detailed", ego.Modes["implementation"].Verbosity)
		assert.Equal(t, "Working code", ego.Modes["implementation"].Focus)
		require.Contains(t, ego.Modes, "incident")
		assert.Equal(t, "Fast mitigation", ego.Modes["incident"].Focus)
	})

	t.Run("missing ego document", func(t *testing.T) {
		t.Parallel()

		_, err := reg.MergeEgoConfigs([]string{"global", "teams/missing"}, true)
		require.Error(t, err)
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}
