package compile_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/api/v1beta1/egos"
	"github.com/egokit/egokit/pkg/compile"
	"github.com/egokit/egokit/pkg/registry"
)

// newTestContext builds a context with one rule per severity class:
// a critical security rule, a critical non-security rule, an auto-fix
// warning, and a documentation info rule.
func newTestContext(t *testing.T) *compile.Context {
	t.Helper()

	rules := []registry.MergedRule{
		{
			PolicyRule: charters.PolicyRule{
				ID:       "SEC-001",
				Rule:     "Never commit credentials, API keys, or secrets to source control",
				Severity: charters.SeverityCritical,
				Detector: "secret.regex.v1",
				Tags:     []string{"security"},
			},
			Category: "security",
		},
		{
			PolicyRule: charters.PolicyRule{
				ID:       "OPS-001",
				Rule:     "Never run destructive migrations without a rollback plan",
				Severity: charters.SeverityCritical,
				Detector: "migration.review.v1",
			},
			Category: "operations",
		},
		{
			PolicyRule: charters.PolicyRule{
				ID:               "QUAL-001",
				Rule:             "Write tests for all new functionality",
				Severity:         charters.SeverityWarning,
				Detector:         "coverage.report.v1",
				AutoFix:          true,
				ExampleViolation: "func Add(a, b int) int { return a + b }",
				ExampleFix:       "func TestAdd(t *testing.T) { ... }",
			},
			Category: "code_quality",
		},
		{
			PolicyRule: charters.PolicyRule{
				ID:       "DOC-001",
				Rule:     "Use present tense and active voice in documentation",
				Severity: charters.SeverityInfo,
				Detector: "docs.style.v1",
			},
			Category: "documentation",
		},
	}

	ego := &egos.EgoConfig{
		Role: "Senior engineer who values clarity",
		Tone: &egos.ToneConfig{
			Voice:      "concise and direct",
			Verbosity:  "minimal",
			Formatting: []string{"Use bullet points for lists"},
		},
		Defaults: map[string]any{
			"testing": "Add tests with every change",
		},
		ReviewerChecklist: []string{"Are there tests?"},
		AskWhenUnsure:     []string{"Deleting modules"},
		Modes: map[string]egos.ModeConfig{
			"implementation": {Verbosity: "minimal", Focus: "Working code"},
			"review":         {Verbosity: "detailed", Focus: "Risks and regressions"},
		},
	}

	generatedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	return compile.NewContext(".", rules, ego, []string{"global", "teams/backend"}, generatedAt)
}

func TestParseAgent(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    compile.Agent
		wantErr bool
	}{
		"claude":           {input: "claude", want: compile.AgentClaude},
		"cursor":           {input: "cursor", want: compile.AgentCursor},
		"augment":          {input: "augment", want: compile.AgentAugment},
		"case insensitive": {input: "Claude", want: compile.AgentClaude},
		"unknown":          {input: "copilot", wantErr: true},
		"empty":            {input: "", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := compile.ParseAgent(tc.input)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "accepted values: claude, cursor, augment")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestAgent_Compile_UnknownAgent(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.Agent("copilot").Compile(newTestContext(t))

	require.Error(t, err)
	assert.Nil(t, artifacts)
}

func TestAgent_Compile_EveryVariantEmitsEgoCard(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	for _, agent := range compile.AllAgents {
		artifacts, err := agent.Compile(ctx)
		require.NoError(t, err)

		card, ok := artifacts[compile.EgoCardPath]
		assert.True(t, ok, "agent %s should emit %s", agent, compile.EgoCardPath)
		assert.Contains(t, card, "# Ego Card")
		assert.Contains(t, card, "Senior engineer who values clarity")
	}
}

func TestAgent_Compile_Deterministic(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	for _, agent := range compile.AllAgents {
		first, err := agent.Compile(ctx)
		require.NoError(t, err)

		second, err := agent.Compile(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second, "agent %s should compile deterministically", agent)
	}
}

// The standards count must read the same on every surface that
// mentions it.
func TestAgent_Compile_CountConsistency(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	phrase := "4 organizational standards"

	claude, err := compile.AgentClaude.Compile(ctx)
	require.NoError(t, err)
	assert.Contains(t, claude["CLAUDE.md"], phrase)
	assert.Contains(t, claude[".claude/system-prompt.txt"], phrase)
	assert.Contains(t, claude["EGO.md"], phrase)

	cursor, err := compile.AgentCursor.Compile(ctx)
	require.NoError(t, err)
	assert.Contains(t, cursor[".cursorrules"], phrase)

	augment, err := compile.AgentAugment.Compile(ctx)
	require.NoError(t, err)
	assert.Contains(t, augment[".augment/rules/policy-rules.md"], phrase)
}

func TestCompileClaude_Artifacts(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentClaude.Compile(newTestContext(t))
	require.NoError(t, err)

	wantPaths := []string{
		"CLAUDE.md",
		".claude/settings.json",
		".claude/system-prompt.txt",
		".claude/commands/validate.md",
		".claude/commands/security-review.md",
		".claude/commands/compliance-check.md",
		".claude/commands/refresh-policies.md",
		".claude/commands/checkpoint.md",
		".claude/commands/periodic-refresh.md",
		".claude/commands/before-code.md",
		".claude/commands/recall-policies.md",
		".claude/commands/implementation.md",
		".claude/commands/review.md",
		"EGO.md",
	}

	assert.Len(t, artifacts, len(wantPaths))
	for _, path := range wantPaths {
		assert.Contains(t, artifacts, path)
	}
}

func TestCompileClaude_ModeNamedLikeFixedCommand(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	ctx.Ego.Modes["validate"] = egos.ModeConfig{Verbosity: "detailed", Focus: "Exhaustive checks"}

	artifacts, err := compile.AgentClaude.Compile(ctx)
	require.NoError(t, err)

	// The fixed command keeps its artifact; the mode only shows up in
	// the memory file.
	command := artifacts[".claude/commands/validate.md"]
	assert.Contains(t, command, "Check the working tree against all 4 organizational standards")
	assert.NotContains(t, command, "Switch to validate mode.")

	assert.Contains(t, artifacts["CLAUDE.md"], "### /validate")
}

func TestCompileClaude_Memory(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentClaude.Compile(newTestContext(t))
	require.NoError(t, err)

	memory := artifacts["CLAUDE.md"]

	assert.Contains(t, memory, "Active scopes: global -> teams/backend.")
	assert.Contains(t, memory, "## Critical Rules (Never Violate)")
	assert.Contains(t, memory, "## Standards (Follow Consistently)")

	// Rule text is rendered verbatim, never paraphrased.
	assert.Contains(t, memory, "Never commit credentials, API keys, or secrets to source control")
	assert.Contains(t, memory, "Never run destructive migrations without a rollback plan")
	assert.Contains(t, memory, "Write tests for all new functionality")

	assert.Contains(t, memory, "### /implementation")
	assert.Contains(t, memory, "### /review")
}

func TestCompileClaude_Settings(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentClaude.Compile(newTestContext(t))
	require.NoError(t, err)

	var settings struct {
		Permissions struct {
			Allow []string `json:"allow"`
			Deny  []string `json:"deny"`
			Ask   []string `json:"ask"`
		} `json:"permissions"`
		Behavior struct {
			SecurityFirst          bool            `json:"security_first"`
			RequireConfirmation    bool            `json:"require_confirmation_for_critical"`
			DocumentationStandards map[string]bool `json:"documentation_standards"`
		} `json:"behavior"`
		Automation struct {
			SuggestFixes bool     `json:"suggest_fixes"`
			AutoFixRules []string `json:"auto_fix_rules"`
		} `json:"automation"`
	}

	raw := artifacts[".claude/settings.json"]
	require.NoError(t, json.Unmarshal([]byte(raw), &settings))
	assert.True(t, strings.HasSuffix(raw, "\n"))

	// Critical security rules deny, other critical rules ask,
	// advisory rules extend the baseline allowlist.
	assert.Equal(t, []string{"rule:SEC-001"}, settings.Permissions.Deny)
	assert.Equal(t, []string{"rule:OPS-001"}, settings.Permissions.Ask)
	assert.Equal(t,
		[]string{"Read", "Grep", "Glob", "Edit", "Write", "Bash", "rule:QUAL-001", "rule:DOC-001"},
		settings.Permissions.Allow)

	assert.True(t, settings.Behavior.SecurityFirst)
	assert.True(t, settings.Behavior.RequireConfirmation)
	assert.Equal(t, map[string]bool{"present_tense": true, "active_voice": true},
		settings.Behavior.DocumentationStandards)

	assert.True(t, settings.Automation.SuggestFixes)
	assert.Equal(t, []string{"QUAL-001"}, settings.Automation.AutoFixRules)
}

func TestCompileCursor_Artifacts(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentCursor.Compile(newTestContext(t))
	require.NoError(t, err)

	assert.Contains(t, artifacts, ".cursorrules")
	assert.Contains(t, artifacts, ".cursor/rules/security.mdc")
	assert.Contains(t, artifacts, ".cursor/rules/operations.mdc")
	assert.Contains(t, artifacts, ".cursor/rules/code_quality.mdc")
	assert.Contains(t, artifacts, ".cursor/rules/documentation.mdc")

	rules := artifacts[".cursorrules"]
	assert.Contains(t, rules, "## Code Quality")
	assert.Contains(t, rules, "[SEC-001] Never commit credentials, API keys, or secrets to source control (critical)")
}

func TestCompileCursor_MDCFrontmatter(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentCursor.Compile(newTestContext(t))
	require.NoError(t, err)

	tcs := map[string]struct {
		path         string
		wantTitle    string
		wantPriority string
	}{
		"category with a critical rule": {
			path:         ".cursor/rules/security.mdc",
			wantTitle:    "Security Rules",
			wantPriority: "high",
		},
		"category without critical rules": {
			path:         ".cursor/rules/documentation.mdc",
			wantTitle:    "Documentation Rules",
			wantPriority: "normal",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mdc := artifacts[tc.path]

			assert.True(t, strings.HasPrefix(mdc, "---\n"))
			assert.Contains(t, mdc, "title: "+tc.wantTitle)
			assert.Contains(t, mdc, "priority: "+tc.wantPriority)

			// Frontmatter closes before the body.
			parts := strings.SplitN(mdc, "---\n", 3)
			require.Len(t, parts, 3)
		})
	}
}

func TestCompileCursor_ExamplesRendered(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentCursor.Compile(newTestContext(t))
	require.NoError(t, err)

	mdc := artifacts[".cursor/rules/code_quality.mdc"]

	assert.Contains(t, mdc, "## QUAL-001")
	assert.Contains(t, mdc, "Severity: warning. Detector: coverage.report.v1.")
	assert.Contains(t, mdc, "func Add(a, b int) int { return a + b }")
	assert.Contains(t, mdc, "func TestAdd(t *testing.T) { ... }")
}

func TestCompileAugment_Artifacts(t *testing.T) {
	t.Parallel()

	artifacts, err := compile.AgentAugment.Compile(newTestContext(t))
	require.NoError(t, err)

	require.Contains(t, artifacts, ".augment/rules/policy-rules.md")
	require.Contains(t, artifacts, ".augment/rules/coding-style.md")
	require.Contains(t, artifacts, ".augment/rules/guidelines.md")

	policyRules := artifacts[".augment/rules/policy-rules.md"]
	assert.Contains(t, policyRules, "### SEC-001")
	assert.Contains(t, policyRules, "Never commit credentials, API keys, or secrets to source control")
	assert.Contains(t, policyRules, "- Detector: secret.regex.v1")

	style := artifacts[".augment/rules/coding-style.md"]
	assert.Contains(t, style, "Senior engineer who values clarity")
	assert.Contains(t, style, "concise and direct")

	guidelines := artifacts[".augment/rules/guidelines.md"]
	assert.Contains(t, guidelines, "## Reviewer Checklist")
	assert.Contains(t, guidelines, "1. Are there tests?")
	assert.Contains(t, guidelines, "## Ask When Unsure")
}

func TestRenderSystemPrompt(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	d := compile.Derive(ctx.Rules)

	fragment := compile.RenderSystemPrompt(ctx, d)

	assert.Contains(t, fragment, "== INVIOLABLE CONSTITUTION ==")
	assert.Contains(t, fragment, "1. [SEC-001] Never commit credentials, API keys, or secrets to source control")
	assert.Contains(t, fragment, "2. [OPS-001] Never run destructive migrations without a rollback plan")
	assert.Contains(t, fragment, "== BEHAVIORAL CALIBRATION ==")
	assert.Contains(t, fragment, "== SECURITY IMPERATIVES ==")
	assert.Contains(t, fragment, "== CONSISTENCY REMINDER ==")
	assert.Contains(t, fragment, "- Are there tests?")
}

func TestRenderSystemPrompt_NoSecuritySection(t *testing.T) {
	t.Parallel()

	rules := []registry.MergedRule{
		{
			PolicyRule: charters.PolicyRule{
				ID:       "QUAL-001",
				Rule:     "Write tests for all new functionality",
				Severity: charters.SeverityWarning,
				Detector: "coverage.report.v1",
			},
			Category: "code_quality",
		},
	}
	ego := &egos.EgoConfig{}
	ego.EnsureDefaults()

	ctx := compile.NewContext(".", rules, ego, []string{"global"}, time.Now())
	d := compile.Derive(ctx.Rules)

	fragment := compile.RenderSystemPrompt(ctx, d)

	assert.NotContains(t, fragment, "== SECURITY IMPERATIVES ==")
}
