package compile

import (
	"encoding/json"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"time"
)

const (
	claudeMemoryPath       = "CLAUDE.md"
	claudeSettingsPath     = ".claude/settings.json"
	claudeCommandsDir      = ".claude/commands"
	claudeSystemPromptPath = ".claude/system-prompt.txt"
)

// claudeFixedCommands are the slash commands emitted for every compile,
// before the per-mode commands.
var claudeFixedCommands = []string{
	"validate",
	"security-review",
	"compliance-check",
	"refresh-policies",
	"checkpoint",
	"periodic-refresh",
	"before-code",
	"recall-policies",
}

// claudeBaselineAllow is the fixed tool allowlist in settings.json,
// ahead of the per-rule entries.
var claudeBaselineAllow = []string{"Read", "Grep", "Glob", "Edit", "Write", "Bash"}

func compileClaude(ctx *Context, d Derivations) map[string]string {
	artifacts := map[string]string{
		claudeMemoryPath:       renderClaudeMemory(ctx, d),
		claudeSettingsPath:     renderClaudeSettings(d),
		claudeSystemPromptPath: RenderSystemPrompt(ctx, d),
	}

	for _, name := range claudeFixedCommands {
		artifacts[path.Join(claudeCommandsDir, name+".md")] = renderClaudeCommand(name, d)
	}

	for _, name := range slices.Sorted(maps.Keys(ctx.Ego.Modes)) {
		// A mode sharing a fixed command's name keeps the fixed
		// artifact; the mode still renders in CLAUDE.md.
		if slices.Contains(claudeFixedCommands, name) {
			continue
		}

		artifacts[path.Join(claudeCommandsDir, name+".md")] = renderModeCommand(name, ctx)
	}

	return artifacts
}

func renderClaudeMemory(ctx *Context, d Derivations) string {
	ego := ctx.Ego

	var sb strings.Builder

	sb.WriteString("# CLAUDE.md\n\n")
	fmt.Fprintf(&sb, "This repository enforces %s, compiled from the policy registry on %s.\n",
		d.StandardsPhrase(), ctx.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Active scopes: %s.\n\n", strings.Join(ctx.ActiveScopes, " -> "))

	sb.WriteString("## Persona\n\n")
	if ego.Role != "" {
		fmt.Fprintf(&sb, "Act as: %s.\n", ego.Role)
	}
	if ego.Tone != nil {
		if ego.Tone.Voice != "" {
			fmt.Fprintf(&sb, "Voice: %s.\n", ego.Tone.Voice)
		}
		if ego.Tone.Verbosity != "" {
			fmt.Fprintf(&sb, "Verbosity: %s.\n", ego.Tone.Verbosity)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Calibration\n\n")
	sb.WriteString("Apply the conventions below as defaults, not suggestions.\n")
	if ego.Tone != nil {
		for _, directive := range ego.Tone.Formatting {
			fmt.Fprintf(&sb, "- %s\n", directive)
		}
	}
	writeDefaults(&sb, ego.Defaults, 0)
	sb.WriteString("\n")

	if len(d.Critical) > 0 {
		sb.WriteString("## Critical Rules (Never Violate)\n\n")
		for _, rule := range d.Critical {
			fmt.Fprintf(&sb, "- **%s**: %s\n", rule.ID, rule.Rule)
		}
		sb.WriteString("\n")
	}

	if len(d.Advisory) > 0 {
		sb.WriteString("## Standards (Follow Consistently)\n\n")
		for _, rule := range d.Advisory {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", rule.ID, rule.Severity, rule.Rule)
		}
		sb.WriteString("\n")
	}

	if len(ego.Modes) > 0 {
		sb.WriteString("## Available Modes\n\n")
		for _, name := range slices.Sorted(maps.Keys(ego.Modes)) {
			mode := ego.Modes[name]
			fmt.Fprintf(&sb, "### /%s\n\n", name)
			if mode.Focus != "" {
				fmt.Fprintf(&sb, "Focus: %s.\n", mode.Focus)
			}
			if mode.Verbosity != "" {
				fmt.Fprintf(&sb, "Verbosity: %s.\n", mode.Verbosity)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

type claudeSettings struct {
	Permissions claudePermissions `json:"permissions"`
	Behavior    claudeBehavior    `json:"behavior"`
	Automation  claudeAutomation  `json:"automation"`
}

type claudePermissions struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
	Ask   []string `json:"ask"`
}

type claudeBehavior struct {
	DocumentationStandards map[string]bool `json:"documentation_standards"`
	SecurityFirst          bool            `json:"security_first"`
	RequireConfirmation    bool            `json:"require_confirmation_for_critical"`
}

type claudeAutomation struct {
	AutoFixRules []string `json:"auto_fix_rules"`
	SuggestFixes bool     `json:"suggest_fixes"`
}

// renderClaudeSettings derives the settings document from rule
// severity and category: critical security rules are denied outright,
// other critical rules prompt for confirmation, advisory rules are
// allowed alongside the baseline tool list.
func renderClaudeSettings(d Derivations) string {
	settings := claudeSettings{
		Permissions: claudePermissions{
			Allow: slices.Clone(claudeBaselineAllow),
			Deny:  []string{},
			Ask:   []string{},
		},
		Behavior: claudeBehavior{
			SecurityFirst:          d.SecurityFirst,
			RequireConfirmation:    d.RequireConfirmation,
			DocumentationStandards: d.DocumentationStandards,
		},
		Automation: claudeAutomation{
			SuggestFixes: d.SuggestFixes,
			AutoFixRules: append([]string{}, d.AutoFixRuleIDs...),
		},
	}

	for _, rule := range d.Critical {
		if rule.HasTag(securityTag) {
			settings.Permissions.Deny = append(settings.Permissions.Deny, "rule:"+rule.ID)
		} else {
			settings.Permissions.Ask = append(settings.Permissions.Ask, "rule:"+rule.ID)
		}
	}

	for _, rule := range d.Advisory {
		settings.Permissions.Allow = append(settings.Permissions.Allow, "rule:"+rule.ID)
	}

	b, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		// Marshaling a struct of strings and bools cannot fail.
		panic(err)
	}

	return string(b) + "\n"
}

func renderClaudeCommand(name string, d Derivations) string {
	var body string

	switch name {
	case "validate":
		body = fmt.Sprintf("Check the working tree against all %s and report every violation with its rule id.", d.StandardsPhrase())
	case "security-review":
		body = "Review the staged changes for security rule violations. Treat every critical security rule as blocking."
	case "compliance-check":
		body = fmt.Sprintf("Summarize compliance with the %s in effect: list satisfied, violated, and not-applicable rules.", d.StandardsPhrase())
	case "refresh-policies":
		body = "Re-read CLAUDE.md and the policy artifacts in this repository, then confirm which rules are in effect."
	case "checkpoint":
		body = "Summarize the work so far and verify no critical rule was violated before continuing."
	case "periodic-refresh":
		body = "Re-read the critical rules section of CLAUDE.md. Long sessions drift; this commands re-anchors the constitution."
	case "before-code":
		body = "Before writing code, restate the applicable rules and conventions for the files you are about to change."
	case "recall-policies":
		body = fmt.Sprintf("List all %s from memory, grouped by severity, and flag any you are uncertain about.", d.StandardsPhrase())
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "# /%s\n\n", name)
	sb.WriteString(body + "\n")

	return sb.String()
}

func renderModeCommand(name string, ctx *Context) string {
	mode := ctx.Ego.Modes[name]

	var sb strings.Builder

	fmt.Fprintf(&sb, "# /%s\n\n", name)
	fmt.Fprintf(&sb, "Switch to %s mode.\n", name)
	if mode.Focus != "" {
		fmt.Fprintf(&sb, "\nFocus: %s.\n", mode.Focus)
	}
	if mode.Verbosity != "" {
		fmt.Fprintf(&sb, "Verbosity: %s.\n", mode.Verbosity)
	}

	return sb.String()
}
