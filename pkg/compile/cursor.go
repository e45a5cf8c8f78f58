package compile

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/egokit/egokit/api"
	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/pkg/registry"
)

const (
	cursorRulesPath = ".cursorrules"
	cursorRulesDir  = ".cursor/rules"
)

// mdcFrontmatter is the delimited metadata header of a `.mdc` rule
// file. It is YAML-encoded so the header always parses.
type mdcFrontmatter struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func compileCursor(ctx *Context, d Derivations) map[string]string {
	artifacts := map[string]string{
		cursorRulesPath: renderCursorRules(ctx, d),
	}

	groups, categories := rulesByCategory(ctx.Rules)
	for _, category := range categories {
		artifacts[path.Join(cursorRulesDir, category+".mdc")] = renderMDC(category, groups[category])
	}

	return artifacts
}

func renderCursorRules(ctx *Context, d Derivations) string {
	ego := ctx.Ego

	var sb strings.Builder

	fmt.Fprintf(&sb, "# Organizational standards (%s)\n", d.StandardsPhrase())
	fmt.Fprintf(&sb, "# Compiled %s from scopes: %s\n\n",
		ctx.GeneratedAt.Format(time.RFC3339), strings.Join(ctx.ActiveScopes, " -> "))

	if ego.Role != "" {
		fmt.Fprintf(&sb, "You are: %s.\n", ego.Role)
	}
	if ego.Tone != nil && ego.Tone.Voice != "" {
		fmt.Fprintf(&sb, "Communicate in a %s manner.\n", ego.Tone.Voice)
	}
	sb.WriteString("\n")

	groups, categories := rulesByCategory(ctx.Rules)
	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", categoryTitle(category))
		for _, rule := range groups[category] {
			fmt.Fprintf(&sb, "- [%s] %s (%s)\n", rule.ID, rule.Rule, rule.Severity)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMDC renders one `.mdc` file: a `---`-delimited frontmatter
// block followed by the rule content, ids and rule text verbatim.
func renderMDC(category string, rules []registry.MergedRule) string {
	priority := "normal"
	for _, rule := range rules {
		if rule.Severity == charters.SeverityCritical {
			priority = "high"

			break
		}
	}

	fm, err := api.MarshalYAML(mdcFrontmatter{
		Title:    categoryTitle(category) + " Rules",
		Priority: priority,
	})
	if err != nil {
		// Marshaling two string fields cannot fail.
		panic(err)
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	sb.Write(fm)
	sb.WriteString("---\n\n")

	for _, rule := range rules {
		fmt.Fprintf(&sb, "## %s\n\n", rule.ID)
		fmt.Fprintf(&sb, "%s\n\n", rule.Rule)
		fmt.Fprintf(&sb, "Severity: %s. Detector: %s.\n\n", rule.Severity, rule.Detector)
		if rule.ExampleViolation != "" {
			fmt.Fprintf(&sb, "Violation:\n\n```\n%s\n```\n\n", rule.ExampleViolation)
		}
		if rule.ExampleFix != "" {
			fmt.Fprintf(&sb, "Fix:\n\n```\n%s\n```\n\n", rule.ExampleFix)
		}
	}

	return sb.String()
}

// categoryTitle renders a category key as a heading, e.g.
// `code_quality` becomes `Code Quality`.
func categoryTitle(category string) string {
	words := strings.Split(category, "_")
	for i, word := range words {
		if word == "" {
			continue
		}

		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
