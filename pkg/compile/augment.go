package compile

import (
	"fmt"
	"strings"
	"time"
)

const (
	augmentPolicyRulesPath = ".augment/rules/policy-rules.md"
	augmentCodingStylePath = ".augment/rules/coding-style.md"
	augmentGuidelinesPath  = ".augment/rules/guidelines.md"
)

func compileAugment(ctx *Context, d Derivations) map[string]string {
	return map[string]string{
		augmentPolicyRulesPath: renderAugmentPolicyRules(ctx, d),
		augmentCodingStylePath: renderAugmentCodingStyle(ctx),
		augmentGuidelinesPath:  renderAugmentGuidelines(ctx),
	}
}

// renderAugmentPolicyRules renders the full rule text verbatim,
// organized by category.
func renderAugmentPolicyRules(ctx *Context, d Derivations) string {
	var sb strings.Builder

	sb.WriteString("# Policy Rules\n\n")
	fmt.Fprintf(&sb, "%s, compiled %s.\n\n",
		d.StandardsPhrase(), ctx.GeneratedAt.Format(time.RFC3339))

	groups, categories := rulesByCategory(ctx.Rules)
	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", categoryTitle(category))
		for _, rule := range groups[category] {
			fmt.Fprintf(&sb, "### %s\n\n", rule.ID)
			fmt.Fprintf(&sb, "%s\n\n", rule.Rule)
			fmt.Fprintf(&sb, "- Severity: %s\n", rule.Severity)
			fmt.Fprintf(&sb, "- Detector: %s\n", rule.Detector)
			if len(rule.Tags) > 0 {
				fmt.Fprintf(&sb, "- Tags: %s\n", strings.Join(rule.Tags, ", "))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderAugmentCodingStyle renders the persona role and tone in prose.
func renderAugmentCodingStyle(ctx *Context) string {
	ego := ctx.Ego

	var sb strings.Builder

	sb.WriteString("# Coding Style\n\n")
	if ego.Role != "" {
		fmt.Fprintf(&sb, "Work as %s.\n\n", ego.Role)
	}
	if ego.Tone != nil {
		if ego.Tone.Voice != "" {
			fmt.Fprintf(&sb, "Communicate in a %s voice", ego.Tone.Voice)
			if ego.Tone.Verbosity != "" {
				fmt.Fprintf(&sb, ", keeping responses %s", ego.Tone.Verbosity)
			}
			sb.WriteString(".\n\n")
		}
		if len(ego.Tone.Formatting) > 0 {
			sb.WriteString("Formatting:\n\n")
			for _, directive := range ego.Tone.Formatting {
				fmt.Fprintf(&sb, "- %s\n", directive)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderAugmentGuidelines renders the persona defaults and reviewer
// checklist.
func renderAugmentGuidelines(ctx *Context) string {
	ego := ctx.Ego

	var sb strings.Builder

	sb.WriteString("# Guidelines\n\n")

	if len(ego.Defaults) > 0 {
		sb.WriteString("## Defaults\n\n")
		writeDefaults(&sb, ego.Defaults, 0)
		sb.WriteString("\n")
	}

	if len(ego.ReviewerChecklist) > 0 {
		sb.WriteString("## Reviewer Checklist\n\n")
		for i, item := range ego.ReviewerChecklist {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
		}
		sb.WriteString("\n")
	}

	if len(ego.AskWhenUnsure) > 0 {
		sb.WriteString("## Ask When Unsure\n\n")
		for _, item := range ego.AskWhenUnsure {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
