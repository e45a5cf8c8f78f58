package compile

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// renderEgoCard renders the agent-agnostic persona summary shared by
// all variants.
func renderEgoCard(ctx *Context, d Derivations) string {
	ego := ctx.Ego

	var sb strings.Builder

	sb.WriteString("# Ego Card\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n", ctx.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Active scopes: %s\n", strings.Join(ctx.ActiveScopes, " -> "))
	fmt.Fprintf(&sb, "Standards in effect: %s\n\n", d.StandardsPhrase())

	if ego.Role != "" {
		sb.WriteString("## Role\n\n")
		sb.WriteString(ego.Role + "\n\n")
	}

	if ego.Tone != nil {
		sb.WriteString("## Tone\n\n")
		if ego.Tone.Voice != "" {
			fmt.Fprintf(&sb, "- Voice: %s\n", ego.Tone.Voice)
		}
		if ego.Tone.Verbosity != "" {
			fmt.Fprintf(&sb, "- Verbosity: %s\n", ego.Tone.Verbosity)
		}
		for _, directive := range ego.Tone.Formatting {
			fmt.Fprintf(&sb, "- %s\n", directive)
		}
		sb.WriteString("\n")
	}

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

	if len(ego.Modes) > 0 {
		sb.WriteString("## Modes\n\n")
		for _, name := range slices.Sorted(maps.Keys(ego.Modes)) {
			mode := ego.Modes[name]
			fmt.Fprintf(&sb, "### %s\n\n", name)
			if mode.Focus != "" {
				fmt.Fprintf(&sb, "- Focus: %s\n", mode.Focus)
			}
			if mode.Verbosity != "" {
				fmt.Fprintf(&sb, "- Verbosity: %s\n", mode.Verbosity)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// writeDefaults renders the defaults map as nested bullets, keys
// sorted for deterministic output.
func writeDefaults(sb *strings.Builder, defaults map[string]any, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		if nested, ok := defaults[key].(map[string]any); ok {
			fmt.Fprintf(sb, "%s- %s:\n", indent, key)
			writeDefaults(sb, nested, depth+1)
		} else {
			fmt.Fprintf(sb, "%s- %s: %v\n", indent, key, defaults[key])
		}
	}
}
