package compile

import (
	"fmt"
	"slices"
	"strings"
)

// Agent selects which downstream artifact format to compile. The set
// is closed: adding a variant means adding a constant and a renderer,
// not scattering string comparisons.
type Agent string

const (
	AgentClaude  Agent = "claude"
	AgentCursor  Agent = "cursor"
	AgentAugment Agent = "augment"
)

// AllAgents contains the accepted agent variants.
var AllAgents = []Agent{AgentClaude, AgentCursor, AgentAugment}

// EgoCardPath is the agent-agnostic persona summary emitted by every
// variant.
const EgoCardPath = "EGO.md"

// ParseAgent resolves an agent name, rejecting unknown names with an
// error listing the accepted values.
func ParseAgent(name string) (Agent, error) {
	a := Agent(strings.ToLower(name))
	if slices.Contains(AllAgents, a) {
		return a, nil
	}

	accepted := make([]string, len(AllAgents))
	for i, agent := range AllAgents {
		accepted[i] = string(agent)
	}

	return "", fmt.Errorf("unknown agent %q, accepted values: %s", name, strings.Join(accepted, ", "))
}

// Compile produces the artifact map (relative path -> content) for the
// agent variant. An unrecognized variant fails before any content is
// generated; no partial artifact map is ever returned.
func (a Agent) Compile(ctx *Context) (map[string]string, error) {
	if !slices.Contains(AllAgents, a) {
		return nil, fmt.Errorf("unknown agent %q", string(a))
	}

	d := Derive(ctx.Rules)

	var artifacts map[string]string

	switch a {
	case AgentClaude:
		artifacts = compileClaude(ctx, d)
	case AgentCursor:
		artifacts = compileCursor(ctx, d)
	case AgentAugment:
		artifacts = compileAugment(ctx, d)
	}

	// Every variant carries the agent-agnostic ego card.
	artifacts[EgoCardPath] = renderEgoCard(ctx, d)

	return artifacts, nil
}
