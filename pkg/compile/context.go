// Package compile maps a compilation context to the artifact files of a
// downstream agent variant. Compilation is a pure function of the
// context: identical contexts produce byte-identical artifact maps.
package compile

import (
	"slices"
	"time"

	"github.com/egokit/egokit/api/v1beta1/egos"
	"github.com/egokit/egokit/pkg/registry"
)

// Context is the immutable snapshot consumed by a single compile call:
// the merged rule list, the merged persona, the active scope chain
// (precedence increasing left to right), and a generation timestamp.
// It is constructed fresh per invocation and discarded after use.
type Context struct {
	GeneratedAt  time.Time
	Ego          *egos.EgoConfig
	TargetRepo   string
	Rules        []registry.MergedRule
	ActiveScopes []string
}

// NewContext builds a [Context]. The rule and scope slices are cloned
// so later caller mutations cannot leak into the snapshot.
func NewContext(
	targetRepo string,
	rules []registry.MergedRule,
	ego *egos.EgoConfig,
	scopes []string,
	generatedAt time.Time,
) *Context {
	return &Context{
		TargetRepo:   targetRepo,
		Rules:        slices.Clone(rules),
		Ego:          ego,
		ActiveScopes: slices.Clone(scopes),
		GeneratedAt:  generatedAt.UTC(),
	}
}
