package registry

import (
	"maps"
	"slices"

	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/api/v1beta1/egos"
)

// MergedRule is a charter rule annotated with the category it was
// defined under, as it appears in the flattened merge output.
type MergedRule struct {
	charters.PolicyRule

	// Category is the charter category the rule came from.
	Category string
}

// MergeScopeRules flattens the charter's rules for the given scope
// chain, lowest precedence first. When a later scope defines a rule
// with an id already present, the later definition replaces the
// earlier one in place: the merged list holds the union of rule ids,
// each at its first-occurrence position, with the content of the
// highest-precedence scope that defines it.
func (r *Registry) MergeScopeRules(charter *charters.Charter, scopes []string) ([]MergedRule, error) {
	var merged []MergedRule

	index := map[string]int{}

	for _, scope := range scopes {
		ruleSet, ok := charter.Scopes[scope]
		if !ok {
			return nil, &ScopeError{Scope: scope}
		}

		// Categories iterate sorted so the merged order is deterministic.
		for _, category := range slices.Sorted(maps.Keys(ruleSet)) {
			for _, rule := range ruleSet[category] {
				mr := MergedRule{PolicyRule: rule, Category: category}

				if i, seen := index[rule.ID]; seen {
					merged[i] = mr
				} else {
					index[rule.ID] = len(merged)
					merged = append(merged, mr)
				}
			}
		}
	}

	return merged, nil
}

// MergeEgoConfigs loads and structurally merges the ego documents for
// the given scope chain, lowest precedence first. Merge strategies per
// field kind:
//
//   - scalars: last non-empty writer wins
//   - lists: a scope replaces the inherited list only when it supplies
//     a non-empty list; otherwise the previous value is inherited
//   - maps: key-wise recursive merge, parent-only keys retained
func (r *Registry) MergeEgoConfigs(scopes []string, validate bool) (*egos.EgoConfig, error) {
	merged := &egos.EgoConfig{}
	merged.EnsureDefaults()

	for _, scope := range scopes {
		ego, err := r.LoadEgoConfig(scope, validate)
		if err != nil {
			return nil, err
		}

		merged = mergeEgo(merged, ego)
	}

	return merged, nil
}

func mergeEgo(base, override *egos.EgoConfig) *egos.EgoConfig {
	out := &egos.EgoConfig{
		Role:              lastNonEmpty(base.Role, override.Role),
		Tone:              mergeTone(base.Tone, override.Tone),
		Defaults:          mergeMapRecursive(base.Defaults, override.Defaults),
		ReviewerChecklist: replaceIfNonEmpty(base.ReviewerChecklist, override.ReviewerChecklist),
		AskWhenUnsure:     replaceIfNonEmpty(base.AskWhenUnsure, override.AskWhenUnsure),
		Modes:             mergeModes(base.Modes, override.Modes),
	}
	out.EnsureDefaults()

	return out
}

func mergeTone(base, override *egos.ToneConfig) *egos.ToneConfig {
	if base == nil {
		base = &egos.ToneConfig{}
	}
	if override == nil {
		override = &egos.ToneConfig{}
	}

	return &egos.ToneConfig{
		Voice:      lastNonEmpty(base.Voice, override.Voice),
		Verbosity:  lastNonEmpty(base.Verbosity, override.Verbosity),
		Formatting: replaceIfNonEmpty(base.Formatting, override.Formatting),
	}
}

func mergeModes(base, override map[string]egos.ModeConfig) map[string]egos.ModeConfig {
	out := map[string]egos.ModeConfig{}
	maps.Copy(out, base)

	for name, mode := range override {
		if parent, ok := out[name]; ok {
			out[name] = egos.ModeConfig{
				Verbosity: lastNonEmpty(parent.Verbosity, mode.Verbosity),
				Focus:     lastNonEmpty(parent.Focus, mode.Focus),
			}
		} else {
			out[name] = mode
		}
	}

	return out
}

// lastNonEmpty is the scalar merge strategy.
func lastNonEmpty[T comparable](base, override T) T {
	var zero T
	if override != zero {
		return override
	}

	return base
}

// replaceIfNonEmpty is the list merge strategy. The result is a copy,
// never an alias of either input.
func replaceIfNonEmpty[S ~[]E, E any](base, override S) S {
	if len(override) > 0 {
		return slices.Clone(override)
	}

	return slices.Clone(base)
}

// mergeMapRecursive is the map merge strategy: child keys override
// same-named parent keys, descending into nested maps; keys present
// only in the parent are retained.
func mergeMapRecursive(base, override map[string]any) map[string]any {
	out := map[string]any{}
	maps.Copy(out, base)

	for key, value := range override {
		baseMap, baseOK := out[key].(map[string]any)
		overrideMap, overrideOK := value.(map[string]any)

		if baseOK && overrideOK {
			out[key] = mergeMapRecursive(baseMap, overrideMap)
		} else {
			out[key] = value
		}
	}

	return out
}
