package compile

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/pkg/registry"
)

const (
	securityTag           = "security"
	documentationCategory = "documentation"
)

// docPhraseFlags is the fixed lookup of recognized documentation-style
// phrases. A documentation-category rule whose text contains a phrase
// sets the corresponding flag. Text beyond these phrases is not
// interpreted.
var docPhraseFlags = []struct {
	Flag   string
	Phrase string
}{
	{Flag: "no_superlatives", Phrase: "superlative"},
	{Flag: "active_voice", Phrase: "active voice"},
	{Flag: "present_tense", Phrase: "present tense"},
	{Flag: "no_emoji", Phrase: "emoji"},
}

// Derivations are the cross-artifact facts computed once per compile
// and reused by every variant's renderer, so every surface reports the
// same values.
type Derivations struct {
	DocumentationStandards map[string]bool
	Critical               []registry.MergedRule
	Advisory               []registry.MergedRule
	AutoFixRuleIDs         []string
	TotalStandards         int
	SecurityFirst          bool
	RequireConfirmation    bool
	SuggestFixes           bool
}

// Derive computes the shared derivations from the merged rule list.
func Derive(rules []registry.MergedRule) Derivations {
	d := Derivations{
		DocumentationStandards: map[string]bool{},
		TotalStandards:         len(rules),
	}

	for _, rule := range rules {
		if rule.Severity == charters.SeverityCritical {
			d.Critical = append(d.Critical, rule)
			d.RequireConfirmation = true

			if rule.HasTag(securityTag) {
				d.SecurityFirst = true
			}
		} else {
			d.Advisory = append(d.Advisory, rule)
		}

		if rule.AutoFix {
			d.SuggestFixes = true
			d.AutoFixRuleIDs = append(d.AutoFixRuleIDs, rule.ID)
		}

		if rule.Category == documentationCategory {
			text := strings.ToLower(rule.Rule)
			for _, pf := range docPhraseFlags {
				if strings.Contains(text, pf.Phrase) {
					d.DocumentationStandards[pf.Flag] = true
				}
			}
		}
	}

	return d
}

// StandardsPhrase is the single source for the "N organizational
// standards" fact rendered across artifacts and CLI output.
func (d Derivations) StandardsPhrase() string {
	return fmt.Sprintf("%d organizational standards", d.TotalStandards)
}

// rulesByCategory groups rules by category, returning the groups and
// the sorted category names.
func rulesByCategory(rules []registry.MergedRule) (map[string][]registry.MergedRule, []string) {
	groups := map[string][]registry.MergedRule{}
	for _, rule := range rules {
		groups[rule.Category] = append(groups[rule.Category], rule)
	}

	return groups, slices.Sorted(maps.Keys(groups))
}
