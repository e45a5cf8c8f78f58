// Package charters provides the PolicyCharter document type for the
// egokit policy registry.
package charters

import (
	"fmt"
	"regexp"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/egokit/egokit/api"
	"github.com/egokit/egokit/api/v1beta1"
	"github.com/egokit/egokit/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/charter/main.go -o charters.v1beta1.json

var (
	//go:embed charter.yaml
	defaultCharterYAML []byte

	//go:embed charters.v1beta1.json
	charterSchemaJSON []byte

	// DefaultValidator validates charter documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/charters.v1beta1.json", charterSchemaJSON)

	// RuleIDPattern constrains rule identifiers to `SCOPE-NNN`.
	RuleIDPattern = regexp.MustCompile(`^[A-Z]+-\d{3}$`)

	// DetectorPattern constrains detector references to `namespace.name.vN`.
	DetectorPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*\.v\d+$`)

	// Compile-time interface checks.
	_ v1beta1.Object = (*Charter)(nil)
)

// Severity is the enforcement level of a [PolicyRule].
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ValidSeverities contains the accepted severity values.
var ValidSeverities = []Severity{SeverityInfo, SeverityWarning, SeverityCritical}

// PolicyRule is a single organizational standard. The rule text is the
// source of truth for every generated artifact and is never paraphrased.
type PolicyRule struct {
	// ID is the rule identifier, `SCOPE-NNN`, unique within a merged set.
	ID string `json:"id" jsonschema:"title=ID"`
	// Rule is the human-readable imperative rule text.
	Rule string `json:"rule" jsonschema:"title=Rule"`
	// Severity is one of: info, warning, critical.
	Severity Severity `json:"severity" jsonschema:"title=Severity"`
	// Detector names the external checker for this rule, `namespace.name.vN`.
	Detector string `json:"detector" jsonschema:"title=Detector"`
	// AutoFix indicates the detector can rewrite violations.
	AutoFix bool `json:"auto_fix,omitempty" jsonschema:"title=Auto Fix"`
	// ExampleViolation shows a failing snippet.
	ExampleViolation string `json:"example_violation,omitempty" jsonschema:"title=Example Violation"`
	// ExampleFix shows the corrected snippet.
	ExampleFix string `json:"example_fix,omitempty" jsonschema:"title=Example Fix"`
	// Tags are free-form labels, e.g. `security`.
	Tags []string `json:"tags,omitempty" jsonschema:"title=Tags"`
}

// HasTag reports whether the rule carries the given tag.
func (r PolicyRule) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

// JSONSchemaExtend mirrors the [PolicyRule.Validate] constraints in the
// generated schema, so documents fail validation before loading.
func (r PolicyRule) JSONSchemaExtend(jss *jsonschema.Schema) {
	id, ok := jss.Properties.Get("id")
	if !ok {
		panic("id property not found in schema")
	}

	id.Pattern = RuleIDPattern.String()
	_, _ = jss.Properties.Set("id", id)

	rule, ok := jss.Properties.Get("rule")
	if !ok {
		panic("rule property not found in schema")
	}

	minLen := uint64(1)
	rule.MinLength = &minLen
	_, _ = jss.Properties.Set("rule", rule)

	severity, ok := jss.Properties.Get("severity")
	if !ok {
		panic("severity property not found in schema")
	}

	for _, s := range ValidSeverities {
		severity.Enum = append(severity.Enum, string(s))
	}

	_, _ = jss.Properties.Set("severity", severity)

	detector, ok := jss.Properties.Get("detector")
	if !ok {
		panic("detector property not found in schema")
	}

	detector.Pattern = DetectorPattern.String()
	_, _ = jss.Properties.Set("detector", detector)
}

// Validate checks the rule against the identifier and detector patterns.
func (r PolicyRule) Validate() error {
	if !RuleIDPattern.MatchString(r.ID) {
		return fmt.Errorf("rule %q: id must match %s", r.ID, RuleIDPattern)
	}
	if r.Rule == "" {
		return fmt.Errorf("rule %q: rule text must not be empty", r.ID)
	}
	if !DetectorPattern.MatchString(r.Detector) {
		return fmt.Errorf("rule %q: detector %q must match %s", r.ID, r.Detector, DetectorPattern)
	}

	validSeverity := false
	for _, s := range ValidSeverities {
		if r.Severity == s {
			validSeverity = true

			break
		}
	}
	if !validSeverity {
		return fmt.Errorf("rule %q: severity %q must be one of %v", r.ID, r.Severity, ValidSeverities)
	}

	return nil
}

// ScopeRuleSet maps a category name to its ordered rule list. Category
// names are labels like `security`, `code_quality`, or `documentation`;
// category lists are append-only per scope.
type ScopeRuleSet map[string][]PolicyRule

// Metadata holds free-form charter descriptors.
type Metadata struct {
	// Description describes the charter.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
	// Maintainer identifies the owning team or person.
	Maintainer string `json:"maintainer,omitempty" jsonschema:"title=Maintainer"`
	// Organization names the organization the charter governs.
	Organization string `json:"organization,omitempty" jsonschema:"title=Organization"`
}

// Charter is the policy charter document: every organizational rule,
// organized by scope and category. Loaded once per invocation and never
// mutated; merges always produce new rule lists.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Charter struct {
	// Scopes maps a scope path (e.g. `global`, `teams/backend`) to its rule set.
	Scopes map[string]ScopeRuleSet `json:"scopes" jsonschema:"title=Scopes"`
	// Metadata holds free-form charter descriptors.
	Metadata *Metadata `json:"metadata,omitempty" jsonschema:"title=Metadata"`

	v1beta1.DocMeta `json:",inline"`
}

// New creates a new [Charter] with default values.
func New() *Charter {
	c := &Charter{
		DocMeta: v1beta1.DocMeta{
			Version: "1.0.0",
		},
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Charter) EnsureDefaults() {
	if c.Scopes == nil {
		c.Scopes = map[string]ScopeRuleSet{}
	}
}

// HasScope reports whether the charter defines the given scope path.
func (c *Charter) HasScope(scope string) bool {
	_, ok := c.Scopes[scope]

	return ok
}

// Validate validates every rule in every scope.
func (c *Charter) Validate() error {
	for scope, ruleSet := range c.Scopes {
		for category, rules := range ruleSet {
			for _, rule := range rules {
				err := rule.Validate()
				if err != nil {
					return fmt.Errorf("scope %q category %q: %w", scope, category, err)
				}
			}
		}
	}

	return nil
}

func (c Charter) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithVersion(jss)
}

// MarshalYAML serializes the charter to YAML.
func (c Charter) MarshalYAML() ([]byte, error) {
	type alias Charter

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal charter: %w", err)
	}

	return b, nil
}

// Write writes the charter to the specified path if it doesn't already exist.
func (c Charter) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write charter: %w", err)
	}

	return nil
}

// WriteDefault writes the embedded default charter.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultCharterYAML, force, "charter")
	if err != nil {
		return fmt.Errorf("write default charter: %w", err)
	}

	return nil
}

// SchemaJSON returns the embedded charter JSON schema artifact.
func SchemaJSON() []byte {
	return charterSchemaJSON
}
