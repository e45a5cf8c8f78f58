// Package egos provides the EgoCharter document type for the egokit
// policy registry. An ego document describes the persona (role, tone,
// defaults) compiled alongside the policy rules.
package egos

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/egokit/egokit/api"
	"github.com/egokit/egokit/api/v1beta1"
	"github.com/egokit/egokit/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen/ego/main.go -o egos.v1beta1.json

var (
	//go:embed global.yaml
	defaultEgoYAML []byte

	//go:embed egos.v1beta1.json
	egoSchemaJSON []byte

	// DefaultValidator validates ego documents against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/egos.v1beta1.json", egoSchemaJSON)

	// Compile-time interface checks.
	_ v1beta1.Object = (*EgoCharter)(nil)
)

// ToneConfig describes voice and formatting preferences.
type ToneConfig struct {
	// Voice is the overall communication register, e.g. `concise and direct`.
	Voice string `json:"voice,omitempty" jsonschema:"title=Voice"`
	// Verbosity sets the default response length, e.g. `minimal`.
	Verbosity string `json:"verbosity,omitempty" jsonschema:"title=Verbosity"`
	// Formatting is an ordered list of style directives.
	Formatting []string `json:"formatting,omitempty" jsonschema:"title=Formatting"`
}

// ModeConfig overrides behavior for a named working mode.
type ModeConfig struct {
	// Verbosity overrides the tone verbosity while the mode is active.
	Verbosity string `json:"verbosity,omitempty" jsonschema:"title=Verbosity"`
	// Focus states what the mode concentrates on.
	Focus string `json:"focus,omitempty" jsonschema:"title=Focus"`
}

// EgoConfig is the persona: role, tone, conventions, and modes.
type EgoConfig struct {
	// Role is the persona's role description.
	Role string `json:"role,omitempty" jsonschema:"title=Role"`
	// Tone holds voice and formatting preferences.
	Tone *ToneConfig `json:"tone,omitempty" jsonschema:"title=Tone"`
	// Defaults maps named conventions (e.g. `structure`, `testing`) to their values.
	Defaults map[string]any `json:"defaults,omitempty" jsonschema:"title=Defaults"`
	// ReviewerChecklist is the ordered list of review reminders.
	ReviewerChecklist []string `json:"reviewer_checklist,omitempty" jsonschema:"title=Reviewer Checklist"`
	// AskWhenUnsure lists situations that require asking before acting.
	AskWhenUnsure []string `json:"ask_when_unsure,omitempty" jsonschema:"title=Ask When Unsure"`
	// Modes maps mode names to their overrides.
	Modes map[string]ModeConfig `json:"modes,omitempty" jsonschema:"title=Modes"`
}

// EnsureDefaults initializes nil fields to their default values.
func (c *EgoConfig) EnsureDefaults() {
	if c.Tone == nil {
		c.Tone = &ToneConfig{}
	}
	if c.Defaults == nil {
		c.Defaults = map[string]any{}
	}
	if c.Modes == nil {
		c.Modes = map[string]ModeConfig{}
	}
}

// EgoCharter is the per-scope persona document, stored under the
// registry's `ego/` directory at a path mirroring the scope.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type EgoCharter struct {
	// Ego is the persona configuration.
	Ego             *EgoConfig `json:"ego" jsonschema:"title=Ego"`
	v1beta1.DocMeta `json:",inline"`
}

// New creates a new [EgoCharter] with default values.
func New() *EgoCharter {
	e := &EgoCharter{
		DocMeta: v1beta1.DocMeta{
			Version: "1.0.0",
		},
	}
	e.EnsureDefaults()

	return e
}

// EnsureDefaults initializes nil fields to their default values.
func (e *EgoCharter) EnsureDefaults() {
	if e.Ego == nil {
		e.Ego = &EgoConfig{}
	}

	e.Ego.EnsureDefaults()
}

func (e EgoCharter) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithVersion(jss)
}

// MarshalYAML serializes the ego charter to YAML.
func (e EgoCharter) MarshalYAML() ([]byte, error) {
	type alias EgoCharter

	b, err := api.MarshalYAML(alias(e))
	if err != nil {
		return nil, fmt.Errorf("marshal ego charter: %w", err)
	}

	return b, nil
}

// Write writes the ego charter to the specified path if it doesn't already exist.
func (e EgoCharter) Write(path string) error {
	b, err := e.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write ego charter: %w", err)
	}

	return nil
}

// WriteDefault writes the embedded default global.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultEgoYAML, force, "ego")
	if err != nil {
		return fmt.Errorf("write default ego: %w", err)
	}

	return nil
}

// SchemaJSON returns the embedded ego JSON schema artifact.
func SchemaJSON() []byte {
	return egoSchemaJSON
}
