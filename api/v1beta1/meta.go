// Package v1beta1 contains the v1beta1 document types for the egokit
// policy registry.
package v1beta1

import "github.com/invopop/jsonschema"

// SemverPattern constrains the document version field.
const SemverPattern = `^\d+\.\d+\.\d+$`

// DocMeta contains the version metadata common to all registry documents.
type DocMeta struct {
	// Version specifies the semantic version of this document.
	Version string `json:"version" jsonschema:"title=Version"`
}

// GetVersion returns the document version.
func (dm DocMeta) GetVersion() string {
	return dm.Version
}

// Object is the interface that all registry document types implement.
type Object interface {
	GetVersion() string
	EnsureDefaults()
}

// ExtendSchemaWithVersion constrains the version property to semantic
// version strings.
func ExtendSchemaWithVersion(jss *jsonschema.Schema) {
	version, ok := jss.Properties.Get("version")
	if !ok {
		panic("version property not found in schema")
	}

	version.Pattern = SemverPattern
	version.Title = "Version"

	_, _ = jss.Properties.Set("version", version)
}
