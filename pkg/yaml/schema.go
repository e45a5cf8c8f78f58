package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator generates a JSON schema for a configuration object.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	obj  any
	pkg  string
	dirs []string
}

// NewSchemaGenerator creates a [SchemaGenerator] for the given object.
// pkg is the import path of the generator's working directory; the
// provided directories, relative to that directory, are scanned for Go
// comments, which become descriptions in the generated schema.
func NewSchemaGenerator(obj any, pkg string, dirs ...string) *SchemaGenerator {
	return &SchemaGenerator{
		obj:  obj,
		pkg:  pkg,
		dirs: dirs,
	}
}

// Generate reflects the object into an indented JSON schema document.
// The output is deterministic, so generated schema artifacts can be
// checked in and diffed.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		Anonymous:      true,
	}

	for _, dir := range g.dirs {
		err := r.AddGoComments(g.pkg, dir)
		if err != nil {
			return nil, fmt.Errorf("add go comments for %s: %w", dir, err)
		}
	}

	jss := r.Reflect(g.obj)

	jsData, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(jsData, '\n'), nil
}
