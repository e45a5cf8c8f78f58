package main

import (
	"flag"
	"log"
	"os"

	"github.com/egokit/egokit/api/v1beta1/egos"
	"github.com/egokit/egokit/pkg/yaml"
)

var outFile = flag.String("o", "schema.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	// Comments are scanned from the parent directory so the shared
	// v1beta1 document metadata is documented too.
	gen := yaml.NewSchemaGenerator(egos.New(),
		"github.com/egokit/egokit/api/v1beta1/egos", "..",
	)
	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	// Write schema.json file.
	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
