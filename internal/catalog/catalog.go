// Package catalog loads move and card definitions from YAML.
//
// A catalog document is validated against an embedded JSON schema before it
// is decoded, so structural mistakes are reported with their location in the
// document. Game rules that the schema cannot express are checked by
// vw.NewCatalog.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"vaultwars/internal/vw"
)

//go:embed default.yaml
var defaultCatalog []byte

//go:embed catalog.schema.json
var schemaJSON []byte

const schemaURL = "catalog.schema.json"

// document is the YAML layout of a catalog file.
type document struct {
	Moves []vw.MoveTemplate `yaml:"moves"`
	Cards []vw.CardTemplate `yaml:"cards"`
}

// Default returns the built-in catalog.
func Default() (*vw.Catalog, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return c, nil
}

// Load reads and parses a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*vw.Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse validates raw YAML against the catalog schema and builds a catalog.
func Parse(raw []byte) (*vw.Catalog, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return vw.NewCatalog(doc.Moves, doc.Cards)
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("loading catalog schema: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}
	return s, nil
}

// validate checks the document shape. YAML is converted to its JSON
// equivalent first so the validator sees plain JSON values.
func validate(raw []byte) error {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("decoding catalog: %w", err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	js, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("catalog is not representable as JSON: %w", err)
	}
	var doc any
	if err := json.Unmarshal(js, &doc); err != nil {
		return fmt.Errorf("decoding catalog: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}
