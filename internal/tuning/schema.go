package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed tuning.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("tuning.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// ValidateSchema checks the shape of a tuning YAML document: known keys only,
// numbers where numbers are expected. Range rules live in ValidateRaw.
func ValidateSchema(doc []byte) error {
	var v any
	if err := yaml.Unmarshal(doc, &v); err != nil {
		return err
	}
	if v == nil {
		return nil // empty file
	}
	// round-trip through JSON so the validator sees JSON types only
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	var jv any
	if err := json.Unmarshal(b, &jv); err != nil {
		return err
	}
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile tuning schema: %w", err)
	}
	if err := s.Validate(jv); err != nil {
		return fmt.Errorf("tuning schema: %w", err)
	}
	return nil
}
