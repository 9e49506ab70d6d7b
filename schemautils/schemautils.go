// Package schemautils adapts a real JSON Schema engine to the apievent
// Schema collaborator interface. The core package works without it; it is
// only needed when a caller asks for schema validation.
package schemautils

import (
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompiledSchema is a compiled JSON Schema usable as an apievent.Schema.
type CompiledSchema struct {
	schema *jsonschema.Schema
}

// Compile compiles a JSON Schema document.
func Compile(schemaJSON string) (*CompiledSchema, error) {
	schema, err := jsonschema.CompileString("schema.json", schemaJSON)
	if err != nil {
		return nil, errors.Wrap(err, "failed compiling schema")
	}
	return &CompiledSchema{schema: schema}, nil
}

// MustCompile compiles a JSON Schema document and panics on failure. For
// schemas fixed at startup.
func MustCompile(schemaJSON string) *CompiledSchema {
	schema, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return schema
}

// Validate checks a decoded JSON payload against the schema. The returned
// error carries the engine's violation description verbatim.
func (s *CompiledSchema) Validate(payload interface{}) error {
	return s.schema.Validate(payload)
}
