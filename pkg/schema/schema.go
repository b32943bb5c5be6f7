package schema

import (
	"encoding/json"

	"github.com/getkin/kin-openapi/openapi3"
)

// Object builds an object schema with the given properties. Names listed in
// required must be present in params at validation time.
func Object(props map[string]*openapi3.Schema, required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	for name, prop := range props {
		s.WithProperty(name, prop)
	}
	s.Required = required
	return s
}

// String builds a string property schema.
func String(description string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Description = description
	return s
}

// Integer builds an integer property schema.
func Integer(description string) *openapi3.Schema {
	s := openapi3.NewIntegerSchema()
	s.Description = description
	return s
}

// Number builds a number property schema.
func Number(description string) *openapi3.Schema {
	s := openapi3.NewFloat64Schema()
	s.Description = description
	return s
}

// Boolean builds a boolean property schema.
func Boolean(description string) *openapi3.Schema {
	s := openapi3.NewBoolSchema()
	s.Description = description
	return s
}

// Enum builds a string property schema restricted to the given values.
func Enum(description string, values ...string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Description = description
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}

// AsMap serializes a schema into the generic map shape backend SDKs expect
// for tool parameter definitions. Returns an empty object schema for nil.
func AsMap(s *openapi3.Schema) map[string]any {
	if s == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return out
}
