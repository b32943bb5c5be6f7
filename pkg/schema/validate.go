package schema

import "github.com/getkin/kin-openapi/openapi3"

// Validate checks args against the schema. A nil schema accepts anything.
// Returns a *ValidationError describing every failure kin-openapi reports.
func Validate(s *openapi3.Schema, args map[string]any) error {
	if s == nil {
		return nil
	}

	// VisitJSON walks the value against the schema, checking types, required
	// fields and enums in one pass.
	value := any(args)
	if args == nil {
		value = map[string]any{}
	}

	if err := s.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
