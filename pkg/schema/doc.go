/*
Package schema provides helpers for declaring and validating tool parameter
schemas.

Schemas are plain OpenAPI 3 schemas (getkin/kin-openapi), so tool definitions
serialize directly into the JSON-schema shape model backends expect.

Example:

	params := schema.Object(map[string]*openapi3.Schema{
		"path":    schema.String("File path to read"),
		"max_len": schema.Integer("Optional byte limit"),
	}, "path")

	if err := schema.Validate(params, args); err != nil {
		// err is a *schema.ValidationError
	}
*/
package schema
