package ports

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
)

// Tool is a callable capability exposed to the model. Implementations live
// outside the engine; the engine references tools by name only and never
// inspects their internals.
type Tool interface {
	// Name is the stable identifier the model uses to request the tool.
	Name() string

	// Description is shown to the model when tools are registered.
	Description() string

	// ParameterSchema describes the expected arguments. May be nil for
	// tools without arguments.
	ParameterSchema() *openapi3.Schema

	// Validate checks arguments before execution. A non-nil error is
	// recorded into the transcript as a failed tool result, never raised to
	// the caller.
	Validate(args map[string]any) error

	// Execute runs the tool. Errors are absorbed as failed tool results.
	Execute(ctx context.Context, args map[string]any) (any, error)

	// RequiresConfirmation reports whether this specific call needs human
	// approval before executing. The confirmation policy table may gate the
	// call regardless of this predicate.
	RequiresConfirmation(args map[string]any) bool
}
