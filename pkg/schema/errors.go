package schema

import "fmt"

// ValidationError reports that tool arguments failed schema validation.
// It is recorded into the transcript as a failed tool result, never raised to
// the session caller.
type ValidationError struct {
	Tool string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("invalid arguments: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
