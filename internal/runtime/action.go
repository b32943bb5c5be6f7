package runtime

import "github.com/dodgeblaster/orange-agent/pkg/domain"

// Action is the next step the engine must take, derived purely from the kind
// of the most recent substantive transcript entry.
type Action int

const (
	// ActionAwaitUser yields control back to the caller (terminal per turn).
	ActionAwaitUser Action = iota

	// ActionInvokeModel sends the transcript to the model backend.
	ActionInvokeModel

	// ActionRunTool executes the earliest unresolved tool request.
	ActionRunTool
)

func (a Action) String() string {
	switch a {
	case ActionInvokeModel:
		return "invoke_model"
	case ActionRunTool:
		return "run_tool"
	default:
		return "awaiting_user"
	}
}

// NextAction computes the engine's next step from the transcript tail.
// Trailing info entries are transparent; an empty (or info-only) transcript
// awaits user input.
func (e *Engine) NextAction() Action {
	last, ok := e.log.LastSubstantive()
	if !ok {
		return ActionAwaitUser
	}

	switch last.Kind {
	case domain.KindUser:
		return ActionInvokeModel
	case domain.KindToolRequest:
		// Append-only ordering means a tail tool-request cannot have a
		// result yet.
		return ActionRunTool
	case domain.KindToolResult:
		// Feed the result back to the model.
		return ActionInvokeModel
	default:
		// system or assistant tail: the turn is over.
		return ActionAwaitUser
	}
}
