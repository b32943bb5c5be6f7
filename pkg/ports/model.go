package ports

import (
	"context"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

// ModelResponse is the backend's answer to an Invoke call: either plain
// assistant content or a batch of requested tool calls.
type ModelResponse struct {
	Content string
	Calls   []domain.ToolCall
}

// IsToolRequest reports whether the response asks for tool execution.
func (r *ModelResponse) IsToolRequest() bool {
	return len(r.Calls) > 0
}

// ModelClient is the LLM collaborator. It is constructed and owned externally
// and injected at session creation.
//
// The engine delegates tool execution, not just decisioning, to this
// collaborator: accepted calls run through ProcessToolCalls so the backend can
// apply its own execution path (sandboxing, retries, token accounting).
type ModelClient interface {
	// RegisterTools announces the available tools. Called once at session start.
	RegisterTools(tools []Tool)

	// Invoke sends the full ordered transcript and returns the next response.
	Invoke(ctx context.Context, history []domain.Message) (*ModelResponse, error)

	// ProcessToolCalls executes accepted tool calls and returns one outcome
	// per call, in order.
	ProcessToolCalls(ctx context.Context, calls []domain.ToolCall) ([]domain.ToolOutcome, error)
}
