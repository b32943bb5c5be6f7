package domain

// ToolCall represents a request from the model to perform a side-effect.
// Ideally compatible with OpenAI/MCP tool call schemas.
type ToolCall struct {
	ID   string         `json:"id" yaml:"id" mapstructure:"id"`                           // Correlation ID for this specific call (from the model or generated)
	Name string         `json:"name" yaml:"name" mapstructure:"name"`                     // Tool name to call
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"` // Arguments for the tool
}

// ToolOutcome represents the result of a tool call, success or failure.
type ToolOutcome struct {
	ToolUseID string `json:"tool_use_id"` // Must match the ToolCall.ID
	Result    any    `json:"result,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
	IsDenied  bool   `json:"is_denied,omitempty"` // Set when a human declined the call
	Error     string `json:"error,omitempty"`
}

// ToolInfo is the serializable description of a tool, used for generating
// backend schemas and prompts.
type ToolInfo struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}
