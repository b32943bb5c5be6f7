package domain

import "time"

// Kind classifies a transcript entry.
type Kind string

const (
	KindSystem      Kind = "system"
	KindUser        Kind = "user"
	KindAssistant   Kind = "assistant"
	KindToolRequest Kind = "tool-request"
	KindToolResult  Kind = "tool-result"
	KindInfo        Kind = "info"
)

// Role is the conversational role attributed to the model backend.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Role maps a message kind to the role the backend sees.
// Tool requests are authored by the model (assistant); tool results are fed
// back as user turns. Info entries are engine annotations and default to user.
func (k Kind) Role() Role {
	switch k {
	case KindSystem:
		return RoleSystem
	case KindAssistant, KindToolRequest:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// Message is a single transcript entry. Once appended it is immutable: the
// engine never rewrites or reorders history.
type Message struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Role      Role      `json:"role"`

	// Content holds the free-form payload for system/user/assistant/info
	// entries. For tool kinds the structured payloads below are authoritative.
	Content string `json:"content,omitempty"`

	// ToolName and ToolUseID are set on tool-request and tool-result entries.
	// ToolUseID correlates a request with its eventual result.
	ToolName  string `json:"tool_name,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`

	// ToolCall is set on tool-request entries.
	ToolCall *ToolCall `json:"tool_call,omitempty"`

	// ToolOutcome is set on tool-result entries.
	ToolOutcome *ToolOutcome `json:"tool_outcome,omitempty"`
}

// IsSubstantive reports whether the entry participates in turn decisions.
// Info entries are transparent: the engine walks past them.
func (m Message) IsSubstantive() bool {
	return m.Kind != KindInfo
}
