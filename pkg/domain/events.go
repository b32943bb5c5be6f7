package domain

import "time"

// EventType names a lifecycle notification emitted by the engine.
type EventType string

const (
	EventTurnStarted              EventType = "turn_started"
	EventUserMessageAppended      EventType = "user_message_appended"
	EventAssistantMessageAppended EventType = "assistant_message_appended"
	EventToolCallStarted          EventType = "tool_call_started"
	EventToolConfirmationRequest  EventType = "tool_confirmation_requested"
	EventToolCallFinished         EventType = "tool_call_finished"
	EventToolCallFailed           EventType = "tool_call_failed"
	EventEngineError              EventType = "engine_error"
)

// Event is the payload delivered to notification subscribers. Fields are
// populated per event type; unset fields are zero.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Content carries the message text for user/assistant appends.
	Content string `json:"content,omitempty"`

	// Tool lifecycle fields.
	ToolUseID string         `json:"tool_use_id,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	Result    any            `json:"result,omitempty"`

	// Err is set on tool_call_failed and engine_error.
	Err error `json:"-"`
}
