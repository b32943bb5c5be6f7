package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
)

// JSONRequest is one NDJSON input line: either a user turn or a
// confirmation decision.
type JSONRequest struct {
	Type string `json:"type"` // "input" or "confirmation"

	Input string `json:"input,omitempty"`

	ToolUseID string `json:"tool_use_id,omitempty"`
	Approved  bool   `json:"approved,omitempty"`
}

// JSONReply is emitted after each processed request.
type JSONReply struct {
	Type    string           `json:"type"` // "reply" or "error"
	Reply   string           `json:"reply,omitempty"`
	Pending *domain.ToolCall `json:"pending,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// jsonEvent wraps an engine notification for the output stream.
type jsonEvent struct {
	Type  string       `json:"type"` // always "event"
	Event domain.Event `json:"event"`
}

// JSONSession is the slice of the facade the NDJSON loop drives.
type JSONSession interface {
	Run(ctx context.Context, input string) (string, error)
	ResolveConfirmation(ctx context.Context, toolUseID string, approved bool) error
	Messages() []domain.Message
	Pending() (domain.ToolCall, bool)
	Notifications() *hub.Hub
}

// RunJSON drives a session over newline-delimited JSON: one request per input
// line, engine notifications and replies interleaved on the output stream.
// The loop ends on EOF or context cancellation.
func RunJSON(ctx context.Context, session JSONSession, r io.Reader, w io.Writer) error {
	var mu sync.Mutex
	encoder := json.NewEncoder(w)
	emit := func(v any) {
		mu.Lock()
		defer mu.Unlock()
		_ = encoder.Encode(v)
	}

	unsubscribe := subscribeAllEvents(session.Notifications(), func(evt domain.Event) {
		emit(jsonEvent{Type: "event", Event: evt})
	})
	defer unsubscribe()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req JSONRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			emit(JSONReply{Type: "error", Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}

		emit(handleJSONRequest(ctx, session, req))
	}

	if err := scanner.Err(); err != nil && !isInterrupted(err) {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

func handleJSONRequest(ctx context.Context, session JSONSession, req JSONRequest) JSONReply {
	switch req.Type {
	case "input":
		input, err := SanitizeInput(req.Input)
		if err != nil {
			return JSONReply{Type: "error", Error: err.Error()}
		}
		reply, err := session.Run(ctx, input)
		if err != nil {
			return JSONReply{Type: "error", Error: err.Error()}
		}
		return jsonReply(session, reply)

	case "confirmation":
		if err := session.ResolveConfirmation(ctx, req.ToolUseID, req.Approved); err != nil {
			return JSONReply{Type: "error", Error: err.Error()}
		}
		return jsonReply(session, lastAssistant(session.Messages()))

	default:
		return JSONReply{Type: "error", Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

func jsonReply(session JSONSession, reply string) JSONReply {
	out := JSONReply{Type: "reply", Reply: reply}
	if call, ok := session.Pending(); ok {
		out.Pending = &call
	}
	return out
}

func subscribeAllEvents(h *hub.Hub, fn func(domain.Event)) func() {
	types := []domain.EventType{
		domain.EventTurnStarted,
		domain.EventUserMessageAppended,
		domain.EventAssistantMessageAppended,
		domain.EventToolCallStarted,
		domain.EventToolConfirmationRequest,
		domain.EventToolCallFinished,
		domain.EventToolCallFailed,
		domain.EventEngineError,
	}

	cancels := make([]func(), 0, len(types))
	for _, t := range types {
		cancels = append(cancels, h.Subscribe(t, func(ctx context.Context, evt domain.Event) error {
			fn(evt)
			return nil
		}))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
