// Package testutils provides deterministic collaborators for engine and
// session tests: a scripted model backend, a configurable stub tool, and
// fixed id/clock sources.
package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
)

// ScriptedModel is a ports.ModelClient that replays canned responses in order
// and executes tool calls against its registered tools.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []ports.ModelResponse
	tools     map[string]ports.Tool

	// InvokeErr, when set, makes every Invoke fail.
	InvokeErr error

	// ProcessErr, when set, makes every ProcessToolCalls fail.
	ProcessErr error

	// Invocations records the history passed to each Invoke call.
	Invocations [][]domain.Message

	// Processed records every call handed to ProcessToolCalls.
	Processed []domain.ToolCall
}

var _ ports.ModelClient = (*ScriptedModel)(nil)

// NewScriptedModel builds a model that returns the given responses in order.
// Once the script is exhausted, further invocations return empty content.
func NewScriptedModel(responses ...ports.ModelResponse) *ScriptedModel {
	return &ScriptedModel{
		responses: responses,
		tools:     make(map[string]ports.Tool),
	}
}

// Reply is shorthand for a plain-content response.
func Reply(content string) ports.ModelResponse {
	return ports.ModelResponse{Content: content}
}

// CallTools is shorthand for a tool-request response.
func CallTools(calls ...domain.ToolCall) ports.ModelResponse {
	return ports.ModelResponse{Calls: calls}
}

func (m *ScriptedModel) RegisterTools(tools []ports.Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tools {
		m.tools[t.Name()] = t
	}
}

func (m *ScriptedModel) Invoke(ctx context.Context, history []domain.Message) (*ports.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]domain.Message, len(history))
	copy(snapshot, history)
	m.Invocations = append(m.Invocations, snapshot)

	if m.InvokeErr != nil {
		return nil, m.InvokeErr
	}
	if len(m.responses) == 0 {
		return &ports.ModelResponse{}, nil
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	return &resp, nil
}

func (m *ScriptedModel) ProcessToolCalls(ctx context.Context, calls []domain.ToolCall) ([]domain.ToolOutcome, error) {
	m.mu.Lock()
	m.Processed = append(m.Processed, calls...)
	processErr := m.ProcessErr
	m.mu.Unlock()

	if processErr != nil {
		return nil, processErr
	}

	var outcomes []domain.ToolOutcome
	for _, call := range calls {
		m.mu.Lock()
		tool, ok := m.tools[call.Name]
		m.mu.Unlock()

		if !ok {
			outcomes = append(outcomes, domain.ToolOutcome{
				ToolUseID: call.ID,
				IsError:   true,
				Error:     fmt.Sprintf("tool not registered: %s", call.Name),
			})
			continue
		}

		result, err := tool.Execute(ctx, call.Args)
		if err != nil {
			outcomes = append(outcomes, domain.ToolOutcome{
				ToolUseID: call.ID,
				IsError:   true,
				Error:     err.Error(),
			})
			continue
		}
		outcomes = append(outcomes, domain.ToolOutcome{
			ToolUseID: call.ID,
			Result:    result,
		})
	}
	return outcomes, nil
}

// StubTool is a configurable ports.Tool.
type StubTool struct {
	ToolName    string
	Confirm     bool
	ValidateErr error
	ExecuteErr  error
	Result      any

	mu       sync.Mutex
	executed int
}

var _ ports.Tool = (*StubTool)(nil)

func (t *StubTool) Name() string                      { return t.ToolName }
func (t *StubTool) Description() string               { return "stub tool " + t.ToolName }
func (t *StubTool) ParameterSchema() *openapi3.Schema { return nil }

func (t *StubTool) Validate(args map[string]any) error {
	return t.ValidateErr
}

func (t *StubTool) RequiresConfirmation(args map[string]any) bool {
	return t.Confirm
}

func (t *StubTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	t.mu.Lock()
	t.executed++
	t.mu.Unlock()

	if t.ExecuteErr != nil {
		return nil, t.ExecuteErr
	}
	if t.Result != nil {
		return t.Result, nil
	}
	return "ok", nil
}

// Executions reports how many times Execute ran.
func (t *StubTool) Executions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.executed
}

// CounterIDs is a deterministic IDSource: id-1, id-2, ...
type CounterIDs struct {
	mu sync.Mutex
	n  int
}

func (c *CounterIDs) NewID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fmt.Sprintf("id-%d", c.n)
}

// FixedClock returns a clock function that ticks one second per call,
// starting at a stable instant.
func FixedClock() func() time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}
