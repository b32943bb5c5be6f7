// Package runtime implements the turn engine: the state machine that consumes
// the transcript tail, decides the next action, executes it against the model
// and tool collaborators, and folds results back into the transcript until the
// conversation needs external input again.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dodgeblaster/orange-agent/internal/logging"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
	"github.com/dodgeblaster/orange-agent/pkg/policy"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
	"github.com/dodgeblaster/orange-agent/pkg/registry"
	"github.com/dodgeblaster/orange-agent/pkg/transcript"
	"github.com/google/uuid"
)

// Engine owns the transcript, the pending-confirmation slot, and the advance
// loop. Callers interact only through Run and ResolveConfirmation; the engine
// assumes (but does not enforce) that a caller serializes those calls.
type Engine struct {
	log     *transcript.Log
	hub     *hub.Hub
	model   ports.ModelClient
	tools   *registry.Registry
	policy  *policy.Table
	ids     ports.IDSource
	now     func() time.Time
	logger  *slog.Logger
	pending *pendingConfirmation

	// autoAccept skips the confirmation gate entirely.
	autoAccept bool
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPolicy replaces the default confirmation policy table.
func WithPolicy(table *policy.Table) Option {
	return func(e *Engine) {
		e.policy = table
	}
}

// WithAutoAccept disables the confirmation gate: every tool call executes
// immediately.
func WithAutoAccept() Option {
	return func(e *Engine) {
		e.autoAccept = true
	}
}

// WithIDSource injects the identifier generator, keeping the engine
// deterministic under test.
func WithIDSource(ids ports.IDSource) Option {
	return func(e *Engine) {
		if ids != nil {
			e.ids = ids
		}
	}
}

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTranscript seeds the engine with an existing transcript, resuming a
// persisted session.
func WithTranscript(log *transcript.Log) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine around the given collaborators and announces the
// registered tools to the model backend.
func New(model ports.ModelClient, tools *registry.Registry, notifications *hub.Hub, opts ...Option) *Engine {
	e := &Engine{
		log:    transcript.New(),
		hub:    notifications,
		model:  model,
		tools:  tools,
		policy: policy.Default(),
		ids:    ports.IDFunc(uuid.NewString),
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tools == nil {
		e.tools = registry.New()
	}
	if e.hub == nil {
		e.hub = hub.New()
	}

	e.model.RegisterTools(e.tools.All())
	return e
}

// Seed appends the session instruction and the initial user turns, in order.
// Seeding never advances the engine; the first Run call does.
func (e *Engine) Seed(systemPrompt string, initialUserMessages []string) {
	if systemPrompt != "" {
		e.appendText(domain.KindSystem, systemPrompt)
	}
	for _, content := range initialUserMessages {
		e.appendText(domain.KindUser, content)
	}
}

// Run appends a user message, advances the engine until it yields, and
// returns the content of the most recent assistant message. That may be the
// reply just produced, or an earlier one if the turn ended without a fresh
// assistant reply (backend failure, pending confirmation). Backend and tool
// failures are surfaced only through engine_error / tool_call_failed
// notifications, never as a Run error.
func (e *Engine) Run(ctx context.Context, input string) string {
	e.publish(ctx, domain.Event{Type: domain.EventTurnStarted})

	e.appendText(domain.KindUser, input)
	e.publish(ctx, domain.Event{Type: domain.EventUserMessageAppended, Content: input})

	e.advance(ctx)
	return e.log.LastAssistantContent()
}

// Messages returns the full ordered transcript.
func (e *Engine) Messages() []domain.Message {
	return e.log.All()
}

// Transcript returns the underlying log for read access.
func (e *Engine) Transcript() *transcript.Log {
	return e.log
}

// advance repeatedly computes the current action and executes it until the
// action is AwaitingUser or the engine suspends on a pending confirmation.
// Re-entrant by construction: an InvokeModel step may append a tool-request,
// which yields RunTool, whose result yields InvokeModel again, with no fixed
// bound on iterations.
func (e *Engine) advance(ctx context.Context) {
	for {
		if e.pending != nil {
			// Suspended: no automatic progress until the gate is resolved.
			return
		}

		action := e.NextAction()
		e.logger.Debug("advancing", "action", action.String(), "transcript_len", e.log.Len())

		switch action {
		case ActionAwaitUser:
			return
		case ActionInvokeModel:
			if !e.invokeModel(ctx) {
				return
			}
		case ActionRunTool:
			if !e.runPendingTool(ctx) {
				return
			}
		}
	}
}

// invokeModel sends the full history to the backend. Returns false when the
// advance loop must stop (backend failure or suspension).
func (e *Engine) invokeModel(ctx context.Context) bool {
	resp, err := e.model.Invoke(ctx, e.log.All())
	if err == nil && resp == nil {
		err = fmt.Errorf("backend returned no response")
	}
	if err != nil {
		// Do not retry; the turn ends in a failed, non-terminal state and
		// the caller must re-initiate.
		e.logger.Error("model invocation failed", "err", err)
		e.publish(ctx, domain.Event{Type: domain.EventEngineError, Err: fmt.Errorf("invoking model: %w", err)})
		return false
	}

	if resp.IsToolRequest() {
		return e.admitBatch(ctx, resp.Calls)
	}

	e.appendText(domain.KindAssistant, resp.Content)
	e.publish(ctx, domain.Event{Type: domain.EventAssistantMessageAppended, Content: resp.Content})
	return true
}

// runPendingTool handles the RunTool action: the earliest tool-request
// lacking a matching tool-result is routed back through the confirmation gate
// and executed if cleared.
func (e *Engine) runPendingTool(ctx context.Context) bool {
	req, ok := e.log.FirstUnresolvedRequest()
	if !ok || req.ToolCall == nil {
		return true
	}
	return e.admitCall(ctx, *req.ToolCall, false)
}

// appendText appends a plain-content entry and returns it.
func (e *Engine) appendText(kind domain.Kind, content string) domain.Message {
	m := domain.Message{
		ID:        e.ids.NewID(),
		Timestamp: e.now(),
		Kind:      kind,
		Role:      kind.Role(),
		Content:   content,
	}
	e.log.Append(m)
	return m
}

func (e *Engine) appendToolRequest(call domain.ToolCall) domain.Message {
	callCopy := call
	m := domain.Message{
		ID:        e.ids.NewID(),
		Timestamp: e.now(),
		Kind:      domain.KindToolRequest,
		Role:      domain.KindToolRequest.Role(),
		ToolName:  call.Name,
		ToolUseID: call.ID,
		ToolCall:  &callCopy,
	}
	e.log.Append(m)
	return m
}

func (e *Engine) appendToolOutcome(call domain.ToolCall, outcome domain.ToolOutcome) domain.Message {
	outcomeCopy := outcome
	m := domain.Message{
		ID:          e.ids.NewID(),
		Timestamp:   e.now(),
		Kind:        domain.KindToolResult,
		Role:        domain.KindToolResult.Role(),
		ToolName:    call.Name,
		ToolUseID:   call.ID,
		ToolOutcome: &outcomeCopy,
	}
	e.log.Append(m)
	return m
}

func (e *Engine) publish(ctx context.Context, evt domain.Event) {
	evt.Timestamp = e.now()
	e.hub.Publish(ctx, evt)
}
