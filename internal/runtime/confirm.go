package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
)

// pendingConfirmation is the single outstanding tool call awaiting a human
// decision. While set, advance() makes no automatic progress, so a second
// confirmation can never be raised before the first is resolved.
type pendingConfirmation struct {
	call domain.ToolCall
	tool ports.Tool
}

// Pending returns the tool call currently awaiting confirmation, if any.
func (e *Engine) Pending() (domain.ToolCall, bool) {
	if e.pending == nil {
		return domain.ToolCall{}, false
	}
	return e.pending.call, true
}

// admitBatch routes each model-requested call through the confirmation gate,
// in the order received. Once one call fails validation or suspends on the
// gate, the remaining calls in the batch are dropped, not queued.
func (e *Engine) admitBatch(ctx context.Context, calls []domain.ToolCall) bool {
	for _, call := range calls {
		if call.ID == "" {
			call.ID = e.ids.NewID()
		}
		if !e.admitCall(ctx, call, true) {
			return false
		}
		if last, ok := e.log.LastSubstantive(); ok && last.Kind == domain.KindToolResult && last.ToolOutcome != nil && last.ToolOutcome.IsError {
			// A failed call abandons the rest of the batch; the error
			// result is fed back to the model instead.
			return true
		}
	}
	return true
}

// admitCall runs one call through the gate. When appendRequest is set the
// tool-request entry is appended first (fresh calls from a model response);
// requests already in the transcript skip that step. Returns false when the
// engine suspended.
func (e *Engine) admitCall(ctx context.Context, call domain.ToolCall, appendRequest bool) bool {
	if appendRequest {
		e.appendToolRequest(call)
	}

	tool, err := e.tools.Get(call.Name)
	if err != nil {
		e.failCall(ctx, call, err)
		return true
	}

	if err := tool.Validate(call.Args); err != nil {
		// Recorded as a failed result so the model can see and react to it;
		// the tool's execute path never runs.
		e.failCall(ctx, call, err)
		return true
	}

	if e.needsConfirmation(tool, call) {
		e.pending = &pendingConfirmation{call: call, tool: tool}
		e.logger.Info("tool call awaiting confirmation", "tool", call.Name, "tool_use_id", call.ID)
		e.publish(ctx, domain.Event{
			Type:      domain.EventToolConfirmationRequest,
			ToolUseID: call.ID,
			ToolName:  call.Name,
			Input:     call.Args,
		})
		return false
	}

	e.execute(ctx, call)
	return true
}

// needsConfirmation combines the tool's own predicate with the data-driven
// always-confirm policy table.
func (e *Engine) needsConfirmation(tool ports.Tool, call domain.ToolCall) bool {
	if e.autoAccept {
		return false
	}
	if tool.RequiresConfirmation(call.Args) {
		return true
	}
	return e.policy.Requires(call.Name, tool)
}

// ResolveConfirmation applies an external decision to the pending tool call.
// Approval executes the call and resumes the advance loop; denial records a
// cancellation result plus a synthetic user message stating the call was
// declined, then resumes. Resolving a tool-use ID with no pending gate fails
// loudly with domain.ErrNoPendingConfirmation.
func (e *Engine) ResolveConfirmation(ctx context.Context, toolUseID string, approved bool) error {
	if e.pending == nil || e.pending.call.ID != toolUseID {
		return fmt.Errorf("%w: %s", domain.ErrNoPendingConfirmation, toolUseID)
	}

	p := *e.pending
	e.pending = nil

	if approved {
		e.logger.Info("tool call approved", "tool", p.call.Name, "tool_use_id", p.call.ID)
		e.execute(ctx, p.call)
	} else {
		e.logger.Info("tool call declined", "tool", p.call.Name, "tool_use_id", p.call.ID)
		declined := fmt.Errorf("tool call declined by user")
		e.appendToolOutcome(p.call, domain.ToolOutcome{
			ToolUseID: p.call.ID,
			IsError:   true,
			IsDenied:  true,
			Error:     declined.Error(),
		})
		e.publish(ctx, domain.Event{
			Type:      domain.EventToolCallFailed,
			ToolUseID: p.call.ID,
			ToolName:  p.call.Name,
			Err:       declined,
		})

		notice := fmt.Sprintf("The user declined the %q tool call. Do not retry it; continue without it.", p.call.Name)
		e.appendText(domain.KindUser, notice)
		e.publish(ctx, domain.Event{Type: domain.EventUserMessageAppended, Content: notice})
	}

	e.advance(ctx)
	return nil
}

// execute runs an accepted call through the backend's tool-execution path and
// folds the outcome into the transcript.
func (e *Engine) execute(ctx context.Context, call domain.ToolCall) {
	e.publish(ctx, domain.Event{
		Type:      domain.EventToolCallStarted,
		ToolUseID: call.ID,
		ToolName:  call.Name,
		Input:     call.Args,
	})

	outcomes, err := e.model.ProcessToolCalls(ctx, []domain.ToolCall{call})

	var outcome domain.ToolOutcome
	switch {
	case err != nil:
		outcome = domain.ToolOutcome{ToolUseID: call.ID, IsError: true, Error: err.Error()}
	case len(outcomes) == 0:
		outcome = domain.ToolOutcome{ToolUseID: call.ID, IsError: true, Error: "backend returned no outcome for tool call"}
	default:
		outcome = outcomes[0]
		if outcome.ToolUseID == "" {
			outcome.ToolUseID = call.ID
		}
	}

	e.appendToolOutcome(call, outcome)

	if outcome.IsError {
		e.logger.Warn("tool call failed", "tool", call.Name, "tool_use_id", call.ID, "err", outcome.Error)
		e.publish(ctx, domain.Event{
			Type:      domain.EventToolCallFailed,
			ToolUseID: call.ID,
			ToolName:  call.Name,
			Err:       errors.New(outcome.Error),
		})
		return
	}

	e.logger.Debug("tool call finished", "tool", call.Name, "tool_use_id", call.ID)
	e.publish(ctx, domain.Event{
		Type:      domain.EventToolCallFinished,
		ToolUseID: call.ID,
		ToolName:  call.Name,
		Result:    outcome.Result,
	})
}

// failCall records a validation or lookup failure as a failed tool result.
func (e *Engine) failCall(ctx context.Context, call domain.ToolCall, err error) {
	e.logger.Warn("tool call rejected", "tool", call.Name, "tool_use_id", call.ID, "err", err)
	e.appendToolOutcome(call, domain.ToolOutcome{
		ToolUseID: call.ID,
		IsError:   true,
		Error:     err.Error(),
	})
	e.publish(ctx, domain.Event{
		Type:      domain.EventToolCallFailed,
		ToolUseID: call.ID,
		ToolName:  call.Name,
		Err:       err,
	})
}
