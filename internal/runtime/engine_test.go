package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dodgeblaster/orange-agent/internal/testutils"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/hub"
	"github.com/dodgeblaster/orange-agent/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects published events per type, in order.
type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) attach(h *hub.Hub, types ...domain.EventType) {
	for _, t := range types {
		h.Subscribe(t, func(ctx context.Context, evt domain.Event) error {
			r.mu.Lock()
			r.events = append(r.events, evt)
			r.mu.Unlock()
			return nil
		})
	}
}

func (r *recorder) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

var allEventTypes = []domain.EventType{
	domain.EventTurnStarted,
	domain.EventUserMessageAppended,
	domain.EventAssistantMessageAppended,
	domain.EventToolCallStarted,
	domain.EventToolConfirmationRequest,
	domain.EventToolCallFinished,
	domain.EventToolCallFailed,
	domain.EventEngineError,
}

func newTestEngine(t *testing.T, model *testutils.ScriptedModel, tools *registry.Registry, opts ...Option) (*Engine, *recorder) {
	t.Helper()

	h := hub.New()
	rec := &recorder{}
	rec.attach(h, allEventTypes...)

	opts = append([]Option{
		WithIDSource(&testutils.CounterIDs{}),
		WithClock(testutils.FixedClock()),
	}, opts...)

	return New(model, tools, h, opts...), rec
}

func kinds(messages []domain.Message) []domain.Kind {
	out := make([]domain.Kind, len(messages))
	for i, m := range messages {
		out[i] = m.Kind
	}
	return out
}

func TestSeedDoesNotAdvance(t *testing.T) {
	model := testutils.NewScriptedModel(testutils.Reply("should not be used"))
	engine, _ := newTestEngine(t, model, registry.New())

	engine.Seed("You are helpful", []string{"first", "second"})

	assert.Equal(t,
		[]domain.Kind{domain.KindSystem, domain.KindUser, domain.KindUser},
		kinds(engine.Messages()))
	assert.Empty(t, model.Invocations, "seeding must not invoke the model")
}

// Scenario A from the conversational contract: a stub backend that echoes a
// reply for any input.
func TestRunPlainReply(t *testing.T) {
	model := testutils.NewScriptedModel(testutils.Reply("hello back"))
	engine, rec := newTestEngine(t, model, registry.New())
	engine.Seed("You are helpful", nil)

	out := engine.Run(context.Background(), "hi")

	assert.Equal(t, "hello back", out)
	assert.Equal(t,
		[]domain.Kind{domain.KindSystem, domain.KindUser, domain.KindAssistant},
		kinds(engine.Messages()))

	assert.Len(t, rec.ofType(domain.EventTurnStarted), 1)
	assert.Len(t, rec.ofType(domain.EventUserMessageAppended), 1)

	appended := rec.ofType(domain.EventAssistantMessageAppended)
	require.Len(t, appended, 1)
	assert.Equal(t, "hello back", appended[0].Content)
}

// Scenario B: an unconfirmed tool call executes automatically and the
// assistant's follow-up lands after the result round-trip.
func TestRunAutomaticToolRoundTrip(t *testing.T) {
	tool := &testutils.StubTool{ToolName: "lookup", Result: "42"}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "call-1", Name: "lookup", Args: map[string]any{"q": "answer"}}),
		testutils.Reply("the answer is 42"),
	)
	engine, rec := newTestEngine(t, model, registry.New(tool))
	engine.Seed("system", nil)

	out := engine.Run(context.Background(), "do it")

	assert.Equal(t, "the answer is 42", out)
	assert.Equal(t, 1, tool.Executions())
	assert.Empty(t, rec.ofType(domain.EventToolConfirmationRequest))

	assert.Equal(t, []domain.Kind{
		domain.KindSystem,
		domain.KindUser,
		domain.KindToolRequest,
		domain.KindToolResult,
		domain.KindAssistant,
	}, kinds(engine.Messages()))

	started := rec.ofType(domain.EventToolCallStarted)
	finished := rec.ofType(domain.EventToolCallFinished)
	require.Len(t, started, 1)
	require.Len(t, finished, 1)
	assert.Equal(t, "call-1", started[0].ToolUseID)
	assert.Equal(t, "42", finished[0].Result)
}

func TestRunMultiHopToolCycle(t *testing.T) {
	tool := &testutils.StubTool{ToolName: "step", Result: "partial"}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "c1", Name: "step"}),
		testutils.CallTools(domain.ToolCall{ID: "c2", Name: "step"}),
		testutils.CallTools(domain.ToolCall{ID: "c3", Name: "step"}),
		testutils.Reply("all done"),
	)
	engine, _ := newTestEngine(t, model, registry.New(tool))
	engine.Seed("system", nil)

	out := engine.Run(context.Background(), "go")

	assert.Equal(t, "all done", out)
	assert.Equal(t, 3, tool.Executions(), "the loop has no fixed bound; it runs until the backend stops issuing calls")
	assert.Len(t, model.Invocations, 4)
}

func TestRunBackendFailureDegradesSilently(t *testing.T) {
	model := testutils.NewScriptedModel(testutils.Reply("earlier reply"))
	engine, rec := newTestEngine(t, model, registry.New())
	engine.Seed("system", nil)

	require.Equal(t, "earlier reply", engine.Run(context.Background(), "first"))

	model.InvokeErr = errors.New("backend down")
	before := engine.Messages()

	out := engine.Run(context.Background(), "second")

	// Degrades to the last known assistant content; the failure surfaces
	// only as an engine_error notification.
	assert.Equal(t, "earlier reply", out)
	require.Len(t, rec.ofType(domain.EventEngineError), 1)

	after := engine.Messages()
	assert.Equal(t, len(before)+1, len(after), "only the user message was appended")
	assert.Equal(t, domain.KindUser, after[len(after)-1].Kind)
}

func TestToolExecutionErrorIsFedBack(t *testing.T) {
	tool := &testutils.StubTool{ToolName: "flaky", ExecuteErr: errors.New("disk on fire")}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "c1", Name: "flaky"}),
		testutils.Reply("I hit an error"),
	)
	engine, rec := newTestEngine(t, model, registry.New(tool))
	engine.Seed("system", nil)

	out := engine.Run(context.Background(), "try")

	assert.Equal(t, "I hit an error", out)

	failed := rec.ofType(domain.EventToolCallFailed)
	require.Len(t, failed, 1)
	assert.EqualError(t, failed[0].Err, "disk on fire")

	results := engine.Transcript().ByKind(domain.KindToolResult)
	require.Len(t, results, 1)
	assert.True(t, results[0].ToolOutcome.IsError)
	assert.Equal(t, "disk on fire", results[0].ToolOutcome.Error)

	// The model saw the failed result and still produced a reply.
	assert.Len(t, model.Invocations, 2)
}

func TestUnknownToolIsFedBack(t *testing.T) {
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "c1", Name: "ghost"}),
		testutils.Reply("that tool does not exist"),
	)
	engine, rec := newTestEngine(t, model, registry.New())
	engine.Seed("system", nil)

	out := engine.Run(context.Background(), "use ghost")

	assert.Equal(t, "that tool does not exist", out)
	require.Len(t, rec.ofType(domain.EventToolCallFailed), 1)
	assert.ErrorIs(t, rec.ofType(domain.EventToolCallFailed)[0].Err, domain.ErrUnknownTool)
}

func TestTranscriptIsAppendOnlyAcrossTurns(t *testing.T) {
	tool := &testutils.StubTool{ToolName: "step", Result: "x"}
	model := testutils.NewScriptedModel(
		testutils.Reply("one"),
		testutils.CallTools(domain.ToolCall{ID: "c1", Name: "step"}),
		testutils.Reply("two"),
	)
	engine, _ := newTestEngine(t, model, registry.New(tool))
	engine.Seed("system", nil)

	engine.Run(context.Background(), "first")
	snapshot := engine.Messages()

	engine.Run(context.Background(), "second")
	grown := engine.Messages()

	require.Greater(t, len(grown), len(snapshot))
	for i, m := range snapshot {
		assert.Equal(t, m.ID, grown[i].ID)
		assert.Equal(t, m.Kind, grown[i].Kind)
		assert.Equal(t, m.Content, grown[i].Content)
	}
}

func TestToolResultCorrelationInvariant(t *testing.T) {
	tool := &testutils.StubTool{ToolName: "step", Result: "x"}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "c1", Name: "step"}),
		testutils.CallTools(domain.ToolCall{ID: "c2", Name: "step"}),
		testutils.Reply("done"),
	)
	engine, _ := newTestEngine(t, model, registry.New(tool))
	engine.Seed("system", nil)
	engine.Run(context.Background(), "go")

	messages := engine.Messages()
	requests := make(map[string]int)
	results := make(map[string]int)

	for i, m := range messages {
		switch m.Kind {
		case domain.KindToolRequest:
			requests[m.ToolUseID] = i
		case domain.KindToolResult:
			reqIdx, ok := requests[m.ToolUseID]
			require.True(t, ok, "result %s has no prior request", m.ToolUseID)
			assert.Less(t, reqIdx, i, "request must precede its result")
			results[m.ToolUseID]++
		}
	}
	for id, count := range results {
		assert.Equal(t, 1, count, "at most one result per request (%s)", id)
	}
}

// A turn starting from a user tail must never yield back to the caller with a
// tool-request or tool-result tail unless a confirmation is pending.
func TestAdvanceNeverStopsMidToolChain(t *testing.T) {
	tool := &testutils.StubTool{ToolName: "step", Result: "x"}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "c1", Name: "step"}),
		testutils.Reply("done"),
	)
	engine, _ := newTestEngine(t, model, registry.New(tool))
	engine.Seed("system", nil)

	engine.Run(context.Background(), "go")

	_, pending := engine.Pending()
	require.False(t, pending)

	last, ok := engine.Transcript().LastSubstantive()
	require.True(t, ok)
	assert.Equal(t, domain.KindAssistant, last.Kind)
}

func TestRunReturnsEarlierAssistantWhenScriptExhausted(t *testing.T) {
	model := testutils.NewScriptedModel(testutils.Reply("only reply"))
	engine, _ := newTestEngine(t, model, registry.New())
	engine.Seed("system", nil)

	assert.Equal(t, "only reply", engine.Run(context.Background(), "one"))

	// Script exhausted: the backend replies with empty content, which is
	// appended as an (empty) assistant message.
	assert.Equal(t, "", engine.Run(context.Background(), "two"))
}
