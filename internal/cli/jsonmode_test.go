package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orange "github.com/dodgeblaster/orange-agent"
	"github.com/dodgeblaster/orange-agent/internal/testutils"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &v))
		lines = append(lines, v)
	}
	return lines
}

func repliesOf(lines []map[string]any) []map[string]any {
	var out []map[string]any
	for _, l := range lines {
		if l["type"] == "reply" || l["type"] == "error" {
			out = append(out, l)
		}
	}
	return out
}

func TestRunJSONPlainTurn(t *testing.T) {
	model := testutils.NewScriptedModel(testutils.Reply("hello from the agent"))
	session, err := orange.New("be helpful", model)
	require.NoError(t, err)

	in := strings.NewReader(`{"type":"input","input":"hi"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, RunJSON(context.Background(), session, in, &out))

	lines := decodeLines(t, out.String())
	replies := repliesOf(lines)
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0]["type"])
	assert.Equal(t, "hello from the agent", replies[0]["reply"])

	// Engine notifications are interleaved on the stream.
	var eventTypes []string
	for _, l := range lines {
		if l["type"] == "event" {
			evt := l["event"].(map[string]any)
			eventTypes = append(eventTypes, evt["type"].(string))
		}
	}
	assert.Contains(t, eventTypes, string(domain.EventTurnStarted))
	assert.Contains(t, eventTypes, string(domain.EventAssistantMessageAppended))
}

func TestRunJSONConfirmationFlow(t *testing.T) {
	stub := &testutils.StubTool{ToolName: "deploy", Confirm: true, Result: "deployed"}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "call-1", Name: "deploy"}),
		testutils.Reply("deployment complete"),
	)
	session, err := orange.New("be helpful", model, orange.WithTools(stub))
	require.NoError(t, err)

	input := `{"type":"input","input":"deploy the app"}` + "\n" +
		`{"type":"confirmation","tool_use_id":"call-1","approved":true}` + "\n"
	var out bytes.Buffer

	require.NoError(t, RunJSON(context.Background(), session, strings.NewReader(input), &out))

	replies := repliesOf(decodeLines(t, out.String()))
	require.Len(t, replies, 2)

	// First reply: suspended on the gate.
	require.NotNil(t, replies[0]["pending"])
	pending := replies[0]["pending"].(map[string]any)
	assert.Equal(t, "call-1", pending["id"])

	// Second reply: approved, tool ran, turn completed.
	assert.Equal(t, "deployment complete", replies[1]["reply"])
	assert.Nil(t, replies[1]["pending"])
	assert.Equal(t, 1, stub.Executions())
}

func TestRunJSONDeniedConfirmation(t *testing.T) {
	stub := &testutils.StubTool{ToolName: "deploy", Confirm: true}
	model := testutils.NewScriptedModel(
		testutils.CallTools(domain.ToolCall{ID: "call-1", Name: "deploy"}),
		testutils.Reply("understood, skipping the deploy"),
	)
	session, err := orange.New("be helpful", model, orange.WithTools(stub))
	require.NoError(t, err)

	input := `{"type":"input","input":"deploy the app"}` + "\n" +
		`{"type":"confirmation","tool_use_id":"call-1","approved":false}` + "\n"
	var out bytes.Buffer

	require.NoError(t, RunJSON(context.Background(), session, strings.NewReader(input), &out))

	replies := repliesOf(decodeLines(t, out.String()))
	require.Len(t, replies, 2)
	assert.Equal(t, "understood, skipping the deploy", replies[1]["reply"])
	assert.Equal(t, 0, stub.Executions())
}

func TestRunJSONBadRequests(t *testing.T) {
	session, err := orange.New("be helpful", testutils.NewScriptedModel())
	require.NoError(t, err)

	input := "not json\n" + `{"type":"wat"}` + "\n" +
		`{"type":"confirmation","tool_use_id":"ghost","approved":true}` + "\n"
	var out bytes.Buffer

	require.NoError(t, RunJSON(context.Background(), session, strings.NewReader(input), &out))

	replies := repliesOf(decodeLines(t, out.String()))
	require.Len(t, replies, 3)
	for _, r := range replies {
		assert.Equal(t, "error", r["type"])
	}
}
