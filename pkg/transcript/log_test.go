package transcript

import (
	"fmt"
	"testing"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id string, kind domain.Kind) domain.Message {
	return domain.Message{ID: id, Kind: kind, Role: kind.Role(), Content: "content-" + id}
}

func TestAppendAndReads(t *testing.T) {
	log := New()

	_, ok := log.Latest()
	assert.False(t, ok, "empty log has no latest message")

	log.Append(msg("a", domain.KindSystem))
	log.Append(msg("b", domain.KindUser))
	log.Append(msg("c", domain.KindAssistant))

	assert.Equal(t, 3, log.Len())

	latest, ok := log.Latest()
	require.True(t, ok)
	assert.Equal(t, "c", latest.ID)

	byID, ok := log.ByID("b")
	require.True(t, ok)
	assert.Equal(t, domain.KindUser, byID.Kind)

	_, ok = log.ByID("missing")
	assert.False(t, ok)

	users := log.ByKind(domain.KindUser)
	require.Len(t, users, 1)
	assert.Equal(t, "b", users[0].ID)
}

func TestReadsAreCopies(t *testing.T) {
	log := New()
	log.Append(msg("a", domain.KindUser))

	all := log.All()
	all[0].Content = "mutated"

	fresh := log.All()
	assert.Equal(t, "content-a", fresh[0].Content, "log entries must be immutable to readers")
}

func TestReadsAreIdempotent(t *testing.T) {
	log := New()
	for i := 0; i < 5; i++ {
		log.Append(msg(fmt.Sprintf("m-%d", i), domain.KindUser))
	}

	first := log.All()
	second := log.All()
	assert.Equal(t, first, second)
}

func TestAppendOnlyOrder(t *testing.T) {
	log := New()
	for i := 0; i < 10; i++ {
		log.Append(msg(fmt.Sprintf("m-%d", i), domain.KindUser))
	}

	all := log.All()
	for i, m := range all {
		assert.Equal(t, fmt.Sprintf("m-%d", i), m.ID, "insertion order must be preserved")
	}
}

func TestLastSubstantiveSkipsInfo(t *testing.T) {
	log := New()
	log.Append(msg("a", domain.KindAssistant))
	log.Append(msg("i1", domain.KindInfo))
	log.Append(msg("i2", domain.KindInfo))

	last, ok := log.LastSubstantive()
	require.True(t, ok)
	assert.Equal(t, "a", last.ID)

	onlyInfo := New()
	onlyInfo.Append(msg("i", domain.KindInfo))
	_, ok = onlyInfo.LastSubstantive()
	assert.False(t, ok, "a log of only info entries has no substantive tail")
}

func TestToolCorrelation(t *testing.T) {
	log := New()

	req := domain.Message{ID: "r1", Kind: domain.KindToolRequest, ToolUseID: "call-1", ToolName: "read_file"}
	log.Append(req)

	assert.False(t, log.HasResult("call-1"))

	unresolved, ok := log.FirstUnresolvedRequest()
	require.True(t, ok)
	assert.Equal(t, "call-1", unresolved.ToolUseID)

	log.Append(domain.Message{ID: "r2", Kind: domain.KindToolResult, ToolUseID: "call-1", ToolName: "read_file"})

	assert.True(t, log.HasResult("call-1"))
	_, ok = log.FirstUnresolvedRequest()
	assert.False(t, ok)
}

func TestFirstUnresolvedRequestPicksEarliest(t *testing.T) {
	log := New()
	log.Append(domain.Message{ID: "r1", Kind: domain.KindToolRequest, ToolUseID: "call-1"})
	log.Append(domain.Message{ID: "r2", Kind: domain.KindToolRequest, ToolUseID: "call-2"})

	unresolved, ok := log.FirstUnresolvedRequest()
	require.True(t, ok)
	assert.Equal(t, "call-1", unresolved.ToolUseID)
}

func TestLastAssistantContent(t *testing.T) {
	log := New()
	assert.Equal(t, "", log.LastAssistantContent())

	log.Append(domain.Message{ID: "a1", Kind: domain.KindAssistant, Content: "first"})
	log.Append(domain.Message{ID: "u1", Kind: domain.KindUser, Content: "question"})
	assert.Equal(t, "first", log.LastAssistantContent())

	log.Append(domain.Message{ID: "a2", Kind: domain.KindAssistant, Content: "second"})
	assert.Equal(t, "second", log.LastAssistantContent())
}

func TestFromMessages(t *testing.T) {
	seed := []domain.Message{
		msg("a", domain.KindSystem),
		msg("b", domain.KindUser),
	}

	log := FromMessages(seed)
	assert.Equal(t, 2, log.Len())

	byID, ok := log.ByID("a")
	require.True(t, ok)
	assert.Equal(t, domain.KindSystem, byID.Kind)
}
