// Package transcript implements the append-only message log that is the
// single source of truth for conversation state.
//
// The log is owned exclusively by one turn engine instance. External parties
// read it; only the engine appends. Entries are never mutated or reordered.
package transcript

import (
	"sync"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

// Log is an ordered, append-only sequence of messages with an index by ID.
// Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	entries []domain.Message
	index   map[string]int
}

// New creates an empty log.
func New() *Log {
	return &Log{
		index: make(map[string]int),
	}
}

// FromMessages creates a log seeded with an existing transcript, preserving
// order. Used when resuming a persisted session.
func FromMessages(messages []domain.Message) *Log {
	l := New()
	for _, m := range messages {
		l.Append(m)
	}
	return l
}

// Append adds a message to the tail and returns its ID. Append is the only
// mutator and always succeeds.
func (l *Log) Append(m domain.Message) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.index[m.ID] = len(l.entries)
	l.entries = append(l.entries, m)
	return m.ID
}

// All returns the full ordered transcript. The returned slice is a copy;
// mutating it does not affect the log.
func (l *Log) All() []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Message, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByKind returns all messages of the given kind, in log order.
func (l *Log) ByKind(kind domain.Kind) []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Message
	for _, m := range l.entries {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Latest returns the most recent message, if any.
func (l *Log) Latest() (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return domain.Message{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// ByID returns the message with the given ID, if present.
func (l *Log) ByID(id string) (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return domain.Message{}, false
	}
	return l.entries[i], true
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastSubstantive returns the most recent non-info message. Info entries are
// transparent for turn decisions.
func (l *Log) LastSubstantive() (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].IsSubstantive() {
			return l.entries[i], true
		}
	}
	return domain.Message{}, false
}

// HasResult reports whether a tool-result referencing the given tool-use ID
// exists in the log.
func (l *Log) HasResult(toolUseID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, m := range l.entries {
		if m.Kind == domain.KindToolResult && m.ToolUseID == toolUseID {
			return true
		}
	}
	return false
}

// FirstUnresolvedRequest returns the earliest tool-request lacking a matching
// tool-result.
func (l *Log) FirstUnresolvedRequest() (domain.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	resolved := make(map[string]bool)
	for _, m := range l.entries {
		if m.Kind == domain.KindToolResult {
			resolved[m.ToolUseID] = true
		}
	}
	for _, m := range l.entries {
		if m.Kind == domain.KindToolRequest && !resolved[m.ToolUseID] {
			return m, true
		}
	}
	return domain.Message{}, false
}

// LastAssistantContent returns the content of the most recent assistant
// message, or "" if none exists yet.
func (l *Log) LastAssistantContent() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Kind == domain.KindAssistant {
			return l.entries[i].Content
		}
	}
	return ""
}
