// Package policy implements the data-driven confirmation policy: the rule
// table deciding which tool calls are always gated behind human approval,
// independent of the tool's own RequiresConfirmation predicate.
package policy

// Effect classifies the side-effect class a tool declares. Tools opt in by
// implementing the Classified interface.
type Effect string

const (
	EffectReadOnly        Effect = "read_only"
	EffectFilesystemWrite Effect = "filesystem_write"
	EffectProcessExec     Effect = "process_exec"
	EffectNetwork         Effect = "network"
)

// Classified is implemented by tools that declare their side-effect class.
type Classified interface {
	Effect() Effect
}

// Table holds the always-confirm rules. A call is gated when its tool name or
// its declared effect class matches a rule.
type Table struct {
	tools   map[string]bool
	effects map[Effect]bool
}

// Option configures the Table.
type Option func(*Table)

// WithTools gates the named tools unconditionally.
func WithTools(names ...string) Option {
	return func(t *Table) {
		for _, n := range names {
			t.tools[n] = true
		}
	}
}

// WithEffects gates every tool declaring one of the given effect classes.
func WithEffects(effects ...Effect) Option {
	return func(t *Table) {
		for _, e := range effects {
			t.effects[e] = true
		}
	}
}

// New creates an empty table with the given rules.
func New(opts ...Option) *Table {
	t := &Table{
		tools:   make(map[string]bool),
		effects: make(map[Effect]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Default returns the standard table: anything that mutates the filesystem or
// executes a process is always gated, regardless of the tool's own predicate.
func Default() *Table {
	return New(WithEffects(EffectFilesystemWrite, EffectProcessExec))
}

// Requires reports whether the table gates a call to the named tool. The tool
// value is inspected for a declared effect class; tools without one are only
// matched by name.
func (t *Table) Requires(name string, tool any) bool {
	if t == nil {
		return false
	}
	if t.tools[name] {
		return true
	}
	if c, ok := tool.(Classified); ok && t.effects[c.Effect()] {
		return true
	}
	return false
}
