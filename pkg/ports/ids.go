package ports

// IDSource generates message and tool-use identifiers. Injected so the engine
// stays deterministic under test; production sessions use a UUID source.
type IDSource interface {
	NewID() string
}

// IDFunc adapts a plain function to the IDSource interface.
type IDFunc func() string

// NewID implements IDSource.
func (f IDFunc) NewID() string { return f() }
