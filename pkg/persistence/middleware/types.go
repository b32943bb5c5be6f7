// Package middleware wraps a TranscriptStore with cross-cutting behavior:
// at-rest encryption and PII masking. Middlewares compose; the session
// manager and adapters stay unaware of them.
package middleware

import "github.com/dodgeblaster/orange-agent/pkg/ports"

// Middleware allows wrapping a TranscriptStore to add behavior.
type Middleware func(ports.TranscriptStore) ports.TranscriptStore
