package ports

import (
	"context"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
)

// TranscriptStore defines the interface for persisting session transcripts.
// This allows durable sessions: a host can snapshot a transcript, restart,
// and resume the conversation where it left off.
type TranscriptStore interface {
	// Save persists the ordered transcript for a given session ID.
	Save(ctx context.Context, sessionID string, messages []domain.Message) error

	// Load retrieves the transcript for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Delete removes the transcript for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the known session IDs.
	List(ctx context.Context) ([]string, error)
}
