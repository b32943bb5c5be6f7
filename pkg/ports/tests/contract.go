package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
)

// TranscriptStoreContractTest is a reusable test suite that verifies an
// adapter complies with ports.TranscriptStore.
func TranscriptStoreContractTest(t *testing.T, store ports.TranscriptStore) {
	t.Helper()
	ctx := context.Background()

	sample := []domain.Message{
		{ID: "m-1", Timestamp: time.Unix(1700000000, 0).UTC(), Kind: domain.KindSystem, Role: domain.RoleSystem, Content: "You are helpful"},
		{ID: "m-2", Timestamp: time.Unix(1700000001, 0).UTC(), Kind: domain.KindUser, Role: domain.RoleUser, Content: "hi"},
	}

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-session")
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		if err := store.Save(ctx, "contract-session", sample); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}

		got, err := store.Load(ctx, "contract-session")
		if err != nil {
			t.Fatalf("unexpected load error: %v", err)
		}
		if len(got) != len(sample) {
			t.Fatalf("expected %d messages, got %d", len(sample), len(got))
		}
		for i := range sample {
			if got[i].ID != sample[i].ID || got[i].Kind != sample[i].Kind || got[i].Content != sample[i].Content {
				t.Errorf("message %d mismatch. got %+v, want %+v", i, got[i], sample[i])
			}
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected list error: %v", err)
		}
		found := false
		for _, id := range ids {
			if id == "contract-session" {
				found = true
			}
		}
		if !found {
			t.Error("contract-session missing from list")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "contract-session"); err != nil {
			t.Fatalf("unexpected delete error: %v", err)
		}
		if _, err := store.Load(ctx, "contract-session"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}
	})
}
