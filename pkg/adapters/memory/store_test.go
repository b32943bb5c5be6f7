package memory

import (
	"context"
	"testing"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	tests.TranscriptStoreContractTest(t, NewStore())
}

func TestStoreIsolation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	original := []domain.Message{{ID: "m-1", Kind: domain.KindUser, Content: "hello"}}
	require.NoError(t, store.Save(ctx, "s1", original))

	// Mutating the saved slice must not affect the store.
	original[0].Content = "mutated"

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded[0].Content)

	// Mutating a loaded slice must not affect subsequent loads.
	loaded[0].Content = "mutated again"
	fresh, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", fresh[0].Content)
}
