package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOrder(t *testing.T) {
	h := New()
	ctx := context.Background()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		h.Subscribe(domain.EventTurnStarted, func(ctx context.Context, evt domain.Event) error {
			order = append(order, i)
			return nil
		})
	}

	errs := h.Publish(ctx, domain.Event{Type: domain.EventTurnStarted})
	assert.Empty(t, errs)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order, "handlers must fire in subscription order")
}

func TestFailingHandlerDoesNotStopOthers(t *testing.T) {
	h := New()
	ctx := context.Background()

	var secondRan bool
	h.Subscribe(domain.EventEngineError, func(ctx context.Context, evt domain.Event) error {
		return errors.New("boom")
	})
	h.Subscribe(domain.EventEngineError, func(ctx context.Context, evt domain.Event) error {
		secondRan = true
		return nil
	})

	errs := h.Publish(ctx, domain.Event{Type: domain.EventEngineError})
	assert.Len(t, errs, 1)
	assert.True(t, secondRan, "a failing handler must not interrupt the rest")
}

func TestPanickingHandlerIsContained(t *testing.T) {
	h := New()
	ctx := context.Background()

	var secondRan bool
	h.Subscribe(domain.EventToolCallFailed, func(ctx context.Context, evt domain.Event) error {
		panic("handler bug")
	})
	h.Subscribe(domain.EventToolCallFailed, func(ctx context.Context, evt domain.Event) error {
		secondRan = true
		return nil
	})

	var errs []error
	require.NotPanics(t, func() {
		errs = h.Publish(ctx, domain.Event{Type: domain.EventToolCallFailed})
	})
	assert.Len(t, errs, 1)
	assert.True(t, secondRan)
}

func TestUnsubscribe(t *testing.T) {
	h := New()
	ctx := context.Background()

	var calls int
	unsubscribe := h.Subscribe(domain.EventTurnStarted, func(ctx context.Context, evt domain.Event) error {
		calls++
		return nil
	})

	h.Publish(ctx, domain.Event{Type: domain.EventTurnStarted})
	unsubscribe()
	h.Publish(ctx, domain.Event{Type: domain.EventTurnStarted})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, h.SubscriberCount(domain.EventTurnStarted))

	// Unsubscribing twice is harmless.
	assert.NotPanics(t, unsubscribe)
}

func TestUnsubscribeAll(t *testing.T) {
	h := New()
	handler := func(ctx context.Context, evt domain.Event) error { return nil }

	h.Subscribe(domain.EventTurnStarted, handler)
	h.Subscribe(domain.EventEngineError, handler)

	t.Run("by type", func(t *testing.T) {
		h.UnsubscribeAll(domain.EventTurnStarted)
		assert.Equal(t, 0, h.SubscriberCount(domain.EventTurnStarted))
		assert.Equal(t, 1, h.SubscriberCount(domain.EventEngineError))
	})

	t.Run("everything", func(t *testing.T) {
		h.Subscribe(domain.EventTurnStarted, handler)
		h.UnsubscribeAll()
		assert.Equal(t, 0, h.SubscriberCount(domain.EventTurnStarted))
		assert.Equal(t, 0, h.SubscriberCount(domain.EventEngineError))
	})
}

func TestPublishAndWait(t *testing.T) {
	h := New()
	ctx := context.Background()

	var (
		mu   sync.Mutex
		done []string
	)
	h.Subscribe(domain.EventToolCallFinished, func(ctx context.Context, evt domain.Event) error {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		done = append(done, "slow")
		mu.Unlock()
		return nil
	})
	h.Subscribe(domain.EventToolCallFinished, func(ctx context.Context, evt domain.Event) error {
		mu.Lock()
		done = append(done, "fast")
		mu.Unlock()
		return errors.New("late failure")
	})

	errs := h.PublishAndWait(ctx, domain.Event{Type: domain.EventToolCallFinished})

	// Both handlers have settled by the time PublishAndWait returns, even
	// though completion order is unordered.
	assert.Len(t, errs, 1)
	assert.ElementsMatch(t, []string{"slow", "fast"}, done)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	h := New()
	errs := h.Publish(context.Background(), domain.Event{Type: domain.EventTurnStarted})
	assert.Empty(t, errs)
}
