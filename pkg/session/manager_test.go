package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dodgeblaster/orange-agent/pkg/adapters/memory"
	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	messages, err := m.LoadOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Second call loads the reserved session instead of recreating it.
	require.NoError(t, m.Save(ctx, "s1", []domain.Message{{ID: "m-1", Kind: domain.KindUser}}))

	messages, err = m.LoadOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestLoadMissingSession(t *testing.T) {
	m := NewManager(memory.NewStore())

	_, err := m.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestWithLockSerializesSameSession(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(ctx, "shared", func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "critical sections for one session must not overlap")
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	lastTTL  time.Duration
	lastKeys []string
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locks++
	l.lastTTL = ttl
	l.lastKeys = append(l.lastKeys, key)
	l.mu.Unlock()

	return func(ctx context.Context) error {
		l.mu.Lock()
		l.unlocks++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestDistributedLockerIsUsed(t *testing.T) {
	locker := &countingLocker{}
	m := NewManager(memory.NewStore(),
		WithLocker(locker),
		WithLockTTL(10*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "s1", nil))

	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlocks)
	assert.Equal(t, 10*time.Second, locker.lastTTL)
	assert.Equal(t, []string{"s1"}, locker.lastKeys)
}
