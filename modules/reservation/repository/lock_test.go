package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockers(t *testing.T) map[string]Locker {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Locker{
		"memory": NewMemoryLocker(),
		"redis":  NewRedisLocker(client, time.Second),
	}
}

func TestLocker_MutualExclusion(t *testing.T) {
	for name, locker := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				inside  int
				maxSeen int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := locker.Lock(context.Background(), "team-1|2024-05-01")
					require.NoError(t, err)
					mu.Lock()
					inside++
					if inside > maxSeen {
						maxSeen = inside
					}
					mu.Unlock()

					time.Sleep(2 * time.Millisecond)

					mu.Lock()
					inside--
					mu.Unlock()
					unlock()
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, maxSeen)
		})
	}
}

func TestLocker_ContextCancelWhileWaiting(t *testing.T) {
	for name, locker := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := locker.Lock(context.Background(), "busy")
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
			defer cancel()
			_, err = locker.Lock(ctx, "busy")
			assert.ErrorIs(t, err, context.DeadlineExceeded)

			other, err := locker.Lock(context.Background(), "free")
			require.NoError(t, err)
			other()
		})
	}
}

func TestMemoryLocker_ReleasesEntries(t *testing.T) {
	l := NewMemoryLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()
	assert.Empty(t, l.locks)
}
