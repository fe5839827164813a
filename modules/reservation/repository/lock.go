package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/utils"

	"github.com/redis/go-redis/v9"
)

// Locker serialises work on one logical key across concurrent requests.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker is a keyed mutex for single-process deployments.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyedLock)}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(key, entry)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, entry *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const lockPollInterval = 20 * time.Millisecond

// RedisLocker holds a lease in redis so that several API instances share one
// lock per key. The lease expires after ttl if the holder dies.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = constants.DefaultTimeout
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := constants.RedisKeyTeamDateLock + key
	token := utils.GenerateRandomString(24)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
			defer cancel()
			if err := unlockScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				logger.Warn("RedisLocker:Unlock", "key", key, "error", err)
			}
		})
	}, nil
}
