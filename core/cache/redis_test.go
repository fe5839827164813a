package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTeam struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_JSONRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got cachedTeam
	found, err := c.GetJSON(ctx, "team:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := cachedTeam{ID: "abc", Members: []string{"ann", "bob"}}
	require.NoError(t, c.SetJSON(ctx, "team:abc", want, time.Minute))

	found, err = c.GetJSON(ctx, "team:abc", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, c.Del(ctx, "team:abc"))
	found, err = c.GetJSON(ctx, "team:abc", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.Nil)
}
