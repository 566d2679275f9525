package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniredisStore(t, time.Minute)
	key := Key("GET", "https://api.twitter.com/1.1/users/lookup.json?user_id=1", "t")

	s.Put(ctx, key, []byte(`[{"id":1}]`))

	got, ok := s.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))
	assert.True(t, mr.Exists(DefaultRedisPrefix+key))
	assert.Equal(t, time.Minute, mr.TTL(DefaultRedisPrefix+key))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniredisStore(t, time.Minute)
	key := Key("GET", "u", "t")

	s.Put(ctx, key, []byte(`{}`))
	mr.FastForward(2 * time.Minute)

	_, ok := s.Get(ctx, key)
	assert.False(t, ok)
}

func TestRedisStore_Miss(t *testing.T) {
	s, _ := newMiniredisStore(t, 0)
	assert.Equal(t, DefaultTTL, s.ttl)
	_, ok := s.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestRedisStore_ClearOnlyOwnPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStoreWithClient(client, "tl:", time.Minute)

	for i := 0; i < 150; i++ {
		s.Put(ctx, Key("GET", fmt.Sprintf("https://api.twitter.com/1.1/x.json?page=%d", i), "t"), []byte(`1`))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, s.Clear(ctx))

	keys := mr.Keys()
	assert.Equal(t, []string{"other:key"}, keys)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", time.Minute)
	t.Cleanup(func() { _ = s.Close() })
	mr.Close()

	s.Put(ctx, "k", []byte(`{}`))
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok, "an unreachable redis behaves like an empty cache")
	assert.Error(t, s.Clear(ctx))
}
