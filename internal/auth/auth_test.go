package auth

import (
	"context"
	"errors"
	"testing"

	radix "github.com/mediocregopher/radix/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webprojects1100/rolyo/internal/config"
)

func TestGenerateAndParseToken(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}

	token, err := GenerateToken(cfg, 7, "alice", true)
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "secret-a"}, 7, "alice", false)
	require.NoError(t, err)

	_, err = ParseToken(&config.JWTConfig{Secret: "secret-b"}, token)
	assert.Error(t, err)
}

func TestConsistentHashRingStableMapping(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)

	node := ring.GetNode("some-token")
	for i := 0; i < 10; i++ {
		assert.Equal(t, node, ring.GetNode("some-token"))
	}
	assert.Contains(t, []string{"n1", "n2", "n3"}, node)
}

func TestConsistentHashRingDefaults(t *testing.T) {
	ring := NewConsistentHashRing(nil, 0)
	assert.Equal(t, "auth-node-default", ring.GetNode("anything"))
}

func stubRedis(store map[string]string) radix.Client {
	return radix.Stub("tcp", "127.0.0.1:6379", func(args []string) interface{} {
		switch args[0] {
		case "GET":
			return store[args[1]]
		case "SETEX":
			store[args[1]] = args[3]
			return "OK"
		case "DEL":
			delete(store, args[1])
			return 1
		}
		return errors.New("unexpected command " + args[0])
	})
}

func TestTokenCacheRoundTrip(t *testing.T) {
	store := map[string]string{}
	cache := NewTokenCache(stubRedis(store), NewConsistentHashRing([]string{"n1", "n2"}, 10), 0)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)

	claims := &Claims{UserID: 7, Username: "alice"}
	require.NoError(t, cache.Set(ctx, "tok-1", claims))

	got, ok, err := cache.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Username)
}

// 缓存里是坏数据时清掉并回退到正常验签路径
func TestTokenCacheCorruptEntry(t *testing.T) {
	store := map[string]string{}
	ring := NewConsistentHashRing([]string{"n1"}, 10)
	cache := NewTokenCache(stubRedis(store), ring, 0)

	store[cache.cacheKey("tok-1")] = "{bad json"

	_, ok, err := cache.Get(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store)
}

func TestTokenCacheNilRedis(t *testing.T) {
	cache := NewTokenCache(nil, nil, 0)
	_, ok, err := cache.Get(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, cache.Set(context.Background(), "tok-1", &Claims{UserID: 1}))
}
