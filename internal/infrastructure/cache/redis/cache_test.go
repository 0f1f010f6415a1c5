package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

const wrenPhoto = "https://upload.wikimedia.org/wikipedia/commons/a/ab/Troglodytes_troglodytes.jpg"

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheWithClient(client, "", ttl), mr
}

func TestNewCache(t *testing.T) {
	_, err := NewCache(config.RedisConfig{})
	assert.ErrorIs(t, err, entities.ErrConfiguration)

	_, err = NewCache(config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	c, err := NewCache(config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.Ping(context.Background()))
}

func TestCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()

	miss, err := c.GetImage(ctx, "Eurasian Wren")
	require.NoError(t, err)
	assert.Empty(t, miss)

	require.NoError(t, c.SetImage(ctx, "eurasian  wren", wrenPhoto))
	assert.True(t, mr.Exists("feather:image:Eurasian Wren"))

	got, err := c.GetImage(ctx, "EURASIAN WREN")
	require.NoError(t, err)
	assert.Equal(t, wrenPhoto, got)

	require.NoError(t, c.DeleteImage(ctx, "Eurasian Wren"))
	got, err = c.GetImage(ctx, "Eurasian Wren")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_TTL(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.SetImage(ctx, "Goldcrest", wrenPhoto))
	assert.Equal(t, time.Hour, mr.TTL("feather:image:Goldcrest"))

	mr.FastForward(2 * time.Hour)

	got, err := c.GetImage(ctx, "Goldcrest")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t, 0)
	mr.Close()

	_, err := c.GetImage(context.Background(), "Goldcrest")

	assert.Error(t, err)
}
