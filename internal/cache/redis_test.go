package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableCache() *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	}))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "revenue:7:2024-05:anual", Key("revenue", "7", "2024-05", "anual"))
	assert.Equal(t, "", Key())
}

func TestGet_ConnectionErrorIsWrapped(t *testing.T) {
	var out map[string]any
	hit, err := unreachableCache().Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.ErrorContains(t, err, "cache.Get")
}

func TestSet_RejectsUnencodableValue(t *testing.T) {
	err := unreachableCache().Set(context.Background(), "k", make(chan int), time.Minute)
	assert.ErrorContains(t, err, "cache.Set")
}

// memoryRedis answers Get/Set from a map the way a Redis server would.
type memoryRedis struct {
	items map[string]string
	ttls  map[string]time.Duration
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{items: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	val, ok := m.items[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.items[key] = string(v)
	case string:
		m.items[key] = v
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

type card struct {
	Revenue float64 `json:"faturamento"`
	Period  string  `json:"periodo"`
}

func TestGet_MissIsNotAnError(t *testing.T) {
	c := NewWithClient(newMemoryRedis())

	var out card
	hit, err := c.Get(context.Background(), "revenue:1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, card{}, out)
}

func TestSetThenGet(t *testing.T) {
	store := newMemoryRedis()
	c := NewWithClient(store)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "revenue:1", card{Revenue: 1500.5, Period: "2024-03"}, time.Minute))
	assert.Equal(t, time.Minute, store.ttls["analytics:revenue:1"])

	var out card
	hit, err := c.Get(ctx, "revenue:1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, card{Revenue: 1500.5, Period: "2024-03"}, out)
}

func TestGet_CorruptValue(t *testing.T) {
	store := newMemoryRedis()
	store.items["analytics:k"] = "{not json"

	var out card
	hit, err := NewWithClient(store).Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.ErrorContains(t, err, "cache.Get")
}
