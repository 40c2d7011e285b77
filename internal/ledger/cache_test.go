package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRedis is an in-memory RedisClient.
type mockRedis struct {
	data    map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
	sets    int
}

func newMockRedis() *mockRedis {
	return &mockRedis{data: make(map[string]string)}
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockRedis) SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.sets++
	m.lastTTL = expiration
	if m.setErr != nil {
		return redis.NewStatusResult("", m.setErr)
	}
	m.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

// entry is the key of the cached ledger for generation gen.
func entry(gen int) string {
	return DefaultCacheKey + ":" + strconv.Itoa(gen)
}

// countingLoader decodes sampleLedger and counts calls.
type countingLoader struct {
	calls int
	err   error
}

func (c *countingLoader) Load(ctx context.Context) (*domain.Ledger, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return Decode(strings.NewReader(sampleLedger))
}

func TestCachedLoader_MissThenHit(t *testing.T) {
	rdb := newMockRedis()
	next := &countingLoader{}
	c := NewCachedLoader(next, rdb, 5*time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, rdb.sets)
	assert.Equal(t, 5*time.Minute, rdb.lastTTL)
	assert.Contains(t, rdb.data, entry(0))

	second, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls, "second load is served from cache")
	require.Len(t, second.Transactions, len(first.Transactions))
	assert.True(t, second.Transactions[1].Amount.Equal(first.Transactions[1].Amount))
	assert.Equal(t, first.Categories, second.Categories)
}

func TestCachedLoader_Invalidate(t *testing.T) {
	rdb := newMockRedis()
	next := &countingLoader{}
	c := NewCachedLoader(next, rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	_, err = c.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
	assert.NotContains(t, rdb.data, entry(0), "retired entry is deleted")
	assert.Contains(t, rdb.data, entry(1))
}

func TestCachedLoader_InvalidateDuringLoad(t *testing.T) {
	rdb := newMockRedis()
	var c *CachedLoader
	calls := 0
	slow := LoaderFunc(func(ctx context.Context) (*domain.Ledger, error) {
		calls++
		l, err := Decode(strings.NewReader(sampleLedger))
		if calls == 1 {
			// A new ledger is published while this load is in flight.
			require.NoError(t, c.Invalidate(ctx))
		}
		return l, err
	})
	c = NewCachedLoader(slow, rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := c.Load(ctx)
	require.NoError(t, err)
	_, err = c.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "the in-flight result must not satisfy later loads")
	_, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedLoader_RedisDown(t *testing.T) {
	rdb := newMockRedis()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("connection refused")
	next := &countingLoader{}
	c := NewCachedLoader(next, rdb, time.Minute, zerolog.Nop())

	l, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, l.Transactions, 2)
	assert.Equal(t, 1, next.calls)
}

func TestCachedLoader_CorruptEntry(t *testing.T) {
	rdb := newMockRedis()
	rdb.data[entry(0)] = "not a ledger"
	next := &countingLoader{}
	c := NewCachedLoader(next, rdb, time.Minute, zerolog.Nop())

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.NotEqual(t, "not a ledger", rdb.data[entry(0)], "entry is rewritten")
}

func TestCachedLoader_SourceError(t *testing.T) {
	rdb := newMockRedis()
	next := &countingLoader{err: ErrInvalidTransaction}
	c := NewCachedLoader(next, rdb, time.Minute, zerolog.Nop())

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransaction)
	assert.Zero(t, rdb.sets, "failures are not cached")
}
