package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultCacheKey prefixes the Redis keys of the cache. The encoded ledger
// lives at "<key>:<generation>" and the current generation at
// "<key>:generation".
const DefaultCacheKey = "ledger:snapshot"

const generationSuffix = ":generation"

// RedisClient is the subset of the go-redis client used by CachedLoader.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// CachedLoader keeps the encoded ledger of another loader in Redis. Only the
// raw snapshot is cached; analytics are always recomputed from it. Cache
// failures are logged and fall through to the wrapped loader.
//
// Invalidate bumps a generation counter instead of only deleting the entry,
// so a load that started before the invalidation writes its ledger under the
// retired generation where no later Load looks.
type CachedLoader struct {
	next   Loader
	client RedisClient
	key    string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedLoader wraps next with a Redis cache entry that expires after ttl.
func NewCachedLoader(next Loader, client RedisClient, ttl time.Duration, log zerolog.Logger) *CachedLoader {
	return &CachedLoader{
		next:   next,
		client: client,
		key:    DefaultCacheKey,
		ttl:    ttl,
		log:    log,
	}
}

// Load implements Loader.
func (c *CachedLoader) Load(ctx context.Context) (*domain.Ledger, error) {
	log := logger.FromContextOr(ctx, c.log)

	key, err := c.entryKey(ctx)
	if err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("Ledger cache unavailable")
		return c.next.Load(ctx)
	}

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		l, decodeErr := Decode(bytes.NewReader(cached))
		if decodeErr == nil {
			log.Debug().Str("key", key).Msg("Ledger cache hit")
			return l, nil
		}
		log.Warn().Err(decodeErr).Str("key", key).Msg("Discarding unreadable cached ledger")
	case errors.Is(err, redis.Nil):
		log.Debug().Str("key", key).Msg("Ledger cache miss")
	default:
		log.Warn().Err(err).Str("key", key).Msg("Ledger cache unavailable")
	}

	l, err := c.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, l); err != nil {
		return nil, fmt.Errorf("CachedLoader: encoding ledger: %w", err)
	}
	if err := c.client.SetEx(ctx, key, buf.Bytes(), c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache ledger")
	}
	return l, nil
}

// entryKey returns the key of the current generation's entry.
func (c *CachedLoader) entryKey(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, c.key+generationSuffix).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		return "", fmt.Errorf("CachedLoader: reading generation: %w", err)
	}
	return c.key + ":" + strconv.FormatInt(gen, 10), nil
}

// Invalidate drops the cached ledger so the next Load reads from the source.
func (c *CachedLoader) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, c.key+generationSuffix).Result()
	if err != nil {
		return fmt.Errorf("CachedLoader: bumping generation: %w", err)
	}

	retired := c.key + ":" + strconv.FormatInt(gen-1, 10)
	if err := c.client.Del(ctx, retired).Err(); err != nil {
		log := logger.FromContextOr(ctx, c.log)
		log.Warn().Err(err).Str("key", retired).Msg("Failed to delete retired cache entry")
	}
	return nil
}

var _ Loader = (*CachedLoader)(nil)

// DialRedis connects to Redis at addr, which may be a redis:// URL or a bare
// host:port, and verifies the connection with a ping.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("DialRedis: ping %s: %w", opt.Addr, err)
	}
	return client, nil
}
