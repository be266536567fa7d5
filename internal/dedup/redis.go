package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the set holding seen job URLs.
const DefaultRedisKey = "jobmarket:seen_urls"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisCache keeps seen URLs in one Redis set. The whole set expires
// together: every Add pushes the expiry out again, so a URL is forgotten only
// after a full window with no scrape runs.
type RedisCache struct {
	rdb    *redis.Client
	key    string
	expiry time.Duration
	logger *slog.Logger
}

func NewRedisCache(rdb *redis.Client, key string, expiry time.Duration, logger *slog.Logger) *RedisCache {
	if key == "" {
		key = DefaultRedisKey
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{rdb: rdb, key: key, expiry: expiry, logger: logger}
}

// IsSeen reports false when Redis cannot be reached, so a cache outage
// means revisits rather than missed postings.
func (c *RedisCache) IsSeen(ctx context.Context, url string) bool {
	seen, err := c.rdb.SIsMember(ctx, c.key, url).Result()
	if err != nil {
		c.logger.Warn("seen cache lookup failed", "url", url, "error", err)
		return false
	}
	return seen
}

func (c *RedisCache) Add(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	members := make([]any, len(urls))
	for i, u := range urls {
		members[i] = u
	}

	pipe := c.rdb.TxPipeline()
	pipe.SAdd(ctx, c.key, members...)
	pipe.Expire(ctx, c.key, c.expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add seen urls: %w", err)
	}
	return nil
}
