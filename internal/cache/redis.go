package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rafipicu1/bartertalco-sub000/internal/config"
)

const (
	defaultSignalTTL = 30 * 24 * time.Hour
	// maxSignalMembers bounds how many members a ranking read pulls per user.
	maxSignalMembers = 200
)

// TermWeight is a search term with how often the user searched for it.
type TermWeight struct {
	Term   string
	Weight float64
}

// RedisCache stores per-user ranking signals. Nothing here is authoritative:
// losing a key only degrades ranking quality.
type RedisCache struct {
	Client    *redis.Client
	signalTTL time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	ttl := cfg.Redis.SignalTTL
	if ttl <= 0 {
		ttl = defaultSignalTTL
	}
	return &RedisCache{Client: redis.NewClient(opts), signalTTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForViews is the sorted set of item ids a user viewed, scored by count.
func (c *RedisCache) KeyForViews(userID uint64) string {
	return fmt.Sprintf("signals:views:%d", userID)
}

// KeyForSearch is the sorted set of search terms a user used, scored by count.
func (c *RedisCache) KeyForSearch(userID uint64) string {
	return fmt.Sprintf("signals:search:%d", userID)
}

// IncrView bumps the view counter of itemID for userID and refreshes the TTL.
func (c *RedisCache) IncrView(ctx context.Context, userID, itemID uint64) error {
	key := c.KeyForViews(userID)
	pipe := c.Client.TxPipeline()
	pipe.ZIncrBy(ctx, key, 1, strconv.FormatUint(itemID, 10))
	pipe.Expire(ctx, key, c.signalTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// IncrSearchTerms bumps every term once and refreshes the TTL.
func (c *RedisCache) IncrSearchTerms(ctx context.Context, userID uint64, terms []string) error {
	if len(terms) == 0 {
		return nil
	}
	key := c.KeyForSearch(userID)
	pipe := c.Client.TxPipeline()
	for _, t := range terms {
		pipe.ZIncrBy(ctx, key, 1, t)
	}
	pipe.Expire(ctx, key, c.signalTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// ViewCounts returns the most viewed items of a user as item id → count.
// A missing key is an empty map, not an error.
func (c *RedisCache) ViewCounts(ctx context.Context, userID uint64) (map[uint64]float64, error) {
	zs, err := c.Client.ZRevRangeWithScores(ctx, c.KeyForViews(userID), 0, maxSignalMembers-1).Result()
	if errors.Is(err, redis.Nil) {
		return map[uint64]float64{}, nil
	} else if err != nil {
		return nil, err
	}

	out := make(map[uint64]float64, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue // foreign member, ignore
		}
		out[id] = z.Score
	}
	return out, nil
}

// SearchTerms returns up to limit of the user's most frequent search terms.
func (c *RedisCache) SearchTerms(ctx context.Context, userID uint64, limit int) ([]TermWeight, error) {
	if limit <= 0 || limit > maxSignalMembers {
		limit = maxSignalMembers
	}
	zs, err := c.Client.ZRevRangeWithScores(ctx, c.KeyForSearch(userID), 0, int64(limit-1)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	out := make([]TermWeight, 0, len(zs))
	for _, z := range zs {
		if term, ok := z.Member.(string); ok && term != "" {
			out = append(out, TermWeight{Term: term, Weight: z.Score})
		}
	}
	return out, nil
}

// ResetSignals drops every signal of a user.
func (c *RedisCache) ResetSignals(ctx context.Context, userID uint64) error {
	return c.Del(ctx, c.KeyForViews(userID), c.KeyForSearch(userID))
}
