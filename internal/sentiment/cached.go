package sentiment

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"signal-sniper/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "sniper:sentiment:"

type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached memoizes another classifier's results in Redis. Cache failures
// fall through to the wrapped classifier.
type Cached struct {
	next      Classifier
	redis     RedisClient
	ttl       time.Duration
	namespace string
	log       *logger.Logger
}

// NewCached returns next unchanged when client is nil or ttl is not positive.
func NewCached(next Classifier, client RedisClient, ttl time.Duration, namespace string, log *logger.Logger) Classifier {
	if client == nil || ttl <= 0 || next == nil {
		return next
	}
	return &Cached{
		next:      next,
		redis:     client,
		ttl:       ttl,
		namespace: namespace,
		log:       logger.OrDefault(log).With("component", "sentiment-cache"),
	}
}

func (c *Cached) Classify(ctx context.Context, text string) (Result, error) {
	text = Truncate(text)
	key := c.key(text)

	raw, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached Result
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warnw("sentiment cache read failed", "error", err)
	}

	result, err := c.next.Classify(ctx, text)
	if err != nil {
		return Result{}, err
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warnw("sentiment cache write failed", "error", err)
		}
	}
	return result, nil
}

func (c *Cached) key(text string) string {
	h := sha1.Sum([]byte(text))
	return cacheKeyPrefix + c.namespace + ":" + hex.EncodeToString(h[:])
}
