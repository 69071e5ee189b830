package likes

import (
	"context"
	"strconv"

	"github.com/go-redis/redis"
)

// RedisClient is the subset of *redis.Client used by RedisCounter.
type RedisClient interface {
	Incr(key string) *redis.IntCmd
	Get(key string) *redis.StringCmd
}

// RedisCounter keeps a per-widget like counter under "<prefix><widget>".
type RedisCounter struct {
	client RedisClient
	prefix string
}

// NewRedisCounter creates a counter with the key prefix "likes:".
func NewRedisCounter(client RedisClient) *RedisCounter {
	return &RedisCounter{client: client, prefix: "likes:"}
}

// WithPrefix changes the key prefix.
func (c *RedisCounter) WithPrefix(prefix string) *RedisCounter {
	c.prefix = prefix
	return c
}

// Record increments the widget's counter.
func (c *RedisCounter) Record(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.Incr(c.prefix + ev.Widget).Err()
}

// Count returns the widget's current counter; a missing key counts as zero.
func (c *RedisCounter) Count(ctx context.Context, widget string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := c.client.Get(c.prefix + widget).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}
