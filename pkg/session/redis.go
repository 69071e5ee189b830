package session

import (
	"context"
	"time"

	"github.com/go-redis/redis"
)

// RedisClient is the subset of *redis.Client used by RedisStore.
type RedisClient interface {
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(key string) *redis.StringCmd
	Del(keys ...string) *redis.IntCmd
	Expire(key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// DefaultRedisPrefix is prepended to every session key.
const DefaultRedisPrefix = "sputnik:session:"

// RedisStore keeps snapshots in Redis and lets Redis expire them.
type RedisStore struct {
	client RedisClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: DefaultRedisPrefix.
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a store on top of a go-redis client.
func NewRedisStore(client RedisClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, data []byte, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return s.client.Del(s.key(sessionID)).Err()
	}
	return s.client.Set(s.key(sessionID), data, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.Get(s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.Del(s.key(sessionID)).Err()
}

func (s *RedisStore) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// EXPIRE on a missing key returns false, not an error.
	return s.client.Expire(s.key(sessionID), time.Until(expiresAt)).Err()
}

// SaveAll writes sessions one by one and stops at the first failure.
func (s *RedisStore) SaveAll(ctx context.Context, sessions map[string]Data) error {
	for id, d := range sessions {
		if err := s.Save(ctx, id, d.Bytes, d.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
