package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "meli-lister:session:"

// RedisStore implements SessionStore on Redis. Expiry is delegated to Redis
// key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis from a redis:// URL or a host:port address.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	var opt *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr}
	}

	s := &RedisStore{client: redis.NewClient(opt)}
	if err := s.Ping(ctx); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Load implements SessionStore.
func (s *RedisStore) Load(ctx context.Context, id string) (map[string]string, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decoding session data: %w", err)
	}
	return values, nil
}

// Save implements SessionStore with a single SET carrying the TTL.
func (s *RedisStore) Save(
	ctx context.Context,
	id string,
	values map[string]string,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding session data: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Delete implements SessionStore.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpired implements SessionStore. Redis expires keys itself.
func (*RedisStore) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}

// Ping implements SessionStore.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements SessionStore.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
