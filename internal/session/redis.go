package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps tokens in Redis under Prefix+key, expiring after TTL when
// TTL is positive. It lets several gateway instances share sessions.
type RedisStore struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, Prefix: "pms:session:", TTL: ttl}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	tok, err := r.Client.Get(ctx, r.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}

	return tok, err
}

func (r *RedisStore) Put(ctx context.Context, key, token string) error {
	return r.Client.Set(ctx, r.Prefix+key, token, r.TTL).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.Prefix+key).Err()
}
