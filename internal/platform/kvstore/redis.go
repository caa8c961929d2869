package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as plain Redis strings under a namespace prefix.
// Keys have no TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis store. If prefix is empty, it uses "dietguide".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "dietguide"
	}
	return &Redis{client: client, prefix: prefix}
}

// redisKey returns the namespaced Redis key.
func (r *Redis) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.redisKey(key), value, 0).Err()
}

// Remove deletes key. Removing a missing key is not an error.
func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.redisKey(key)).Err()
}

// Ping checks the connection to the Redis server.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
