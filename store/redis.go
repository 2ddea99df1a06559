package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each session in one hash that expires after TTL of
// inactivity.
type RedisBackend struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func (r RedisBackend) key(sessionID string) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = "salonpro:session:"
	}
	return prefix + sessionID
}

func (r RedisBackend) Load(ctx context.Context, sessionID string) (map[string]string, error) {
	values, err := r.Client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return values, nil
}

func (r RedisBackend) Save(ctx context.Context, sessionID, key, value string) error {
	pipe := r.Client.TxPipeline()
	pipe.HSet(ctx, r.key(sessionID), key, value)
	if r.TTL > 0 {
		pipe.Expire(ctx, r.key(sessionID), r.TTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r RedisBackend) Delete(ctx context.Context, sessionID, key string) error {
	return r.Client.HDel(ctx, r.key(sessionID), key).Err()
}
