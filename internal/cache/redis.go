package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/affgate/affgate/pkg/logger"
)

// Redis is the shared fallback tier. Every operation is best-effort: backend
// errors are logged and reported as misses so an unavailable Redis never
// breaks the request path.
type Redis struct {
	client redis.UniversalClient
	log    logger.Logger
}

// NewRedis wraps an existing Redis client as a Store.
func NewRedis(client redis.UniversalClient, log logger.Logger) *Redis {
	return &Redis{client: client, log: log}
}

// Connect builds a Redis client and verifies connectivity. Returns an error
// when the backend is unreachable; callers are expected to degrade to the
// fast tier alone rather than abort startup.
func Connect(ctx context.Context, addresses []string, password string, db int, log logger.Logger) (*Redis, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addresses,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedis(client, log), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn(ctx, "redis get failed", logger.Fields{"key": key, "reason": err.Error()})
		}
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn(ctx, "redis set failed", logger.Fields{"key": key, "reason": err.Error()})
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Warn(ctx, "redis delete failed", logger.Fields{"key": key, "reason": err.Error()})
	}
}

func (r *Redis) Clear(ctx context.Context, prefix string) error {
	pattern := prefix + "*"
	iter := r.client.Scan(ctx, 0, pattern, 256).Iterator()

	batch := make([]string, 0, 256)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Ping reports backend health for readiness checks.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
