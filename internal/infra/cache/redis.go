package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

type redisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend creates a backend on a redis server.
func NewRedisBackend(addr, username, password string, db int, ttl time.Duration) Backend {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	return &redisBackend{client: client, ttl: ttl}
}

func (b *redisBackend) Get(ctx context.Context, key string) (string, error) {
	value, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", service.ErrCacheMiss
	}
	if err != nil {
		return "", errors.Wrapf(err, "redis get %s", key)
	}

	return value, nil
}

func (b *redisBackend) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(b.client.Set(ctx, key, value, b.ttl).Err(), "redis set %s", key)
}

func (b *redisBackend) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(b.client.Del(ctx, key).Err(), "redis del %s", key)
}

func (b *redisBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := b.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := b.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrapf(err, "redis del %s", iter.Val())
		}
	}

	return errors.Wrap(iter.Err(), "redis scan")
}

// Ping checks connectivity.
func (b *redisBackend) Ping(ctx context.Context) error {
	return errors.Wrap(b.client.Ping(ctx).Err(), "redis ping")
}

func (b *redisBackend) Close() error {
	return errors.WithStack(b.client.Close())
}
