package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetsavoury/battletally/internal/config"
)

// Redis exposes the storage collaborator through plain KV primitives: the
// ledger and cache layers never see the client itself, only these operations.
type Redis struct {
	client *redis.Client
}

func Connect(ctx context.Context, cfg config.Redis) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error { return r.client.Close() }

// Get returns the value and whether the key exists. A missing key is not an
// error.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// SetNX writes the value only if the key is absent and reports whether this
// call created it. This is the atomic create-if-absent the idempotency gate
// relies on.
func (r *Redis) SetNX(ctx context.Context, key, value string) (bool, error) {
	return r.client.SetNX(ctx, key, value, 0).Result()
}

func (r *Redis) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return r.client.HGetAll(ctx, key).Result()
}

// IncrFields applies integer increments and plain field writes to one hash in
// a single pipeline, so the whole delta is submitted together.
func (r *Redis) IncrFields(ctx context.Context, key string, deltas map[string]int64, sets map[string]string) error {
	pipe := r.client.TxPipeline()
	for field, d := range deltas {
		pipe.HIncrBy(ctx, key, field, d)
	}
	for field, v := range sets {
		pipe.HSet(ctx, key, field, v)
	}
	_, err := pipe.Exec(ctx)
	return err
}
