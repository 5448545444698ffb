package repository

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tandem-mlops/tandem/pkg/model"
)

// Redis keeps online features as one hash per entity under "<view>:<entity>"
type Redis struct {
	client *redis.Client
}

var _ OnlineStore = (*Redis)(nil)

// NewRedisClient creates a client for addr with the timeouts used for online serving
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// FeatureKey builds the hash key. Entity keys are case and whitespace insensitive.
func FeatureKey(view, entity string) string {
	return view + ":" + strings.ToLower(strings.TrimSpace(entity))
}

func (r *Redis) PutFeatures(ctx context.Context, view, entity string, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	key := FeatureKey(view, entity)
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to put features",
			goerr.V("view", view),
			goerr.V("entity", entity))
	}
	return nil
}

func (r *Redis) GetFeatures(ctx context.Context, view, entity string) (map[string]string, error) {
	values, err := r.client.HGetAll(ctx, FeatureKey(view, entity)).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get features",
			goerr.V("view", view),
			goerr.V("entity", entity))
	}
	if len(values) == 0 {
		return nil, goerr.Wrap(model.ErrFeatureNotFound, "no online features",
			goerr.V("view", view),
			goerr.V("entity", entity))
	}
	return values, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return goerr.Wrap(err, "redis ping failed")
	}
	return nil
}

func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close redis client")
	}
	return nil
}
