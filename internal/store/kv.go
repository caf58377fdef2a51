package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"ward-census/internal/config"
)

var ErrMiss = errors.New("cache miss")

type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}

// NewRedisClient 创建Redis客户端
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.c.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.c.Del(ctx, keys...).Err()
}

// Ping 测试Redis连接
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

// DeletePattern removes every key matching pattern and reports how many were found.
func DeletePattern(ctx context.Context, kv KV, pattern string) (int, error) {
	keys, err := kv.ScanKeys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if err := kv.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
