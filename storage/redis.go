package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ByLCY/quire/config"
)

var tracer = otel.Tracer("quire/storage")

// Redis 是基于 go-redis 的 KV 实现，所有键加上统一前缀。
type Redis struct {
	rdb    *redis.Client
	prefix string
}

var _ KV = (*Redis)(nil)

// NewRedis 按配置创建客户端并验证连接。
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisFromClient(rdb, cfg.KeyPrefix), nil
}

// NewRedisFromClient 包装已有客户端。
func NewRedisFromClient(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

// Get 实现 KV（带追踪）。
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("redis.hit", false))
		return nil, false, nil
	}
	if err != nil {
		recordError(span, err)
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("redis.hit", true))
	return val, true, nil
}

// Set 实现 KV（带追踪）。
func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	if err := r.rdb.Set(ctx, r.prefix+key, val, 0).Err(); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// Delete 实现 KV（带追踪）。
func (r *Redis) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "redis.Del",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// Ping 检查连接。
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close 关闭连接。
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
