package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
)

const DefaultPrefix = "vetsheet:parse:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis guarda resultados como JSON con TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ documents.ParseCache = (*Redis)(nil)

func NewRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisWithClient(client, cfg.Prefix, cfg.TTL)
}

func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) Get(ctx context.Context, key string) (documents.Result, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return documents.Result{}, false, nil
	}
	if err != nil {
		return documents.Result{}, false, fmt.Errorf("redis get: %w", err)
	}

	var res documents.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return documents.Result{}, false, fmt.Errorf("redis decode: %w", err)
	}
	return res, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, res documents.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}
