package cachesvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

type RedisCache struct {
	rdb *redis.Client
}

var _ core.Cache = (*RedisCache)(nil)

func NewRedisCache(conf core.RedisConfig) *RedisCache {
	return &RedisCache{rdb: redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "redis get "+key)
	}
	if err = json.Unmarshal(val, dest); err != nil {
		return false, errors.Wrap(err, "decoding "+key)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "encoding "+key)
	}
	return errors.Wrap(c.rdb.Set(ctx, key, data, ttl).Err(), "redis set "+key)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(c.rdb.Del(ctx, keys...).Err(), "redis del")
}

func (c *RedisCache) Close() error { return c.rdb.Close() }
