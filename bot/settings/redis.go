package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps scalar values in one hash and each list in a sorted set
// scored by a per-list sequence, which preserves insertion order.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// RedisOptions addresses the server.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisBackend connects and pings the server.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisBackend{rdb: rdb, prefix: opts.Prefix}, nil
}

func (b *RedisBackend) valuesKey() string {
	return b.prefix + "settings"
}

func (b *RedisBackend) listKey(name string) string {
	return b.prefix + "list:" + name
}

func (b *RedisBackend) seqKey(name string) string {
	return b.prefix + "seq:" + name
}

func (b *RedisBackend) GetValue(ctx context.Context, name string) (string, bool, error) {
	v, err := b.rdb.HGet(ctx, b.valuesKey(), name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("hget %s: %w", name, err)
	}
	return v, true, nil
}

func (b *RedisBackend) SetValue(ctx context.Context, name, value string) error {
	if err := b.rdb.HSet(ctx, b.valuesKey(), name, value).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", name, err)
	}
	return nil
}

func (b *RedisBackend) DeleteValue(ctx context.Context, name string) error {
	if err := b.rdb.HDel(ctx, b.valuesKey(), name).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", name, err)
	}
	return nil
}

func (b *RedisBackend) ListItems(ctx context.Context, name string) ([]int64, error) {
	members, err := b.rdb.ZRange(ctx, b.listKey(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", name, err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("list %s: bad member %q: %w", name, m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *RedisBackend) AddItem(ctx context.Context, name string, id int64) (bool, error) {
	seq, err := b.rdb.Incr(ctx, b.seqKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", name, err)
	}
	n, err := b.rdb.ZAddNX(ctx, b.listKey(name), redis.Z{
		Score:  float64(seq),
		Member: strconv.FormatInt(id, 10),
	}).Result()
	if err != nil {
		return false, fmt.Errorf("zadd %s: %w", name, err)
	}
	return n > 0, nil
}

func (b *RedisBackend) RemoveItem(ctx context.Context, name string, id int64) (bool, error) {
	n, err := b.rdb.ZRem(ctx, b.listKey(name), strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("zrem %s: %w", name, err)
	}
	return n > 0, nil
}

// Close releases the client.
func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
