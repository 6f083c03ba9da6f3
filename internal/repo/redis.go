package repo

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	Client *redis.Client
	Prefix string
}

func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	return &RedisRepo{Client: client, Prefix: prefix}
}

func (r *RedisRepo) key(k string) string {
	return r.Prefix + k
}

func (r *RedisRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.Client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisRepo) Put(ctx context.Context, key string, value []byte) error {
	return r.Client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisRepo) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.key(key)).Err()
}

var _ Store = (*RedisRepo)(nil)
