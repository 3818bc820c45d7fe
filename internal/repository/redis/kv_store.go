// Package redis persists collections as plain string keys in Redis.
package redis

import (
	"context"
	"f2fit/gym-manager/internal/config"
	"f2fit/gym-manager/internal/repository"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Connect opens a client and verifies it with a PING.
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "redis ping %s", cfg.Addr)
	}
	return rdb, nil
}

type kvStore struct {
	client *redis.Client
}

// NewKVStore implements repository.KVStore using optimistic WATCH/MULTI updates.
func NewKVStore(client *redis.Client) repository.KVStore {
	return &kvStore{client: client}
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", key)
	}
	return val, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *kvStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

func (s *kvStore) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			current, exists = nil, false
		} else if err != nil {
			return errors.Wrapf(err, "redis get %s", key)
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < repository.MaxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return repository.ErrConflict
}
