package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/kaotoio/kaoto/internal/config"
)

// RedisStore keeps records as JSON values in Redis
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the configured Redis server and checks that it
// answers
func NewRedisStore(
	ctx context.Context, cfg *config.SnapshotConfig,
) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.keyFor(rec.Version), data, 0)
		p.Set(ctx, s.key(latestKey), data, 0)
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, version int64) (*Record, error) {
	return s.read(ctx, s.keyFor(version))
}

func (s *RedisStore) Latest(ctx context.Context) (*Record, error) {
	return s.read(ctx, s.key(latestKey))
}

func (s *RedisStore) Delete(ctx context.Context, version int64) error {
	if err := s.client.Del(ctx, s.keyFor(version)).Err(); err != nil {
		return err
	}
	latest, err := s.Latest(ctx)
	if err != nil || latest.Version != version {
		return nil
	}
	return s.client.Del(ctx, s.key(latestKey)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) read(ctx context.Context, key string) (*Record, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) keyFor(version int64) string {
	return s.key(strconv.FormatInt(version, 10))
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":snapshot:" + name
}
