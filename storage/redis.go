package storage

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces save keys.
const DefaultRedisPrefix = "sagacore:save:"

// RedisStore keeps each save as a string value under prefix+name.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to addr, which is either host:port or a
// redis:// URL, and pings it.
func NewRedisStore(ctx context.Context, addr, prefix string, log *slog.Logger) (*RedisStore, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing redis url %s", addr)
		}
		opts = parsed
	}
	return NewRedisStoreFromClient(ctx, redis.NewClient(opts), prefix, log)
}

// NewRedisStoreFromClient wraps an existing client. The store owns it
// afterwards and closes it on Close.
func NewRedisStoreFromClient(ctx context.Context, client *redis.Client, prefix string, log *slog.Logger) (*RedisStore, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return &RedisStore{client: client, prefix: prefix, log: log}, nil
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+name, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", name)
	}
	s.log.Debug("save written", "backend", BackendRedis, "name", name, "bytes", len(data))
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis get %s", name)
	}
	s.log.Debug("save read", "backend", BackendRedis, "name", name, "bytes", len(data))
	return data, nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names := []string{}
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "redis scan")
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.prefix+name).Result()
	if err != nil {
		return errors.Wrapf(err, "redis del %s", name)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "%s", name)
	}
	s.log.Debug("save deleted", "backend", BackendRedis, "name", name)
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
