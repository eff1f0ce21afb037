// Package redisstore keeps session values in a single redis hash, letting several console
// processes share one operator session.
package redisstore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fmastery/admin-console/internal/session"
	"github.com/redis/go-redis/v9"
)

type Backend struct {
	client *redis.Client
	key    string
	closed atomic.Bool
}

var _ session.Backend = (*Backend)(nil)

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// New stores every value as a field of the hash "<namespace>:session".
func New(client *redis.Client, namespace string) *Backend {
	if namespace == "" {
		namespace = "admin-console"
	}
	return &Backend{client: client, key: namespace + ":session"}
}

func (b *Backend) Key() string { return b.key }

func (b *Backend) Read(ctx context.Context, keys ...string) (map[string]string, error) {
	if b.closed.Load() {
		return nil, session.ErrBackendClosed
	}
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	vals, err := b.client.HMGet(ctx, b.key, keys...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis hmget: %w", err)
	}

	out := make(map[string]string, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

func (b *Backend) Write(ctx context.Context, values map[string]string) error {
	if b.closed.Load() {
		return session.ErrBackendClosed
	}
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}
	if err := b.client.HSet(ctx, b.key, args...).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if b.closed.Load() {
		return session.ErrBackendClosed
	}
	if len(keys) == 0 {
		return nil
	}
	if err := b.client.HDel(ctx, b.key, keys...).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	if b.closed.Load() {
		return session.ErrBackendClosed
	}
	return b.client.Ping(ctx).Err()
}

// Close shuts the client down. Later calls fail with session.ErrBackendClosed.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.client.Close()
}
