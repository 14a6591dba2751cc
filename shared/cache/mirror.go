package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const mirrorKeyPrefix = "guide:cache:"

// Mirror is the best-effort persistent half of the cache. Implementations
// own their TTL bookkeeping; callers treat any error as a miss.
type Mirror interface {
	Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) (payload []byte, remaining time.Duration, err error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

type redisMirror struct {
	client *redis.Client
}

func NewRedisMirror(client *redis.Client) Mirror {
	return &redisMirror{client: client}
}

func (m *redisMirror) Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := m.client.Set(ctx, mirrorKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to mirror cache value: %w", err)
	}

	return nil
}

func (m *redisMirror) Get(ctx context.Context, key string) ([]byte, time.Duration, error) {
	payload, err := m.client.Get(ctx, mirrorKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, Nil
	}

	if err != nil {
		return nil, 0, fmt.Errorf("failed to read mirrored cache value: %w", err)
	}

	remaining, err := m.client.TTL(ctx, mirrorKeyPrefix+key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read mirrored cache ttl: %w", err)
	}

	return payload, remaining, nil
}

func (m *redisMirror) Delete(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, mirrorKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete mirrored cache value: %w", err)
	}

	return nil
}

func (m *redisMirror) DeletePrefix(ctx context.Context, prefix string) error {
	return m.deleteMatching(ctx, mirrorKeyPrefix+prefix+"*")
}

func (m *redisMirror) Clear(ctx context.Context) error {
	return m.deleteMatching(ctx, mirrorKeyPrefix+"*")
}

func (m *redisMirror) deleteMatching(ctx context.Context, pattern string) error {
	iter := m.client.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete mirrored cache value: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan mirrored cache keys: %w", err)
	}

	return nil
}

type noopMirror struct{}

// NewNoopMirror returns a Mirror that stores nothing, for deployments
// without a mirror store. Every read is a miss.
func NewNoopMirror() Mirror {
	return noopMirror{}
}

func (noopMirror) Save(context.Context, string, []byte, time.Duration) error { return nil }

func (noopMirror) Get(context.Context, string) ([]byte, time.Duration, error) { return nil, 0, Nil }

func (noopMirror) Delete(context.Context, string) error { return nil }

func (noopMirror) DeletePrefix(context.Context, string) error { return nil }

func (noopMirror) Clear(context.Context) error { return nil }
