package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"guide/infras/otel"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
)

// Nil is returned by Get when no live entry exists for the key.
var Nil = errors.New("cache: nil")

// Cache is a key/value store where time is the only eviction signal. An
// entry is logically absent once its TTL has elapsed, whether or not it has
// been physically removed.
type Cache interface {
	Save(ctx context.Context, key string, value any, ttlSeconds int) error
	Get(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

type entry struct {
	payload    []byte
	insertedAt time.Time
	ttl        time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	mirror  Mirror
	otel    otel.Otel
	now     func() time.Time
}

// New returns a Cache backed by an in-process map with a best-effort
// persistent mirror. Mirror failures are swallowed; the in-memory view is
// authoritative within a process lifetime.
func New(mirror Mirror, ot otel.Otel) Cache {
	return &memoryCache{
		entries: map[string]entry{},
		mirror:  mirror,
		otel:    ot,
		now:     time.Now,
	}
}

// Save implements Cache.
func (cache *memoryCache) Save(ctx context.Context, key string, value any, ttlSeconds int) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Save")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelCacheKeyAttribute, key)

	payload, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("Cache", "Save").Msg("failed to marshal cache value")

		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	ttl := time.Duration(ttlSeconds) * time.Second

	cache.mu.Lock()
	cache.entries[key] = entry{payload: payload, insertedAt: cache.now(), ttl: ttl}
	cache.mu.Unlock()

	if err := cache.mirror.Save(ctx, key, payload, ttl); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache mirror write failed, continuing")
	}

	return nil
}

// Get implements Cache. A memory miss falls through to the mirror so a
// restarted process can reuse still-live entries.
func (cache *memoryCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Get")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	payload, ok := cache.getLive(key)
	if !ok {
		payload, err = cache.getMirrored(ctx, key)
		if err != nil {
			return Nil
		}
	}

	if err := json.Unmarshal(payload, value); err != nil {
		log.Error().Err(err).Str("Cache", "Get").Msg("failed to unmarshal cache value")
		scope.TraceError(err)

		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

// Delete implements Cache.
func (cache *memoryCache) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelCacheKeyAttribute, key)

	cache.mu.Lock()
	delete(cache.entries, key)
	cache.mu.Unlock()

	if err := cache.mirror.Delete(ctx, key); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache mirror delete failed, continuing")
	}

	return nil
}

// DeletePrefix implements Cache. Listing and search entries embed their
// query in the key, so writers invalidate them by prefix.
func (cache *memoryCache) DeletePrefix(ctx context.Context, prefix string) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".DeletePrefix")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelCacheKeyAttribute, prefix)

	cache.mu.Lock()
	for key := range cache.entries {
		if strings.HasPrefix(key, prefix) {
			delete(cache.entries, key)
		}
	}
	cache.mu.Unlock()

	if err := cache.mirror.DeletePrefix(ctx, prefix); err != nil {
		log.Debug().Err(err).Str("prefix", prefix).Msg("cache mirror prefix delete failed, continuing")
	}

	return nil
}

// Clear implements Cache. Used on sign-out so a later principal cannot
// observe the previous one's entries.
func (cache *memoryCache) Clear(ctx context.Context) (err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Clear")
	defer scope.End()
	defer scope.TraceIfError(err)

	cache.mu.Lock()
	cache.entries = map[string]entry{}
	cache.mu.Unlock()

	if err := cache.mirror.Clear(ctx); err != nil {
		log.Debug().Err(err).Msg("cache mirror clear failed, continuing")
	}

	return nil
}

func (cache *memoryCache) getLive(key string) ([]byte, bool) {
	cache.mu.RLock()
	ent, ok := cache.entries[key]
	cache.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if ent.expired(cache.now()) {
		cache.mu.Lock()
		// Re-check under the write lock; a concurrent Save may have replaced it.
		if current, still := cache.entries[key]; still && current.expired(cache.now()) {
			delete(cache.entries, key)
		}
		cache.mu.Unlock()

		return nil, false
	}

	return ent.payload, true
}

func (cache *memoryCache) getMirrored(ctx context.Context, key string) ([]byte, error) {
	payload, remaining, err := cache.mirror.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if remaining <= 0 {
		return nil, Nil
	}

	cache.mu.Lock()
	cache.entries[key] = entry{payload: payload, insertedAt: cache.now(), ttl: remaining}
	cache.mu.Unlock()

	return payload, nil
}
