package cache

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"guide/infras/otel/mocks"
)

type stubMirror struct {
	entries map[string]mirrorEntry
	fail    bool
}

type mirrorEntry struct {
	payload   []byte
	remaining time.Duration
}

func newStubMirror() *stubMirror {
	return &stubMirror{entries: map[string]mirrorEntry{}}
}

func (m *stubMirror) Save(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if m.fail {
		return assert.AnError
	}

	m.entries[key] = mirrorEntry{payload: payload, remaining: ttl}

	return nil
}

func (m *stubMirror) Get(_ context.Context, key string) ([]byte, time.Duration, error) {
	if m.fail {
		return nil, 0, assert.AnError
	}

	ent, ok := m.entries[key]
	if !ok {
		return nil, 0, Nil
	}

	return ent.payload, ent.remaining, nil
}

func (m *stubMirror) Delete(_ context.Context, key string) error {
	delete(m.entries, key)

	return nil
}

func (m *stubMirror) DeletePrefix(_ context.Context, prefix string) error {
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}

	return nil
}

func (m *stubMirror) Clear(_ context.Context) error {
	m.entries = map[string]mirrorEntry{}

	return nil
}

func newTestCache(mirror Mirror) *memoryCache {
	return &memoryCache{
		entries: map[string]entry{},
		mirror:  mirror,
		otel:    mocks.NewOtel(),
		now:     time.Now,
	}
}

func TestCache_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(newStubMirror())

	assert.NoError(t, cache.Save(ctx, "profile:get:p-1", "hello", 60))

	var got string
	assert.NoError(t, cache.Get(ctx, "profile:get:p-1", &got))
	assert.Equal(t, "hello", got)
}

func TestCache_MissReturnsNil(t *testing.T) {
	cache := newTestCache(newStubMirror())

	var got string
	err := cache.Get(context.Background(), "absent", &got)

	assert.ErrorIs(t, err, Nil)
}

func TestCache_TTLBoundary(t *testing.T) {
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := base

	// Noop mirror: an expired memory entry must not resurrect from a
	// mirrored copy here.
	cache := newTestCache(NewNoopMirror())
	cache.now = func() time.Time { return now }

	assert.NoError(t, cache.Save(ctx, "experience:get:e-1", 42, 60))

	var got int

	// Exactly at the TTL the entry is still live; one tick later it is
	// gone.
	now = base.Add(60 * time.Second)
	assert.NoError(t, cache.Get(ctx, "experience:get:e-1", &got))
	assert.Equal(t, 42, got)

	now = base.Add(60*time.Second + time.Nanosecond)
	assert.ErrorIs(t, cache.Get(ctx, "experience:get:e-1", &got), Nil)
}

func TestCache_MirrorFallback(t *testing.T) {
	ctx := context.Background()

	mirror := newStubMirror()

	payload, err := json.Marshal("from-mirror")
	assert.NoError(t, err)

	mirror.entries["profile:get:p-1"] = mirrorEntry{payload: payload, remaining: 30 * time.Second}

	// A fresh cache simulates a restarted process: memory empty, mirror
	// still live.
	cache := newTestCache(mirror)

	var got string
	assert.NoError(t, cache.Get(ctx, "profile:get:p-1", &got))
	assert.Equal(t, "from-mirror", got)

	// The entry is re-adopted into memory.
	cache.mu.RLock()
	_, adopted := cache.entries["profile:get:p-1"]
	cache.mu.RUnlock()
	assert.True(t, adopted)
}

func TestCache_MirrorFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()

	mirror := newStubMirror()
	mirror.fail = true

	cache := newTestCache(mirror)

	assert.NoError(t, cache.Save(ctx, "key", "value", 60))

	var got string
	assert.NoError(t, cache.Get(ctx, "key", &got))
	assert.Equal(t, "value", got)
}

func TestCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(newStubMirror())

	assert.NoError(t, cache.Save(ctx, "experience:search:jakarta:1", "a", 60))
	assert.NoError(t, cache.Save(ctx, "experience:search:bandung:1", "b", 60))
	assert.NoError(t, cache.Save(ctx, "profile:get:p-1", "c", 60))

	assert.NoError(t, cache.DeletePrefix(ctx, "experience:search"))

	var got string
	assert.ErrorIs(t, cache.Get(ctx, "experience:search:jakarta:1", &got), Nil)
	assert.ErrorIs(t, cache.Get(ctx, "experience:search:bandung:1", &got), Nil)
	assert.NoError(t, cache.Get(ctx, "profile:get:p-1", &got))
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(newStubMirror())

	assert.NoError(t, cache.Save(ctx, "profile:get:p-1", "a", 60))
	assert.NoError(t, cache.Clear(ctx))

	var got string
	assert.ErrorIs(t, cache.Get(ctx, "profile:get:p-1", &got), Nil)
}
