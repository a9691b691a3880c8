package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"harbor/internal/domain/service"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryBackend creates a process-local backend. A zero ttl keeps entries until removed.
func NewMemoryBackend(ttl time.Duration) Backend {
	return newMemoryBackend(ttl, time.Now)
}

func newMemoryBackend(ttl time.Duration, now func() time.Time) *memoryBackend {
	return &memoryBackend{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (b *memoryBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()

	if !ok {
		return "", service.ErrCacheMiss
	}

	if !entry.expiresAt.IsZero() && !b.now().Before(entry.expiresAt) {
		b.mu.Lock()
		delete(b.entries, key)
		b.mu.Unlock()

		return "", service.ErrCacheMiss
	}

	return entry.value, nil
}

func (b *memoryBackend) Set(ctx context.Context, key, value string) error {
	entry := memoryEntry{value: value}
	if b.ttl > 0 {
		entry.expiresAt = b.now().Add(b.ttl)
	}

	b.mu.Lock()
	b.entries[key] = entry
	b.mu.Unlock()

	return nil
}

func (b *memoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	delete(b.entries, key)
	b.mu.Unlock()

	return nil
}

func (b *memoryBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key := range b.entries {
		if strings.HasPrefix(key, prefix) {
			delete(b.entries, key)
		}
	}

	return nil
}

func (b *memoryBackend) Close() error {
	return nil
}
