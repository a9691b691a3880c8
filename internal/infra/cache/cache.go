// Package cache implements the local persistence cache on memory, redis or pebble.
package cache

import (
	"context"
	"strings"

	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

// Backend is a raw string key/value store. Get returns service.ErrCacheMiss
// for absent or expired keys.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// SessionCache is the local cache of one client session.
type SessionCache struct {
	backend Backend
	prefix  string
}

var _ service.LocalCache = (*SessionCache)(nil)

// Namespaced scopes backend to one session so sessions never see each other's keys.
func Namespaced(backend Backend, sessionID string) *SessionCache {
	return &SessionCache{
		backend: backend,
		prefix:  "session:" + strings.ReplaceAll(sessionID, ":", "_") + ":",
	}
}

func (c *SessionCache) Get(ctx context.Context, key service.CacheKey) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	return c.backend.Get(ctx, c.prefix+string(key))
}

func (c *SessionCache) Set(ctx context.Context, key service.CacheKey, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	return c.backend.Set(ctx, c.prefix+string(key), value)
}

func (c *SessionCache) Remove(ctx context.Context, key service.CacheKey) error {
	if err := checkKey(key); err != nil {
		return err
	}

	return c.backend.Delete(ctx, c.prefix+string(key))
}

// Clear removes every key of the session.
func (c *SessionCache) Clear(ctx context.Context) error {
	return c.backend.DeleteByPrefix(ctx, c.prefix)
}

func checkKey(key service.CacheKey) error {
	if !key.IsValid() {
		return errors.Wrapf(domainerrors.ErrValidationFailed, "unknown cache key %q", key)
	}

	return nil
}
