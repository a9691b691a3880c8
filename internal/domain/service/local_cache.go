package service

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by LocalCache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheKey is one of the enumerated local cache keys.
type CacheKey string

const (
	// CacheKeyCurrentUser holds the signed-in user's profile as JSON.
	CacheKeyCurrentUser CacheKey = "current_user"
	// CacheKeySelectedPort holds the id of the port the user browses.
	CacheKeySelectedPort CacheKey = "selected_port"
)

// IsValid checks if the key is one of the enumerated keys.
func (k CacheKey) IsValid() bool {
	switch k {
	case CacheKeyCurrentUser, CacheKeySelectedPort:
		return true
	default:
		return false
	}
}

// LocalCache is a small string key/value store that survives reloads.
// It is a snapshot, never the source of truth.
type LocalCache interface {
	Get(ctx context.Context, key CacheKey) (string, error)
	Set(ctx context.Context, key CacheKey, value string) error
	Remove(ctx context.Context, key CacheKey) error
}
