package cache

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"

	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

// Values are stored as an 8-byte big-endian expiry (unix nanos, 0 = never) followed by the value.
const expiryHeaderLen = 8

type pebbleBackend struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

// NewPebbleBackend opens (or creates) a pebble database at path.
func NewPebbleBackend(path string, ttl time.Duration) (Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create pebble directory")
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble at %s", path)
	}

	return &pebbleBackend{db: db, ttl: ttl, now: time.Now}, nil
}

func (b *pebbleBackend) Get(ctx context.Context, key string) (string, error) {
	raw, closer, err := b.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", service.ErrCacheMiss
	}
	if err != nil {
		return "", errors.Wrapf(err, "pebble get %s", key)
	}
	defer closer.Close()

	if len(raw) < expiryHeaderLen {
		return "", service.ErrCacheMiss
	}

	if expiry := int64(binary.BigEndian.Uint64(raw[:expiryHeaderLen])); expiry != 0 && b.now().UnixNano() >= expiry {
		_ = b.db.Delete([]byte(key), pebble.NoSync)

		return "", service.ErrCacheMiss
	}

	// raw is only valid until closer.Close
	return string(raw[expiryHeaderLen:]), nil
}

func (b *pebbleBackend) Set(ctx context.Context, key, value string) error {
	buf := make([]byte, expiryHeaderLen+len(value))
	if b.ttl > 0 {
		binary.BigEndian.PutUint64(buf[:expiryHeaderLen], uint64(b.now().Add(b.ttl).UnixNano()))
	}
	copy(buf[expiryHeaderLen:], value)

	return errors.Wrapf(b.db.Set([]byte(key), buf, pebble.Sync), "pebble set %s", key)
}

func (b *pebbleBackend) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(b.db.Delete([]byte(key), pebble.Sync), "pebble delete %s", key)
}

func (b *pebbleBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	start := []byte(prefix)

	return errors.Wrapf(b.db.DeleteRange(start, prefixUpperBound(start), pebble.Sync), "pebble delete prefix %s", prefix)
}

func (b *pebbleBackend) Close() error {
	return errors.WithStack(b.db.Close())
}

// prefixUpperBound returns the smallest key greater than every key with the prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}

	return nil
}
