package cache

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"harbor/config"
	"harbor/internal/domain/constants"
	"harbor/internal/errors"
)

// BackendParams holds dependencies for Backend, injected by Fx
type BackendParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewBackend creates the cache backend selected by configuration
func NewBackend(params BackendParams) (Backend, error) {
	cfg := params.Config.Cache
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("Cache not configured, using in-memory cache")

		return NewMemoryBackend(0), nil
	}

	var backend Backend

	switch cfg.Provider {
	case constants.CacheProviderMemory:
		backend = NewMemoryBackend(cfg.TTL)

	case constants.CacheProviderRedis:
		if cfg.Redis.Addr == "" {
			return nil, errors.New("redis address is required for redis provider")
		}
		logger.Info("Using redis cache", slog.String("addr", cfg.Redis.Addr))

		backend = NewRedisBackend(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, cfg.TTL)

	case constants.CacheProviderPebble:
		if cfg.Pebble.Path == "" {
			return nil, errors.New("pebble path is required for pebble provider")
		}
		logger.Info("Using pebble cache", slog.String("path", cfg.Pebble.Path))

		var err error
		backend, err = NewPebbleBackend(cfg.Pebble.Path, cfg.TTL)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown cache provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing cache backend")

			return backend.Close()
		},
	})

	return backend, nil
}

// Module provides the cache FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewBackend),
)
