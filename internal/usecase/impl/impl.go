// Package impl contains the action creator implementations.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
)

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, fallback)
}

// domainError maps repository sentinels to their user-facing domain errors.
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return errors.Wrap(domainerrors.ErrUserNotFound, err.Error())
	case errors.Is(err, repository.ErrGoodNotFound):
		return errors.Wrap(domainerrors.ErrGoodNotFound, err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		return errors.Wrap(domainerrors.ErrOrderNotFound, err.Error())
	case errors.Is(err, repository.ErrChatNotFound):
		return errors.Wrap(domainerrors.ErrChatNotFound, err.Error())
	case errors.Is(err, entity.ErrGoodOwnerRequired), errors.Is(err, entity.ErrGoodPortRequired):
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	default:
		return err
	}
}

// resolvePorts returns the ports named by ids in the given order.
func resolvePorts(ctx context.Context, repo repository.PortRepository, ids []string) ([]entity.Port, error) {
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]entity.Port, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	out := make([]entity.Port, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		p, ok := byID[id]
		if !ok {
			return nil, errors.Wrapf(domainerrors.ErrUserPortNotFound, "port %s", id)
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}

	return out, nil
}
