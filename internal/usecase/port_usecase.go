package usecase

import (
	"context"

	"github.com/paulmach/orb"

	"harbor/internal/domain/entity"
	"harbor/internal/state"
)

// PortUsecase defines the port directory action creators.
type PortUsecase interface {
	// FetchPorts sorts by distance to near when given, otherwise by title.
	FetchPorts(ctx context.Context, d state.Dispatcher, near *orb.Point) ([]entity.Port, error)
}
