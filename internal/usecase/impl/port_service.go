package impl

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/paulmach/orb"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// portService implements the PortUsecase interface.
type portService struct {
	ports  repository.PortRepository
	logger *slog.Logger
}

// NewPortService is the constructor for portService.
func NewPortService(ports repository.PortRepository, logger *slog.Logger) usecase.PortUsecase {
	return &portService{ports: ports, logger: logger}
}

func (srv *portService) FetchPorts(ctx context.Context, d state.Dispatcher, near *orb.Point) ([]entity.Port, error) {
	d.Dispatch(state.FetchPortsRequest{})

	ports, err := srv.ports.List(ctx)
	if err != nil {
		d.Dispatch(state.FetchPortsFailure{Failed: state.Fail(err)})

		return nil, err
	}

	sorted := slices.Clone(ports)
	if near != nil {
		slices.SortStableFunc(sorted, func(a, b entity.Port) int {
			return cmp.Compare(a.DistanceTo(*near), b.DistanceTo(*near))
		})
	} else {
		slices.SortStableFunc(sorted, func(a, b entity.Port) int {
			return cmp.Compare(a.Title, b.Title)
		})
	}

	d.Dispatch(state.FetchPortsSuccess{Ports: sorted})

	return sorted, nil
}
