package repository

import (
	"context"

	"harbor/internal/domain/entity"
)

// PortRepository provides read access to the port directory.
type PortRepository interface {
	// List returns every known port.
	List(ctx context.Context) ([]entity.Port, error)
}
