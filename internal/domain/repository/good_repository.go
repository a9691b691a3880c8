package repository

import (
	"context"
	"errors"

	"harbor/internal/domain/entity"
)

// ErrGoodNotFound is returned when a good does not exist.
var ErrGoodNotFound = errors.New("good not found")

// GoodsFilter narrows a catalog query. Empty fields match everything.
type GoodsFilter struct {
	PortID     string
	CategoryID string
	OwnerID    string
}

// Matches reports whether g satisfies every set field of the filter.
func (f GoodsFilter) Matches(g *entity.Good) bool {
	if f.PortID != "" && g.PortID != f.PortID {
		return false
	}
	if f.CategoryID != "" && g.CategoryID != f.CategoryID {
		return false
	}
	if f.OwnerID != "" && g.OwnerID != f.OwnerID {
		return false
	}

	return true
}

// GoodRepository defines persistence for catalog goods.
type GoodRepository interface {
	// Find returns the goods matching filter.
	Find(ctx context.Context, filter GoodsFilter) ([]entity.Good, error)

	// FindByID retrieves a single good.
	FindByID(ctx context.Context, id string) (*entity.Good, error)

	// Create stores a new good under good.ID.
	Create(ctx context.Context, good *entity.Good) error

	// Update replaces the stored good.
	Update(ctx context.Context, good *entity.Good) error

	// Delete removes a good.
	Delete(ctx context.Context, id string) error
}
