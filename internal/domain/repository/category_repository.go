package repository

import (
	"context"

	"harbor/internal/domain/entity"
)

// CategoryRepository provides read access to catalog categories.
type CategoryRepository interface {
	// List returns every category.
	List(ctx context.Context) ([]entity.Category, error)
}
