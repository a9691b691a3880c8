package usecase

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/state"
)

// NewGoodInput describes a good to list.
type NewGoodInput struct {
	PortID      string  `json:"portId" validate:"required"`
	CategoryID  string  `json:"categoryId" validate:"required"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"required,len=3,alpha"`
	Available   bool    `json:"available"`
}

// CatalogUsecase defines the catalog action creators.
type CatalogUsecase interface {
	FetchCategories(ctx context.Context, d state.Dispatcher) ([]entity.Category, error)

	// FetchGoods requires query.PortID.
	FetchGoods(ctx context.Context, d state.Dispatcher, query state.GoodsQuery) ([]entity.Good, error)

	AddGood(ctx context.Context, d state.Dispatcher, ownerID string, input NewGoodInput, images []Upload) (*entity.Good, error)

	// UpdateGood stores good with deletedKeys removed from and images added to its image map.
	UpdateGood(ctx context.Context, d state.Dispatcher, ownerID string, good entity.Good, images []Upload, deletedKeys []string) (*entity.Good, error)

	DeleteGood(ctx context.Context, d state.Dispatcher, ownerID, goodID string) error
}
