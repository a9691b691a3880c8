package memory

import (
	"context"
	"slices"
	"time"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
)

type orderRepository struct {
	s *Store
}

// NewOrderRepository returns the in-process order store.
func NewOrderRepository(s *Store) repository.OrderRepository {
	return &orderRepository{s: s}
}

func (repo *orderRepository) FindBySeller(ctx context.Context, sellerID string) ([]entity.Order, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	orders := make([]entity.Order, 0)
	for _, o := range repo.s.orders {
		if o.SellerID == sellerID {
			orders = append(orders, o)
		}
	}

	slices.SortFunc(orders, func(a, b entity.Order) int {
		return b.CreateTimestampGMT.Compare(a.CreateTimestampGMT)
	})

	return orders, nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	o, ok := repo.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return &o, nil
}

func (repo *orderRepository) Update(ctx context.Context, id string, update repository.OrderUpdate, at time.Time) (*entity.Order, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	o, ok := repo.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	update.Apply(&o, at)
	repo.s.orders[id] = o

	return &o, nil
}
