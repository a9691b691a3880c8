package memory

import (
	"context"
	"slices"
	"strings"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
)

type portRepository struct {
	s *Store
}

// NewPortRepository returns the in-process port directory.
func NewPortRepository(s *Store) repository.PortRepository {
	return &portRepository{s: s}
}

func (repo *portRepository) List(ctx context.Context) ([]entity.Port, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	return slices.Clone(repo.s.ports), nil
}

type categoryRepository struct {
	s *Store
}

// NewCategoryRepository returns the in-process category list.
func NewCategoryRepository(s *Store) repository.CategoryRepository {
	return &categoryRepository{s: s}
}

func (repo *categoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	return slices.Clone(repo.s.categories), nil
}

type goodRepository struct {
	s *Store
}

// NewGoodRepository returns the in-process catalog.
func NewGoodRepository(s *Store) repository.GoodRepository {
	return &goodRepository{s: s}
}

func (repo *goodRepository) Find(ctx context.Context, filter repository.GoodsFilter) ([]entity.Good, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	goods := make([]entity.Good, 0)
	for _, g := range repo.s.goods {
		if filter.Matches(&g) {
			goods = append(goods, *g.Clone())
		}
	}

	slices.SortFunc(goods, func(a, b entity.Good) int {
		if c := b.CreateTimestampGMT.Compare(a.CreateTimestampGMT); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return goods, nil
}

func (repo *goodRepository) FindByID(ctx context.Context, id string) (*entity.Good, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	g, ok := repo.s.goods[id]
	if !ok {
		return nil, repository.ErrGoodNotFound
	}

	return g.Clone(), nil
}

func (repo *goodRepository) Create(ctx context.Context, good *entity.Good) error {
	if err := good.Validate(); err != nil {
		return err
	}

	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	repo.s.goods[good.ID] = *good.Clone()

	return nil
}

func (repo *goodRepository) Update(ctx context.Context, good *entity.Good) error {
	if err := good.Validate(); err != nil {
		return err
	}

	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	if _, ok := repo.s.goods[good.ID]; !ok {
		return repository.ErrGoodNotFound
	}
	repo.s.goods[good.ID] = *good.Clone()

	return nil
}

func (repo *goodRepository) Delete(ctx context.Context, id string) error {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	if _, ok := repo.s.goods[id]; !ok {
		return repository.ErrGoodNotFound
	}
	delete(repo.s.goods, id)

	return nil
}
