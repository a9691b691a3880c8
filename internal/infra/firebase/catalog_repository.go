package firebase

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"

	"harbor/internal/domain/constants"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
)

type portRepository struct {
	fs *firestore.Client
}

// NewPortRepository reads the ports collection.
func NewPortRepository(c *Clients) repository.PortRepository {
	return &portRepository{fs: c.Firestore}
}

func (r *portRepository) List(ctx context.Context) ([]entity.Port, error) {
	snaps, err := r.fs.Collection(constants.CollectionPorts).Documents(ctx).GetAll()
	if err != nil {
		return nil, gatewayError(err, "list ports")
	}

	ports := make([]entity.Port, 0, len(snaps))
	for _, snap := range snaps {
		var d portDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, errors.Wrapf(err, "decode port %s", snap.Ref.ID)
		}
		ports = append(ports, portFromDoc(snap.Ref.ID, d))
	}

	return ports, nil
}

type categoryRepository struct {
	fs *firestore.Client
}

// NewCategoryRepository reads the categories collection.
func NewCategoryRepository(c *Clients) repository.CategoryRepository {
	return &categoryRepository{fs: c.Firestore}
}

func (r *categoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	snaps, err := r.fs.Collection(constants.CollectionCategories).Documents(ctx).GetAll()
	if err != nil {
		return nil, gatewayError(err, "list categories")
	}

	categories := make([]entity.Category, 0, len(snaps))
	for _, snap := range snaps {
		var d categoryDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, errors.Wrapf(err, "decode category %s", snap.Ref.ID)
		}
		categories = append(categories, entity.Category{ID: snap.Ref.ID, Title: d.Title, Description: d.Description})
	}

	return categories, nil
}

type goodRepository struct {
	fs *firestore.Client
}

// NewGoodRepository stores goods in a flat collection with portId and ownerId fields.
func NewGoodRepository(c *Clients) repository.GoodRepository {
	return &goodRepository{fs: c.Firestore}
}

func (r *goodRepository) coll() *firestore.CollectionRef {
	return r.fs.Collection(constants.CollectionGoods)
}

func (r *goodRepository) Find(ctx context.Context, filter repository.GoodsFilter) ([]entity.Good, error) {
	q := r.coll().Query
	if filter.PortID != "" {
		q = q.Where("portId", "==", filter.PortID)
	}
	if filter.CategoryID != "" {
		q = q.Where("categoryId", "==", filter.CategoryID)
	}
	if filter.OwnerID != "" {
		q = q.Where("ownerId", "==", filter.OwnerID)
	}

	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, gatewayError(err, "find goods")
	}

	goods := make([]entity.Good, 0, len(snaps))
	for _, snap := range snaps {
		var d goodDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, errors.Wrapf(err, "decode good %s", snap.Ref.ID)
		}
		goods = append(goods, goodFromDoc(snap.Ref.ID, d))
	}

	// sorted here so the equality filters need no composite index
	sort.SliceStable(goods, func(i, j int) bool {
		return goods[i].CreateTimestampGMT.After(goods[j].CreateTimestampGMT)
	})

	return goods, nil
}

func (r *goodRepository) FindByID(ctx context.Context, id string) (*entity.Good, error) {
	snap, err := r.coll().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, errors.WithStack(repository.ErrGoodNotFound)
	}
	if err != nil {
		return nil, gatewayError(err, "get good "+id)
	}

	var d goodDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errors.Wrapf(err, "decode good %s", id)
	}
	good := goodFromDoc(id, d)

	return &good, nil
}

func (r *goodRepository) Create(ctx context.Context, good *entity.Good) error {
	if err := good.Validate(); err != nil {
		return err
	}

	_, err := r.coll().Doc(good.ID).Create(ctx, goodToDoc(good))

	return gatewayError(err, "create good "+good.ID)
}

func (r *goodRepository) Update(ctx context.Context, good *entity.Good) error {
	if err := good.Validate(); err != nil {
		return err
	}

	ref := r.coll().Doc(good.ID)

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}

		return tx.Set(ref, goodToDoc(good))
	})
	if isNotFound(err) {
		return errors.WithStack(repository.ErrGoodNotFound)
	}

	return gatewayError(err, "update good "+good.ID)
}

func (r *goodRepository) Delete(ctx context.Context, id string) error {
	_, err := r.coll().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return errors.WithStack(repository.ErrGoodNotFound)
	}

	return gatewayError(err, "delete good "+id)
}
