package firebase

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"harbor/internal/domain/constants"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
)

type orderRepository struct {
	fs *firestore.Client
}

// NewOrderRepository reads and edits the orders collection.
func NewOrderRepository(c *Clients) repository.OrderRepository {
	return &orderRepository{fs: c.Firestore}
}

func (r *orderRepository) coll() *firestore.CollectionRef {
	return r.fs.Collection(constants.CollectionOrders)
}

func (r *orderRepository) FindBySeller(ctx context.Context, sellerID string) ([]entity.Order, error) {
	snaps, err := r.coll().Where("sellerId", "==", sellerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, gatewayError(err, "find seller orders")
	}

	orders := make([]entity.Order, 0, len(snaps))
	for _, snap := range snaps {
		var d orderDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, errors.Wrapf(err, "decode order %s", snap.Ref.ID)
		}
		orders = append(orders, orderFromDoc(snap.Ref.ID, d))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreateTimestampGMT.After(orders[j].CreateTimestampGMT)
	})

	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	snap, err := r.coll().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, errors.WithStack(repository.ErrOrderNotFound)
	}
	if err != nil {
		return nil, gatewayError(err, "get order "+id)
	}

	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errors.Wrapf(err, "decode order %s", id)
	}
	order := orderFromDoc(id, d)

	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, id string, update repository.OrderUpdate, at time.Time) (*entity.Order, error) {
	ref := r.coll().Doc(id)

	var updated entity.Order

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var d orderDoc
		if err := snap.DataTo(&d); err != nil {
			return errors.Wrapf(err, "decode order %s", id)
		}

		updated = orderFromDoc(id, d)
		update.Apply(&updated, at)

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(updated.Status)},
			{Path: "quantity", Value: updated.Quantity},
			{Path: "priceInOrder", Value: updated.PriceInOrder},
			{Path: "currencyInOrder", Value: updated.CurrencyInOrder},
			{Path: "updateTimestampGMT", Value: updated.UpdateTimestampGMT},
		})
	})
	if isNotFound(err) {
		return nil, errors.WithStack(repository.ErrOrderNotFound)
	}
	if err != nil {
		return nil, gatewayError(err, "update order "+id)
	}

	return &updated, nil
}
