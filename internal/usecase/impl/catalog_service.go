package impl

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

// maxParallelTransfers bounds concurrent blob uploads and deletes of one edit.
const maxParallelTransfers = 4

// CatalogServiceParams holds dependencies for the catalog action creators, injected by Fx
type CatalogServiceParams struct {
	fx.In

	Categories repository.CategoryRepository
	Goods      repository.GoodRepository
	Blobs      service.BlobStorage
	Images     service.ImageProcessor
	Logger     *slog.Logger
}

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	categories repository.CategoryRepository
	goods      repository.GoodRepository
	blobs      service.BlobStorage
	images     service.ImageProcessor
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		categories: params.Categories,
		goods:      params.Goods,
		blobs:      params.Blobs,
		images:     params.Images,
		logger:     params.Logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (srv *catalogService) FetchCategories(ctx context.Context, d state.Dispatcher) ([]entity.Category, error) {
	d.Dispatch(state.FetchCategoriesRequest{})

	categories, err := srv.categories.List(ctx)
	if err == nil && len(categories) == 0 {
		err = errors.WithStack(domainerrors.ErrCategoriesNotFound)
	}
	if err != nil {
		d.Dispatch(state.FetchCategoriesFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.FetchCategoriesSuccess{Categories: categories})

	return categories, nil
}

func (srv *catalogService) FetchGoods(ctx context.Context, d state.Dispatcher, query state.GoodsQuery) ([]entity.Good, error) {
	d.Dispatch(state.FetchGoodsRequest{Query: query})

	if query.PortID == "" {
		err := errors.WithStack(domainerrors.ErrPortRequired)
		d.Dispatch(state.FetchGoodsFailure{Failed: state.Fail(err)})

		return nil, err
	}

	goods, err := srv.goods.Find(ctx, repository.GoodsFilter{
		PortID:     query.PortID,
		CategoryID: query.CategoryID,
		OwnerID:    query.OwnerID,
	})
	if err != nil {
		d.Dispatch(state.FetchGoodsFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.FetchGoodsSuccess{Goods: goods})

	return goods, nil
}

func (srv *catalogService) AddGood(ctx context.Context, d state.Dispatcher, ownerID string, input usecase.NewGoodInput, images []usecase.Upload) (*entity.Good, error) {
	if err := usecase.ValidateInput(input); err != nil {
		return nil, err
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.AddGoodRequest{})

	good := &entity.Good{
		ID:                 srv.newID(),
		OwnerID:            ownerID,
		PortID:             input.PortID,
		CategoryID:         input.CategoryID,
		Title:              input.Title,
		Description:        input.Description,
		Price:              input.Price,
		Currency:           input.Currency,
		Available:          input.Available,
		CreateTimestampGMT: srv.now().UTC(),
	}

	err := good.Validate()
	if err == nil {
		good.Images, err = srv.uploadImages(ctx, good, images)
	}
	if err == nil {
		err = srv.goods.Create(ctx, good)
	}
	if err != nil {
		err = domainError(err)
		logger.Warn("Add good failed", slog.String("owner_id", ownerID), slog.Any("error", err))
		d.Dispatch(state.AddGoodFailure{Failed: state.Fail(err)})

		return nil, err
	}

	logger.Info("Good added", slog.String("good_id", good.ID), slog.Int("images", len(good.Images)))
	d.Dispatch(state.AddGoodSuccess{Good: *good})

	return good, nil
}

func (srv *catalogService) UpdateGood(ctx context.Context, d state.Dispatcher, ownerID string, good entity.Good, images []usecase.Upload, deletedKeys []string) (*entity.Good, error) {
	if good.ID == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "good id is required")
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.UpdateGoodRequest{})

	updated, err := srv.updateGood(ctx, ownerID, good, images, deletedKeys)
	if err != nil {
		logger.Warn("Update good failed", slog.String("good_id", good.ID), slog.Any("error", err))
		d.Dispatch(state.UpdateGoodFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.UpdateGoodSuccess{Good: *updated})

	return updated, nil
}

func (srv *catalogService) updateGood(ctx context.Context, ownerID string, good entity.Good, images []usecase.Upload, deletedKeys []string) (*entity.Good, error) {
	stored, err := srv.ownedGood(ctx, ownerID, good.ID)
	if err != nil {
		return nil, err
	}

	// owner, location and creation time are not editable
	good.OwnerID = stored.OwnerID
	good.PortID = stored.PortID
	good.CreateTimestampGMT = stored.CreateTimestampGMT

	uploaded, err := srv.uploadImages(ctx, stored, images)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, key := range deletedKeys {
		if _, ok := stored.Images[key]; ok {
			removed = append(removed, key)
		}
	}
	if err := srv.deleteImages(ctx, stored, removed); err != nil {
		return nil, err
	}

	good.Images = entity.MergeImages(stored.Images, removed, uploaded)
	if err := srv.goods.Update(ctx, &good); err != nil {
		return nil, domainError(err)
	}

	return &good, nil
}

func (srv *catalogService) DeleteGood(ctx context.Context, d state.Dispatcher, ownerID, goodID string) error {
	if goodID == "" {
		return errors.Wrap(domainerrors.ErrValidationFailed, "good id is required")
	}

	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.DeleteGoodRequest{})

	err := srv.deleteGood(ctx, ownerID, goodID)
	if err != nil {
		logger.Warn("Delete good failed", slog.String("good_id", goodID), slog.Any("error", err))
		d.Dispatch(state.DeleteGoodFailure{Failed: state.Fail(err)})

		return err
	}

	logger.Info("Good deleted", slog.String("good_id", goodID))
	d.Dispatch(state.DeleteGoodSuccess{GoodID: goodID})

	return nil
}

func (srv *catalogService) deleteGood(ctx context.Context, ownerID, goodID string) error {
	stored, err := srv.ownedGood(ctx, ownerID, goodID)
	if err != nil {
		return err
	}

	if err := srv.deleteImages(ctx, stored, slices.Collect(maps.Keys(stored.Images))); err != nil {
		return err
	}

	return domainError(srv.goods.Delete(ctx, goodID))
}

func (srv *catalogService) ownedGood(ctx context.Context, ownerID, goodID string) (*entity.Good, error) {
	stored, err := srv.goods.FindByID(ctx, goodID)
	if err != nil {
		return nil, domainError(err)
	}
	if stored.OwnerID != ownerID {
		return nil, errors.Wrapf(domainerrors.ErrForbidden, "good %s belongs to another seller", goodID)
	}

	return stored, nil
}

// uploadImages processes and stores the uploads concurrently and returns
// their keys and download URLs. Completed uploads are not rolled back on failure.
func (srv *catalogService) uploadImages(ctx context.Context, good *entity.Good, uploads []usecase.Upload) (map[string]string, error) {
	if len(uploads) == 0 {
		return map[string]string{}, nil
	}

	var (
		mu  sync.Mutex
		out = make(map[string]string, len(uploads))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTransfers)

	for _, upload := range uploads {
		g.Go(func() error {
			img, err := srv.images.Process(upload.Reader)
			if err != nil {
				return err
			}

			key := srv.newID() + "_" + entity.SanitizeFileName(upload.FileName)
			url, err := srv.blobs.Upload(gctx, path.Join(good.StoragePrefix(), key), img.ContentType, bytes.NewReader(img.Data))
			if err != nil {
				return errors.Wrap(domainerrors.ErrUploadFailed, err.Error())
			}

			mu.Lock()
			out[key] = url
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (srv *catalogService) deleteImages(ctx context.Context, good *entity.Good, keys []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTransfers)

	for _, key := range keys {
		g.Go(func() error {
			if err := srv.blobs.Delete(gctx, path.Join(good.StoragePrefix(), key)); err != nil {
				return errors.Wrapf(err, "delete image %s", key)
			}

			return nil
		})
	}

	return g.Wait()
}
