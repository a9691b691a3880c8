package impl

import (
	"context"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/state"
	"harbor/internal/state/statetest"
	"harbor/internal/usecase"
)

func newGoodInput() usecase.NewGoodInput {
	return usecase.NewGoodInput{
		PortID:     "NLRTM",
		CategoryID: "spare-parts",
		Title:      "Fuel injector",
		Price:      1250,
		Currency:   "EUR",
		Available:  true,
	}
}

func TestCatalogService_FetchCategories(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	categories, err := env.catalogService().FetchCategories(context.Background(), rec)
	require.NoError(t, err)

	assert.NotEmpty(t, categories)
	assert.Equal(t, []state.ActionType{state.TypeFetchCategoriesRequest, state.TypeFetchCategoriesSuccess}, rec.Types())
}

func TestCatalogService_FetchGoods_RequiresPort(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	query := state.GoodsQuery{CategoryID: "provisions"}

	_, err := env.catalogService().FetchGoods(context.Background(), rec, query)

	require.ErrorIs(t, err, domainerrors.ErrPortRequired)
	assert.Equal(t, []state.ActionType{state.TypeFetchGoodsRequest, state.TypeFetchGoodsFailure}, rec.Types())

	store := state.NewStore(state.State{})
	_, err = env.catalogService().FetchGoods(context.Background(), store, query)
	require.Error(t, err)
	assert.False(t, store.State().Catalog.Loading)
	assert.NotEmpty(t, store.State().Catalog.Error)
}

func TestCatalogService_FetchGoods_Filters(t *testing.T) {
	env := newTestEnv(t)
	srv := env.catalogService()
	ctx := context.Background()

	tests := []struct {
		name  string
		query state.GoodsQuery
		want  int
	}{
		{name: "port", query: state.GoodsQuery{PortID: "NLRTM"}, want: 1},
		{name: "port and category", query: state.GoodsQuery{PortID: "NLRTM", CategoryID: "provisions"}, want: 1},
		{name: "other category", query: state.GoodsQuery{PortID: "NLRTM", CategoryID: "bunker"}, want: 0},
		{name: "other owner", query: state.GoodsQuery{PortID: "NLRTM", OwnerID: "demo-buyer"}, want: 0},
		{name: "other port", query: state.GoodsQuery{PortID: "DEHAM"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &statetest.Recorder{}

			goods, err := srv.FetchGoods(ctx, rec, tt.query)
			require.NoError(t, err)

			assert.Len(t, goods, tt.want)
			request, ok := rec.Actions()[0].(state.FetchGoodsRequest)
			require.True(t, ok)
			assert.Equal(t, tt.query, request.Query)
		})
	}
}

func TestCatalogService_AddGood_UploadsImages(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	good, err := env.catalogService().AddGood(context.Background(), rec, "demo-seller", newGoodInput(),
		[]usecase.Upload{pngUpload(t, "front.png", 10), pngUpload(t, "back.png", 200)})
	require.NoError(t, err)

	assert.Equal(t, []state.ActionType{state.TypeAddGoodRequest, state.TypeAddGoodSuccess}, rec.Types())
	assert.Equal(t, "demo-seller", good.OwnerID)
	require.Len(t, good.Images, 2)

	for key, url := range good.Images {
		assert.True(t, strings.HasSuffix(key, "front_png") || strings.HasSuffix(key, "back_png"), key)
		assert.Contains(t, url, "http://blobs.test/")
	}
	assert.Len(t, env.store.BlobPaths(), 2)
}

func TestCatalogService_AddGood_InvalidImageFails(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}

	_, err := env.catalogService().AddGood(context.Background(), rec, "demo-seller", newGoodInput(),
		[]usecase.Upload{{FileName: "notes.txt", Reader: strings.NewReader("plain text")}})

	require.ErrorIs(t, err, domainerrors.ErrInvalidImage)
	assert.Equal(t, []state.ActionType{state.TypeAddGoodRequest, state.TypeAddGoodFailure}, rec.Types())
}

func TestCatalogService_AddGood_InvalidInputFailsWithoutDispatch(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}
	input := newGoodInput()
	input.PortID = ""

	_, err := env.catalogService().AddGood(context.Background(), rec, "demo-seller", input, nil)

	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, rec.Actions())
}

func TestCatalogService_UpdateGood_ImageEditRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	srv := env.catalogService()
	ctx := context.Background()

	good, err := srv.AddGood(ctx, &statetest.Recorder{}, "demo-seller", newGoodInput(),
		[]usecase.Upload{pngUpload(t, "a.png", 10), pngUpload(t, "b.png", 90)})
	require.NoError(t, err)

	var dropped string
	for key := range good.Images {
		if strings.HasSuffix(key, "a_png") {
			dropped = key
		}
	}
	require.NotEmpty(t, dropped)

	edit := *good.Clone()
	edit.Title = "Fuel injector (refurbished)"
	edit.OwnerID = "someone-else"

	rec := &statetest.Recorder{}
	updated, err := srv.UpdateGood(ctx, rec, "demo-seller", edit, []usecase.Upload{pngUpload(t, "c.png", 180)}, []string{dropped, "unknown"})
	require.NoError(t, err)

	assert.Equal(t, []state.ActionType{state.TypeUpdateGoodRequest, state.TypeUpdateGoodSuccess}, rec.Types())
	assert.Equal(t, "Fuel injector (refurbished)", updated.Title)
	assert.Equal(t, "demo-seller", updated.OwnerID, "owner is not editable")
	assert.Len(t, updated.Images, 2)
	assert.NotContains(t, updated.Images, dropped)
	assert.Len(t, env.store.BlobPaths(), 2)

	stored, err := env.gw.Goods.FindByID(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Images, stored.Images)
}

func TestCatalogService_AddGood_IdenticalUploadsKeepSeparateKeys(t *testing.T) {
	env := newTestEnv(t)

	good, err := env.catalogService().AddGood(context.Background(), &statetest.Recorder{}, "demo-seller", newGoodInput(),
		[]usecase.Upload{pngUpload(t, "hull.png", 40), pngUpload(t, "hull.png", 40)})
	require.NoError(t, err)

	assert.Len(t, good.Images, 2)
	assert.Len(t, env.store.BlobPaths(), 2)
}

func TestCatalogService_UpdateGood_ReplaceWithSameImage(t *testing.T) {
	env := newTestEnv(t)
	srv := env.catalogService()
	ctx := context.Background()

	good, err := srv.AddGood(ctx, &statetest.Recorder{}, "demo-seller", newGoodInput(),
		[]usecase.Upload{pngUpload(t, "hull.png", 40)})
	require.NoError(t, err)
	require.Len(t, good.Images, 1)

	var old string
	for key := range good.Images {
		old = key
	}

	updated, err := srv.UpdateGood(ctx, &statetest.Recorder{}, "demo-seller", *good.Clone(),
		[]usecase.Upload{pngUpload(t, "hull.png", 40)}, []string{old})
	require.NoError(t, err)

	require.Len(t, updated.Images, 1)
	assert.NotContains(t, updated.Images, old)

	paths := env.store.BlobPaths()
	require.Len(t, paths, 1)
	for key := range updated.Images {
		assert.Equal(t, path.Join(updated.StoragePrefix(), key), paths[0])
	}
}

func TestCatalogService_UpdateGood_ForeignOwner(t *testing.T) {
	env := newTestEnv(t)
	rec := &statetest.Recorder{}
	good, err := env.gw.Goods.FindByID(context.Background(), "demo-good")
	require.NoError(t, err)

	_, err = env.catalogService().UpdateGood(context.Background(), rec, "demo-buyer", *good, nil, nil)

	require.ErrorIs(t, err, domainerrors.ErrForbidden)
	assert.Equal(t, "Permission denied", terminalFailure(t, rec.Last()))
}

func TestCatalogService_DeleteGood(t *testing.T) {
	env := newTestEnv(t)
	srv := env.catalogService()
	ctx := context.Background()

	good, err := srv.AddGood(ctx, &statetest.Recorder{}, "demo-seller", newGoodInput(), []usecase.Upload{pngUpload(t, "a.png", 10)})
	require.NoError(t, err)

	rec := &statetest.Recorder{}
	require.NoError(t, srv.DeleteGood(ctx, rec, "demo-seller", good.ID))

	assert.Equal(t, []state.ActionType{state.TypeDeleteGoodRequest, state.TypeDeleteGoodSuccess}, rec.Types())
	assert.Empty(t, env.store.BlobPaths())

	rec.Reset()
	err = srv.DeleteGood(ctx, rec, "demo-seller", good.ID)
	require.ErrorIs(t, err, domainerrors.ErrGoodNotFound)
	assert.Equal(t, []state.ActionType{state.TypeDeleteGoodRequest, state.TypeDeleteGoodFailure}, rec.Types())
}
