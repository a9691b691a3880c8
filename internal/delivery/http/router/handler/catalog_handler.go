package handler

import (
	"context"
	"log/slog"
	"mime/multipart"

	"github.com/labstack/echo/v4"

	deliverycontext "harbor/internal/delivery/context"
	"harbor/internal/delivery/http/middleware"
	"harbor/internal/delivery/http/response"
	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/session"
	"harbor/internal/state"
	"harbor/internal/usecase"
)

const imagesField = "images"

// CatalogHandler serves categories and goods.
type CatalogHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewCatalogHandler is the constructor for CatalogHandler, injected by Fx.
func NewCatalogHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: logger}
}

// goodForm is the multipart form of a good. Images arrive as files named
// "images". The port is only read when a good is added.
type goodForm struct {
	PortID      string   `form:"portId"`
	CategoryID  string   `form:"categoryId" validate:"required"`
	Title       string   `form:"title" validate:"required,max=200"`
	Description string   `form:"description" validate:"max=5000"`
	Price       float64  `form:"price" validate:"gte=0"`
	Currency    string   `form:"currency" validate:"required,len=3,alpha"`
	Available   bool     `form:"available"`
	DeletedKeys []string `form:"deletedKeys"`
}

type goodResponse struct {
	Good    *entity.Good       `json:"good,omitempty"`
	Catalog state.CatalogState `json:"catalog"`
}

// GetCategories reloads the category list.
func (h *CatalogHandler) GetCategories(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	_, err := h.uc.FetchCategories(c.Request().Context(), sess.Store)

	return response.Slice(c, sess.State().Catalog, err)
}

// GetGoods lists a port's goods, optionally filtered by category and owner.
// Without a portId the port browsed last is used.
func (h *CatalogHandler) GetGoods(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	ctx := c.Request().Context()

	query := state.GoodsQuery{
		PortID:     c.QueryParam("portId"),
		CategoryID: c.QueryParam("categoryId"),
		OwnerID:    c.QueryParam("ownerId"),
	}
	if query.PortID == "" {
		query.PortID = h.selectedPort(ctx, sess)
	}

	_, err := h.uc.FetchGoods(ctx, sess.Store, query)
	if err == nil {
		h.rememberPort(ctx, sess, query.PortID)
	}

	return response.Slice(c, sess.State().Catalog, err)
}

// AddGood lists a new good owned by the signed-in user.
func (h *CatalogHandler) AddGood(c echo.Context) error {
	var form goodForm
	if err := c.Bind(&form); err != nil {
		return response.BindingError(c, "Invalid good input")
	}

	uploads, closeAll, err := formUploads(c)
	if err != nil {
		return err
	}
	defer closeAll()

	sess := middleware.SessionFrom(c)
	input := usecase.NewGoodInput{
		PortID:      form.PortID,
		CategoryID:  form.CategoryID,
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
		Currency:    form.Currency,
		Available:   form.Available,
	}

	good, err := h.uc.AddGood(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), input, uploads)

	return response.Slice(c, goodResponse{Good: good, Catalog: sess.State().Catalog}, err)
}

// UpdateGood replaces a good's editable fields, adds uploaded images and
// removes the images named by deletedKeys.
func (h *CatalogHandler) UpdateGood(c echo.Context) error {
	var form goodForm
	if err := c.Bind(&form); err != nil {
		return response.BindingError(c, "Invalid good input")
	}

	if err := c.Validate(&form); err != nil {
		return err
	}

	uploads, closeAll, err := formUploads(c)
	if err != nil {
		return err
	}
	defer closeAll()

	sess := middleware.SessionFrom(c)
	good := entity.Good{ID: c.Param("id")}
	if listed, ok := sess.State().Catalog.FindGood(good.ID); ok {
		good = listed
	}
	good.CategoryID = form.CategoryID
	good.Title = form.Title
	good.Description = form.Description
	good.Price = form.Price
	good.Currency = form.Currency
	good.Available = form.Available

	updated, err := h.uc.UpdateGood(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), good, uploads, form.DeletedKeys)

	return response.Slice(c, goodResponse{Good: updated, Catalog: sess.State().Catalog}, err)
}

// DeleteGood removes a good and its images.
func (h *CatalogHandler) DeleteGood(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	err := h.uc.DeleteGood(c.Request().Context(), sess.Store, middleware.UserIDFrom(c), c.Param("id"))

	return response.Slice(c, goodResponse{Catalog: sess.State().Catalog}, err)
}

func (h *CatalogHandler) selectedPort(ctx context.Context, sess *session.Session) string {
	if portID := sess.State().ActivePortID(); portID != "" {
		return portID
	}

	portID, err := sess.Cache.Get(ctx, service.CacheKeySelectedPort)
	if err != nil && !errors.Is(err, service.ErrCacheMiss) {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Warn("Failed to read selected port", slog.Any("error", err))
	}

	return portID
}

func (h *CatalogHandler) rememberPort(ctx context.Context, sess *session.Session, portID string) {
	if err := sess.Cache.Set(ctx, service.CacheKeySelectedPort, portID); err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Warn("Failed to cache selected port", slog.Any("error", err))
	}
}

// formUploads opens the request's image files. closeAll must be called once
// the uploads have been consumed.
func formUploads(c echo.Context) (uploads []usecase.Upload, closeAll func(), err error) {
	closeAll = func() {}

	form, err := c.MultipartForm()
	if err != nil {
		// a urlencoded or empty body simply carries no files
		return nil, closeAll, nil
	}

	files := make([]multipart.File, 0, len(form.File[imagesField]))
	closeAll = func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, header := range form.File[imagesField] {
		f, err := header.Open()
		if err != nil {
			closeAll()

			return nil, func() {}, errors.Wrap(domainerrors.ErrInvalidImage, err.Error())
		}
		files = append(files, f)
		uploads = append(uploads, usecase.Upload{FileName: header.Filename, Reader: f})
	}

	return uploads, closeAll, nil
}
