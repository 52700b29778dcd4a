// Package currencydelivery manages delivery layer of currencies.
package currencydelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/pkg/errorspkg"
	"github.com/splitpal/splitpal/pkg/web"
)

// Repo provides data access layer interface needed by currency delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package currencydelivery
type Repo interface {
	List(ctx context.Context) ([]domain.Currency, error)
	Get(ctx context.Context, code string) (domain.Currency, error)
}

// Handler facilitates currency delivery layer logic.
type Handler struct {
	repo Repo
}

// NewHandler returns currency handler.
func NewHandler(cr Repo) *Handler {
	return &Handler{
		repo: cr,
	}
}

// List handles http request to list all known currencies.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	currencies, err := h.repo.List(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Currencies []domain.Currency `json:"currencies"`
		}{
			Currencies: currencies,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type getRequest struct {
	Code string `uri:"code" binding:"required,alpha,len=3"`
}

// Get handles http request to fetch one currency by code.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	c, err := h.repo.Get(ctx, req.Code)
	if err != nil {
		if err == domain.ErrUnknownCurrency {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Currency domain.Currency `json:"currency"`
		}{
			Currency: c,
		},
	}

	gctx.JSON(http.StatusOK, res)
}
