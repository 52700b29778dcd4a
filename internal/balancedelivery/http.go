// Package balancedelivery manages delivery layer of balances and settlements.
package balancedelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/pkg/errorspkg"
	"github.com/splitpal/splitpal/pkg/moneypkg"
	"github.com/splitpal/splitpal/pkg/tokenpkg"
	"github.com/splitpal/splitpal/pkg/web"
)

// Service provides service layer interface needed by balance delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package balancedelivery
type Service interface {
	Balances(ctx context.Context, groupID, userID int64) (domain.NetByCurrency, int, error)
	SettleUp(ctx context.Context, groupID, userID int64) (map[string][]domain.Settlement, int, error)
	HasDebts(ctx context.Context, groupID, userID int64) (bool, error)
	ScaleOf(ctx context.Context, code string) (int32, error)
}

// Users resolves the authenticated username to its user record.
//
//go:generate mockgen -source http.go -destination http_mock.go -package balancedelivery
type Users interface {
	Get(ctx context.Context, username string) (domain.UserWithoutPassword, error)
}

// Handler facilitates balance delivery layer logic.
type Handler struct {
	service Service
	users   Users
}

// NewHandler returns balance handler.
func NewHandler(bs Service, us Users) *Handler {
	return &Handler{
		service: bs,
		users:   us,
	}
}

type uriRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Balances handles http request for per-currency net member balances.
// Amounts are rendered as fixed-point strings at the currency scale.
func (h *Handler) Balances(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	nets, skipped, err := h.service.Balances(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	balances := make(map[string]map[int64]string, len(nets))

	for code, byUser := range nets {
		scale, err := h.service.ScaleOf(ctx, code)
		if err != nil {
			writeDomainError(gctx, err)
			return
		}

		rendered := make(map[int64]string, len(byUser))
		for userID, net := range byUser {
			rendered[userID] = moneypkg.String(moneypkg.Round(net, scale), scale)
		}

		balances[code] = rendered
	}

	res := web.Response{
		Data: struct {
			Balances map[string]map[int64]string `json:"balances"`
			Skipped  int                         `json:"skipped,omitempty"`
		}{
			Balances: balances,
			Skipped:  skipped,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type settlementView struct {
	From   int64  `json:"from_user_id"`
	To     int64  `json:"to_user_id"`
	Amount string `json:"amount"`
}

// SettleUp handles http request for the per-currency settlement plan.
func (h *Handler) SettleUp(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	plan, skipped, err := h.service.SettleUp(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	rendered := make(map[string][]settlementView, len(plan))

	for code, settlements := range plan {
		scale, err := h.service.ScaleOf(ctx, code)
		if err != nil {
			writeDomainError(gctx, err)
			return
		}

		views := make([]settlementView, len(settlements))
		for i, s := range settlements {
			views[i] = settlementView{
				From:   s.From,
				To:     s.To,
				Amount: moneypkg.String(s.Amount, scale),
			}
		}

		rendered[code] = views
	}

	res := web.Response{
		Data: struct {
			Settlements map[string][]settlementView `json:"settlements"`
			Skipped     int                         `json:"skipped,omitempty"`
		}{
			Settlements: rendered,
			Skipped:     skipped,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// HasDebts handles http request for the group's debt presence flag.
func (h *Handler) HasDebts(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req uriRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	hasDebts, err := h.service.HasDebts(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			HasDebts bool `json:"has_debts"`
		}{
			HasDebts: hasDebts,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

func (h *Handler) actorID(gctx *gin.Context) (int64, bool) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	authPayload := gctx.MustGet(middleware.AuthPayloadKey).(*tokenpkg.Payload)

	user, err := h.users.Get(ctx, authPayload.Username)
	if err != nil {
		l.Warn().Err(err).Str("username", authPayload.Username).Send()
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrUserNotFound))

		return 0, false
	}

	return user.ID, true
}

func bindError(gctx *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}

func writeDomainError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrNotGroupMember):
		gctx.JSON(http.StatusForbidden, web.Error(err))
	case errors.Is(err, domain.ErrUnknownCurrency):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}
