// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/domain"
	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/internal/transactionservice"
	"github.com/splitpal/splitpal/pkg/errorspkg"
	"github.com/splitpal/splitpal/pkg/moneypkg"
	"github.com/splitpal/splitpal/pkg/tokenpkg"
	"github.com/splitpal/splitpal/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	CreateExpense(ctx context.Context, arg transactionservice.CreateExpenseParams) (domain.Transaction, error)
	CreateTransfer(ctx context.Context, arg transactionservice.CreateTransferParams) (domain.Transaction, error)
	Get(ctx context.Context, id, userID int64) (domain.Transaction, error)
	ListByGroup(ctx context.Context, groupID, userID int64) ([]domain.Transaction, error)
	Delete(ctx context.Context, id, userID int64) error
}

// Users resolves the authenticated username to its user record.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Users interface {
	Get(ctx context.Context, username string) (domain.UserWithoutPassword, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
	users   Users
}

// NewHandler returns transaction handler.
func NewHandler(ts Service, us Users) *Handler {
	return &Handler{
		service: ts,
		users:   us,
	}
}

type transactionData struct {
	Transaction domain.Transaction `json:"transaction"`
}

type groupURIRequest struct {
	GroupID int64 `uri:"id" binding:"required,min=1"`
}

type txURIRequest struct {
	ID int64 `uri:"tx_id" binding:"required,min=1"`
}

type shareLine struct {
	UserID     int64  `json:"user_id" binding:"required,min=1"`
	Amount     string `json:"amount"`
	ShareCount *int32 `json:"share_count"`
}

type createExpenseRequest struct {
	Amount      string      `json:"amount" binding:"required"`
	Currency    string      `json:"currency" binding:"omitempty,alpha,len=3"`
	Date        time.Time   `json:"date"`
	Comment     string      `json:"comment" binding:"max=500"`
	CategoryID  *int64      `json:"category_id"`
	PaidBy      *int64      `json:"paid_by"`
	SplitPolicy string      `json:"split_policy" binding:"omitempty,oneof=equal shares custom"`
	Shares      []shareLine `json:"shares"`
}

// CreateExpense handles http request to record an expense.
func (h *Handler) CreateExpense(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri groupURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req createExpenseRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	amount, err := moneypkg.Parse(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	shares := make([]domain.ShareInput, 0, len(req.Shares))

	for _, line := range req.Shares {
		share := domain.ShareInput{
			UserID:     line.UserID,
			ShareCount: line.ShareCount,
		}

		if line.Amount != "" {
			share.Amount, err = moneypkg.Parse(line.Amount)
			if err != nil {
				gctx.JSON(http.StatusBadRequest, web.Error(err))
				return
			}
		}

		shares = append(shares, share)
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	created, err := h.service.CreateExpense(ctx, transactionservice.CreateExpenseParams{
		GroupID:     uri.GroupID,
		CreatedBy:   actorID,
		Amount:      amount,
		Currency:    req.Currency,
		Date:        req.Date,
		Comment:     req.Comment,
		CategoryID:  req.CategoryID,
		PaidBy:      req.PaidBy,
		SplitPolicy: req.SplitPolicy,
		Shares:      shares,
	})
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactionData{created}})
}

type createTransferRequest struct {
	Amount   string    `json:"amount" binding:"required"`
	Currency string    `json:"currency" binding:"omitempty,alpha,len=3"`
	Date     time.Time `json:"date"`
	Comment  string    `json:"comment" binding:"max=500"`
	From     *int64    `json:"from"`
	To       []int64   `json:"to" binding:"required,min=1"`
}

// CreateTransfer handles http request to record a repayment transfer.
func (h *Handler) CreateTransfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri groupURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req createTransferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	amount, err := moneypkg.Parse(req.Amount)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	created, err := h.service.CreateTransfer(ctx, transactionservice.CreateTransferParams{
		GroupID:   uri.GroupID,
		CreatedBy: actorID,
		Amount:    amount,
		Currency:  req.Currency,
		Date:      req.Date,
		Comment:   req.Comment,
		From:      req.From,
		To:        req.To,
	})
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactionData{created}})
}

// List handles http request to list a group's transactions.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri groupURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	transactions, err := h.service.ListByGroup(ctx, uri.GroupID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			Transactions []domain.Transaction `json:"transactions"`
		}{
			Transactions: transactions,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Get handles http request to fetch one transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri txURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	t, err := h.service.Get(ctx, uri.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactionData{t}})
}

// Delete handles http request to soft-delete a transaction.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri txURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, uri.ID, actorID); err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
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
	case errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrGroupArchived):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrNotGroupMember),
		errors.Is(err, domain.ErrNotGroupOwner):
		gctx.JSON(http.StatusForbidden, web.Error(err))
	case errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrInvalidMember),
		errors.Is(err, domain.ErrUnknownCurrency),
		errors.Is(err, domain.ErrNoRecipients),
		errors.Is(err, domain.ErrNoShares),
		errors.Is(err, domain.ErrInvalidSplitPolicy),
		errors.Is(err, domain.ErrShareMismatch):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}
