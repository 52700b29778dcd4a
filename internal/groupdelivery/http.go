// Package groupdelivery manages delivery layer of groups.
package groupdelivery

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
	"github.com/splitpal/splitpal/pkg/tokenpkg"
	"github.com/splitpal/splitpal/pkg/web"
)

// Service provides service layer interface needed by group delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package groupdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateGroupParams) (domain.Group, error)
	Get(ctx context.Context, groupID, userID int64) (domain.Group, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Group, error)
	Members(ctx context.Context, groupID, userID int64) ([]int64, error)
	AddMember(ctx context.Context, groupID, actorID, userID int64) (domain.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, actorID, userID int64) error
	Leave(ctx context.Context, groupID, userID int64) error
	Archive(ctx context.Context, groupID, actorID int64) (domain.Group, error)
	Unarchive(ctx context.Context, groupID, actorID int64) (domain.Group, error)
	Delete(ctx context.Context, groupID, actorID int64) error
}

// Users resolves the authenticated username to its user record.
//
//go:generate mockgen -source http.go -destination http_mock.go -package groupdelivery
type Users interface {
	Get(ctx context.Context, username string) (domain.UserWithoutPassword, error)
}

// Handler facilitates group delivery layer logic.
type Handler struct {
	service Service
	users   Users
}

// NewHandler returns group handler.
func NewHandler(gs Service, us Users) *Handler {
	return &Handler{
		service: gs,
		users:   us,
	}
}

type groupData struct {
	Group domain.Group `json:"group"`
}

type createRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Description     string `json:"description" binding:"max=500"`
	DefaultCurrency string `json:"default_currency" binding:"required,currency"`
}

// Create handles http request to create a group.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	group, err := h.service.Create(ctx, domain.CreateGroupParams{
		Name:            req.Name,
		Description:     req.Description,
		OwnerID:         actorID,
		DefaultCurrency: req.DefaultCurrency,
	})
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: groupData{group}})
}

type uriRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to fetch one group.
func (h *Handler) Get(gctx *gin.Context) {
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

	group, err := h.service.Get(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: groupData{group}})
}

// List handles http request to list the caller's groups.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	groups, err := h.service.ListForUser(ctx, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			Groups []domain.Group `json:"groups"`
		}{
			Groups: groups,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Members handles http request to list active member ids.
func (h *Handler) Members(gctx *gin.Context) {
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

	members, err := h.service.Members(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			Members []int64 `json:"members"`
		}{
			Members: members,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type addMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

// AddMember handles http request to add a member to a group.
func (h *Handler) AddMember(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req addMemberRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	member, err := h.service.AddMember(ctx, uri.ID, actorID, req.UserID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			Member domain.GroupMember `json:"member"`
		}{
			Member: member,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type memberURIRequest struct {
	ID     int64 `uri:"id" binding:"required,min=1"`
	UserID int64 `uri:"user_id" binding:"required,min=1"`
}

// RemoveMember handles http request to remove a member from a group.
func (h *Handler) RemoveMember(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req memberURIRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	actorID, ok := h.actorID(gctx)
	if !ok {
		return
	}

	if err := h.service.RemoveMember(ctx, req.ID, actorID, req.UserID); err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

// Leave handles http request for the caller to leave a group.
func (h *Handler) Leave(gctx *gin.Context) {
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

	if err := h.service.Leave(ctx, req.ID, actorID); err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

// Archive handles http request to archive a group.
func (h *Handler) Archive(gctx *gin.Context) {
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

	group, err := h.service.Archive(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: groupData{group}})
}

// Unarchive handles http request to restore an archived group.
func (h *Handler) Unarchive(gctx *gin.Context) {
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

	group, err := h.service.Unarchive(ctx, req.ID, actorID)
	if err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: groupData{group}})
}

// Delete handles http request to soft-delete a group.
func (h *Handler) Delete(gctx *gin.Context) {
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

	if err := h.service.Delete(ctx, req.ID, actorID); err != nil {
		writeDomainError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

// actorID resolves the authenticated token payload to a user id. On
// failure it writes the error response and reports false.
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
		errors.Is(err, domain.ErrUserNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrGroupHasDebts),
		errors.Is(err, domain.ErrMemberHasBalance),
		errors.Is(err, domain.ErrMemberAlreadyExists),
		errors.Is(err, domain.ErrGroupArchived):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrNotGroupMember),
		errors.Is(err, domain.ErrNotGroupOwner),
		errors.Is(err, domain.ErrOwnerCannotLeave):
		gctx.JSON(http.StatusForbidden, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}
