package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/focushub/backend/api/transport"
	"github.com/focushub/backend/pkg/httpcontext"
	commitmentUC "github.com/focushub/backend/usecase/commitment"
)

type CommitmentHandler struct {
	baseHandler
	uc *commitmentUC.Manager
}

func NewCommitmentHandler(uc *commitmentUC.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *CommitmentHandler {
	return &CommitmentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get the active commitment
// @Tags commitment
// @Router /api/v1/commitment [get]
func (h *CommitmentHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	commitment, err := h.uc.Get(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, commitment)
}

// @Summary Stake points on a set of tasks
// @Tags commitment
// @Router /api/v1/commitment [put]
func (h *CommitmentHandler) Set(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CommitmentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	commitment, err := h.uc.Set(stdCtx, userID, req.Wager, req.TaskIDs)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, commitment)
}

// @Summary Cancel the active commitment
// @Tags commitment
// @Router /api/v1/commitment [delete]
func (h *CommitmentHandler) Cancel(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	commitment, err := h.uc.Cancel(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, commitment)
}
