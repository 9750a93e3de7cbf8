package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/focushub/backend/api/transport"
	"github.com/focushub/backend/pkg/httpcontext"
	suggestUC "github.com/focushub/backend/usecase/suggest"
)

type SuggestHandler struct {
	baseHandler
	uc *suggestUC.UseCase
}

func NewSuggestHandler(uc *suggestUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SuggestHandler {
	return &SuggestHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Suggest tasks for a goal
// @Tags suggest
// @Router /api/v1/tasks/suggest [post]
func (h *SuggestHandler) SuggestTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.SuggestRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Goal == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	names, err := h.uc.SuggestTasks(stdCtx, req.Goal)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, names)
}

// @Summary Break a task into subtasks
// @Tags suggest
// @Router /api/v1/tasks/{id}/breakdown [post]
func (h *SuggestHandler) BreakdownTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtasks, err := h.uc.BreakdownTask(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, subtasks)
}
