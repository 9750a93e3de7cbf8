package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/focushub/backend/pkg/httpcontext"
	rolloverUC "github.com/focushub/backend/usecase/rollover"
)

type CheckinHandler struct {
	baseHandler
	engine *rolloverUC.Engine
}

func NewCheckinHandler(engine *rolloverUC.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *CheckinHandler {
	return &CheckinHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
	}
}

// @Summary Run the daily check-in
// @Tags checkin
// @Router /api/v1/checkin [post]
//
// Returns a null summary when the day has already been processed.
func (h *CheckinHandler) Run(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	summary, err := h.engine.RunDailyCheck(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, summary)
}
