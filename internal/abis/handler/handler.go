package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mockabis/internal/abis/models"
	"mockabis/pkg/platform/httputil"
	"mockabis/pkg/requestcontext"
)

// Dispatcher processes ABIS operations. A non-nil error comes with the
// INTERNAL_ERROR_UNKNOWN response to return to the caller.
type Dispatcher interface {
	Insert(ctx context.Context, req *models.InsertRequest) (models.Response, error)
	Delete(ctx context.Context, req *models.DeleteRequest) (models.Response, error)
	Identify(ctx context.Context, req *models.IdentifyRequest) (models.Response, error)
}

// Handler wires the ABIS endpoints to the dispatcher.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

func New(dispatcher Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Register mounts the ABIS endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/abis/insertrequest", h.HandleInsert)
	r.Delete("/abis/deleterequest", h.HandleDelete)
	r.Post("/abis/identifyrequest", h.HandleIdentify)
}

// HandleInsert handles POST /abis/insertrequest.
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[models.InsertRequest](w, r, h.logger, requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.respond(w, r, models.MessageInsert, func(ctx context.Context) (models.Response, error) {
		return h.dispatcher.Insert(ctx, req)
	})
}

// HandleDelete handles DELETE /abis/deleterequest.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[models.DeleteRequest](w, r, h.logger, requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.respond(w, r, models.MessageDelete, func(ctx context.Context) (models.Response, error) {
		return h.dispatcher.Delete(ctx, req)
	})
}

// HandleIdentify handles POST /abis/identifyrequest.
func (h *Handler) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[models.IdentifyRequest](w, r, h.logger, requestcontext.RequestID(r.Context()))
	if !ok {
		return
	}
	h.respond(w, r, models.MessageIdentify, func(ctx context.Context) (models.Response, error) {
		return h.dispatcher.Identify(ctx, req)
	})
}

// respond writes 200 for every processed request, success or failure, and
// 500 only when processing failed unexpectedly.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op models.MessageType, call func(context.Context) (models.Response, error)) {
	ctx := requestcontext.WithSource(r.Context(), requestcontext.SourceHTTP)
	start := time.Now()

	resp, err := call(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "abis request failed",
			"request_id", requestcontext.RequestID(ctx),
			"operation", op,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, resp)
		return
	}

	h.logger.DebugContext(ctx, "abis request answered",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"return_value", resp.ReturnValue,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
