package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/freshfold/laundrokart/internal/domain/catalog"
)

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.List(r.Context())
	if err != nil {
		h.internalError(w, r, "list services", err)
		return
	}

	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, s := range services {
				encodeService(e, s)
			}
		})
	})
}

func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	svc, err := h.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		h.internalError(w, r, "get service", err)
		return
	}

	writeSuccess(w, http.StatusOK, func(e *jx.Encoder) {
		encodeService(e, *svc)
	})
}

// internalError logs the cause and answers with an opaque 500 envelope.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("op", op),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
